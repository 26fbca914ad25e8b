package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"NeoSync/internal/config"
	"NeoSync/internal/interfaces"
	"NeoSync/internal/metrics"
	"NeoSync/internal/model"
	"NeoSync/internal/repository"

	"github.com/sirupsen/logrus"
)

// IngestResult 一次入库运行的计数
type IngestResult struct {
	RunUUID           string   `json:"run_uuid"`
	Start             string   `json:"start"`
	End               string   `json:"end"`
	NewAsteroids      int      `json:"new_asteroids"`
	NewApproaches     int      `json:"new_approaches"`
	NewOrbitingBodies int      `json:"new_orbiting_bodies"`
	OrbitalStored     int      `json:"orbital_stored"`
	OrbitalMissing    int      `json:"orbital_missing"`
	SkippedNew        int      `json:"skipped_new"` // 预算耗尽后未入库的新小行星
	SummariesCreated  int      `json:"summaries_created"`
	ItemsStored       int      `json:"items_stored"`
	SkippedDates      []string `json:"skipped_dates"` // 拉取失败跳过的日期
}

// IngestService NEO 去重入库：小行星按 neo_id 去重，单次运行新增数受预算限制
type IngestService struct {
	fetcher      interfaces.NeoFetcher
	asteroidRepo repository.AsteroidRepository
	summaryRepo  repository.SummaryRepository
	cursor       *CursorService
	ledger       runLedger
	cfg          config.IngestConfig
	metrics      *metrics.Metrics
	logger       *logrus.Logger
}

func NewIngestService(
	fetcher interfaces.NeoFetcher,
	asteroidRepo repository.AsteroidRepository,
	summaryRepo repository.SummaryRepository,
	runRepo repository.RunRepository,
	cursor *CursorService,
	cfg config.IngestConfig,
	m *metrics.Metrics,
	logger *logrus.Logger,
) *IngestService {
	return &IngestService{
		fetcher:      fetcher,
		asteroidRepo: asteroidRepo,
		summaryRepo:  summaryRepo,
		cursor:       cursor,
		ledger:       runLedger{repo: runRepo, logger: logger},
		cfg:          cfg,
		metrics:      m,
		logger:       logger,
	}
}

// budget 单次运行内新增小行星的剩余额度
type budget struct {
	remaining int
}

func (b *budget) take() bool {
	if b.remaining <= 0 {
		return false
	}
	b.remaining--
	return true
}

// Ingest 处理一份已拉取的 feed（独立预算）
func (s *IngestService) Ingest(ctx context.Context, feed *model.NeoFeed) (*IngestResult, error) {
	res := &IngestResult{SkippedDates: []string{}}
	b := &budget{remaining: s.cfg.MaxNewPerRun}
	if err := s.ingestFeed(ctx, feed, b, res); err != nil {
		return res, err
	}
	return res, nil
}

// Run 按游标窗口拉取一次并入库；拉取失败记为跳过，不返回错误
func (s *IngestService) Run(ctx context.Context) (*IngestResult, error) {
	startedAt := time.Now()
	defer s.metrics.ObserveRun(string(model.RunWindow), startedAt)

	w, err := s.cursor.NextWindow(ctx)
	if err != nil {
		return nil, err
	}
	res := &IngestResult{
		RunUUID:      newRunID(),
		Start:        model.FormatDate(w.Start),
		End:          model.FormatDate(w.End),
		SkippedDates: []string{},
	}
	log := s.logger.WithFields(logrus.Fields{"run_uuid": res.RunUUID, "start": res.Start, "end": res.End})
	log.Info("开始增量拉取NEO窗口")

	feed, err := s.fetcher.FetchWindow(ctx, w.Start, w.End)
	if err != nil {
		log.WithError(err).Warn("拉取NEO窗口失败，本次跳过")
		for d := w.Start; !d.After(w.End); d = d.AddDate(0, 0, 1) {
			res.SkippedDates = append(res.SkippedDates, model.FormatDate(d))
		}
	} else {
		b := &budget{remaining: s.cfg.MaxNewPerRun}
		if err := s.ingestFeed(ctx, feed, b, res); err != nil {
			s.finish(ctx, model.RunWindow, res, startedAt)
			return res, err
		}
	}

	s.finish(ctx, model.RunWindow, res, startedAt)
	return res, nil
}

// IngestRange 逐日拉取 [start, end]，单日失败跳过；预算在整个区间共享
func (s *IngestService) IngestRange(ctx context.Context, start, end time.Time) (*IngestResult, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("结束日期 %s 早于开始日期 %s", model.FormatDate(end), model.FormatDate(start))
	}
	startedAt := time.Now()
	defer s.metrics.ObserveRun(string(model.RunRange), startedAt)

	res := &IngestResult{
		RunUUID:      newRunID(),
		Start:        model.FormatDate(start),
		End:          model.FormatDate(end),
		SkippedDates: []string{},
	}
	b := &budget{remaining: s.cfg.MaxNewPerRun}

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			s.finish(ctx, model.RunRange, res, startedAt)
			return res, err
		}
		day := model.FormatDate(d)
		feed, err := s.fetcher.FetchWindow(ctx, d, d)
		if err != nil {
			s.logger.WithError(err).WithField("date", day).Warn("拉取当日NEO失败，跳过该日")
			res.SkippedDates = append(res.SkippedDates, day)
			continue
		}
		if err := s.ingestFeed(ctx, feed, b, res); err != nil {
			s.finish(ctx, model.RunRange, res, startedAt)
			return res, err
		}
	}

	s.finish(ctx, model.RunRange, res, startedAt)
	return res, nil
}

func (s *IngestService) finish(ctx context.Context, kind model.RunKind, res *IngestResult, startedAt time.Time) {
	if res.RunUUID == "" {
		res.RunUUID = newRunID()
	}
	s.ledger.record(ctx, &model.IngestRun{
		RunUUID:       res.RunUUID,
		Kind:          kind,
		StartDate:     res.Start,
		EndDate:       res.End,
		NewAsteroids:  res.NewAsteroids,
		NewApproaches: res.NewApproaches,
		NewItems:      res.ItemsStored,
	}, res.SkippedDates, startedAt)

	s.logger.WithFields(logrus.Fields{
		"run_uuid":       res.RunUUID,
		"new_asteroids":  res.NewAsteroids,
		"new_approaches": res.NewApproaches,
		"skipped_new":    res.SkippedNew,
		"skipped_dates":  len(res.SkippedDates),
		"items_stored":   res.ItemsStored,
	}).Info("NEO入库完成")
}

// ingestFeed 日期升序、日内按接口顺序处理；只有存储错误会中断
func (s *IngestService) ingestFeed(ctx context.Context, feed *model.NeoFeed, b *budget, res *IngestResult) error {
	for _, date := range feed.SortedDates() {
		objects := feed.NearEarthObjects[date]
		if len(objects) == 0 {
			continue
		}
		for i := range objects {
			if err := s.ingestObject(ctx, &objects[i], b, res); err != nil {
				return err
			}
		}
		if err := s.storeSummary(ctx, date, objects, res); err != nil {
			return err
		}
	}
	return nil
}

func (s *IngestService) ingestObject(ctx context.Context, obj *model.NeoObject, b *budget, res *IngestResult) error {
	neoID := strings.TrimSpace(obj.NaturalID())
	if neoID == "" {
		s.logger.WithField("name", obj.Name).Warn("NEO缺少ID，跳过")
		return nil
	}

	asteroid, err := s.asteroidRepo.FindByNeoID(ctx, neoID)
	if err != nil {
		return fmt.Errorf("查询小行星 %s 失败: %w", neoID, err)
	}
	if asteroid == nil {
		if !b.take() {
			res.SkippedNew++
			s.logger.WithField("neo_id", neoID).Debug("新增预算已用完，跳过新小行星")
			return nil
		}
		asteroid = toAsteroid(obj, neoID)
		created, err := s.asteroidRepo.CreateAsteroid(ctx, asteroid)
		if err != nil {
			return fmt.Errorf("保存小行星 %s 失败: %w", neoID, err)
		}
		if created {
			res.NewAsteroids++
			s.metrics.AsteroidCreated()
			if err := s.storeOrbital(ctx, asteroid, res); err != nil {
				return err
			}
		}
	}

	for i := range obj.CloseApproachData {
		if err := s.storeApproach(ctx, asteroid.ID, &obj.CloseApproachData[i], res); err != nil {
			return err
		}
	}
	return nil
}

// storeOrbital 二次拉取详情失败只告警，小行星本身照常保留
func (s *IngestService) storeOrbital(ctx context.Context, asteroid *model.Asteroid, res *IngestResult) error {
	detail, err := s.fetcher.FetchDetail(ctx, asteroid.NeoID)
	if err != nil {
		res.OrbitalMissing++
		s.logger.WithError(err).WithField("neo_id", asteroid.NeoID).Warn("拉取轨道数据失败，不保存轨道根数")
		return nil
	}
	if detail == nil || detail.OrbitalData == nil {
		res.OrbitalMissing++
		s.logger.WithField("neo_id", asteroid.NeoID).Info("无轨道数据")
		return nil
	}
	if err := s.asteroidRepo.UpsertOrbital(ctx, toOrbital(asteroid.ID, detail.OrbitalData)); err != nil {
		return fmt.Errorf("保存轨道根数 %s 失败: %w", asteroid.NeoID, err)
	}
	res.OrbitalStored++
	return nil
}

func (s *IngestService) storeApproach(ctx context.Context, asteroidID uint64, ca *model.CloseApproach, res *IngestResult) error {
	date := strings.TrimSpace(ca.CloseApproachDate)
	if _, err := model.ParseDate(date); err != nil {
		s.logger.WithField("close_approach_date", ca.CloseApproachDate).Warn("掠过日期格式错误，跳过")
		return nil
	}
	exists, err := s.asteroidRepo.ApproachExists(ctx, asteroidID, date)
	if err != nil {
		return fmt.Errorf("查询掠过事件失败: %w", err)
	}
	if exists {
		return nil
	}

	var bodyID *uint64
	if name := strings.TrimSpace(ca.OrbitingBody); name != "" {
		body, created, err := s.asteroidRepo.GetOrCreateBody(ctx, name)
		if err != nil {
			return fmt.Errorf("保存天体 %s 失败: %w", name, err)
		}
		if created {
			res.NewOrbitingBodies++
		}
		bodyID = &body.ID
	}

	created, err := s.asteroidRepo.CreateApproach(ctx, toApproach(asteroidID, date, ca, bodyID))
	if err != nil {
		return fmt.Errorf("保存掠过事件失败: %w", err)
	}
	if created {
		res.NewApproaches++
		s.metrics.ApproachCreated()
	}
	return nil
}

// storeSummary 当日汇总已存在则复用，条目追加到该汇总下（总数不超过 per_day_item_limit）
func (s *IngestService) storeSummary(ctx context.Context, date string, objects []model.NeoObject, res *IngestResult) error {
	summary, err := s.summaryRepo.FindByDate(ctx, date)
	if err != nil {
		return fmt.Errorf("查询日汇总 %s 失败: %w", date, err)
	}
	if summary == nil {
		stats := Summarize(objects, s.cfg.SummaryDiameterField)
		summary = &model.DailySummary{Date: date, Count: stats.Count, Smallest: stats.Smallest, Largest: stats.Largest}
		created, err := s.summaryRepo.CreateSummary(ctx, summary)
		if err != nil {
			return fmt.Errorf("保存日汇总 %s 失败: %w", date, err)
		}
		if created {
			res.SummariesCreated++
		}
	}

	stored, err := s.summaryRepo.CountItems(ctx, summary.ID)
	if err != nil {
		return fmt.Errorf("统计日汇总条目失败: %w", err)
	}
	limit := int64(s.cfg.PerDayItemLimit)
	for i := range objects {
		if stored >= limit {
			break
		}
		obj := &objects[i]
		neoID := strings.TrimSpace(obj.NaturalID())
		if neoID == "" {
			continue
		}
		exists, err := s.summaryRepo.ItemExists(ctx, summary.ID, neoID)
		if err != nil {
			return fmt.Errorf("查询条目失败: %w", err)
		}
		if exists {
			continue
		}
		created, err := s.summaryRepo.CreateItem(ctx, &model.NeoItem{
			NeoSummaryID: summary.ID,
			NeoID:        neoID,
			Date:         date,
			Name:         obj.Name,
			DiameterMin:  obj.EstimatedDiameter.Kilometers.EstimatedDiameterMin.Ptr(),
			DiameterMax:  obj.EstimatedDiameter.Kilometers.EstimatedDiameterMax.Ptr(),
			IsHazardous:  obj.IsPotentiallyHazardous,
		})
		if err != nil {
			return fmt.Errorf("保存条目 %s 失败: %w", neoID, err)
		}
		if created {
			stored++
			res.ItemsStored++
		}
	}
	return nil
}

func toAsteroid(obj *model.NeoObject, neoID string) *model.Asteroid {
	km := obj.EstimatedDiameter.Kilometers
	return &model.Asteroid{
		NeoID:                  neoID,
		Name:                   obj.Name,
		NasaJplURL:             obj.NasaJplURL,
		AbsoluteMagnitude:      obj.AbsoluteMagnitudeH.Ptr(),
		EstimatedDiameterMin:   km.EstimatedDiameterMin.Ptr(),
		EstimatedDiameterMax:   km.EstimatedDiameterMax.Ptr(),
		IsPotentiallyHazardous: obj.IsPotentiallyHazardous,
		IsSentryObject:         obj.IsSentryObject,
	}
}

func toOrbital(asteroidID uint64, od *model.OrbitalData) *model.OrbitalElements {
	return &model.OrbitalElements{
		AsteroidID:             asteroidID,
		OrbitID:                od.OrbitID,
		OrbitDeterminationDate: od.OrbitDeterminationDate,
		Eccentricity:           od.Eccentricity.Ptr(),
		SemiMajorAxis:          od.SemiMajorAxis.Ptr(),
		Inclination:            od.Inclination.Ptr(),
		AscendingNodeLongitude: od.AscendingNodeLongitude.Ptr(),
		PerihelionArgument:     od.PerihelionArgument.Ptr(),
		PerihelionDistance:     od.PerihelionDistance.Ptr(),
		AphelionDistance:       od.AphelionDistance.Ptr(),
		OrbitalPeriod:          od.OrbitalPeriod.Ptr(),
		MeanAnomaly:            od.MeanAnomaly.Ptr(),
		MeanMotion:             od.MeanMotion.Ptr(),
		EpochOsculation:        od.EpochOsculation.Ptr(),
	}
}

func toApproach(asteroidID uint64, date string, ca *model.CloseApproach, bodyID *uint64) *model.Approach {
	return &model.Approach{
		AsteroidID:         asteroidID,
		ApproachDate:       date,
		ApproachDateFull:   ca.CloseApproachDateFull,
		EpochCloseApproach: ca.EpochDateCloseApproach.Int64Ptr(),
		RelVelKmS:          ca.RelativeVelocity.KilometersPerSecond.Ptr(),
		RelVelKmH:          ca.RelativeVelocity.KilometersPerHour.Ptr(),
		RelVelMph:          ca.RelativeVelocity.MilesPerHour.Ptr(),
		MissDistanceKm:     ca.MissDistance.Kilometers.Ptr(),
		MissDistanceLunar:  ca.MissDistance.Lunar.Ptr(),
		MissDistanceAU:     ca.MissDistance.Astronomical.Ptr(),
		MissDistanceMiles:  ca.MissDistance.Miles.Ptr(),
		OrbitingBodyID:     bodyID,
	}
}
