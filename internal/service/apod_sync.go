package service

import (
	"context"
	"fmt"
	"time"

	"NeoSync/internal/interfaces"
	"NeoSync/internal/metrics"
	"NeoSync/internal/model"
	"NeoSync/internal/repository"

	"github.com/sirupsen/logrus"
)

// ApodSyncResult APOD 拉取结果
type ApodSyncResult struct {
	RunUUID      string   `json:"run_uuid"`
	Start        string   `json:"start"`
	End          string   `json:"end"`
	Created      int      `json:"created"`
	Existing     int      `json:"existing"`
	SkippedDates []string `json:"skipped_dates"`
}

// ApodSyncService 按日期拉取 APOD（已有同日记录则跳过）
type ApodSyncService struct {
	fetcher     interfaces.ApodFetcher
	apodRepo    repository.ApodRepository
	summaryRepo repository.SummaryRepository
	ledger      runLedger
	metrics     *metrics.Metrics
	logger      *logrus.Logger
}

func NewApodSyncService(
	fetcher interfaces.ApodFetcher,
	apodRepo repository.ApodRepository,
	summaryRepo repository.SummaryRepository,
	runRepo repository.RunRepository,
	m *metrics.Metrics,
	logger *logrus.Logger,
) *ApodSyncService {
	return &ApodSyncService{
		fetcher:     fetcher,
		apodRepo:    apodRepo,
		summaryRepo: summaryRepo,
		ledger:      runLedger{repo: runRepo, logger: logger},
		metrics:     m,
		logger:      logger,
	}
}

// SyncDate 拉取单日 APOD；该日已有记录返回 false 且不请求接口
func (s *ApodSyncService) SyncDate(ctx context.Context, date time.Time) (bool, error) {
	day := model.FormatDate(date)
	exists, err := s.apodRepo.ExistsForDate(ctx, day)
	if err != nil {
		return false, fmt.Errorf("查询APOD %s 失败: %w", day, err)
	}
	if exists {
		return false, nil
	}
	raw, err := s.fetcher.FetchApod(ctx, date)
	if err != nil {
		return false, fmt.Errorf("拉取APOD %s 失败: %w", day, err)
	}
	if err := s.store(ctx, day, raw); err != nil {
		return false, err
	}
	return true, nil
}

func (s *ApodSyncService) store(ctx context.Context, day string, raw *model.ApodRaw) error {
	entry := &model.ApodEntry{
		Date:        day,
		Title:       raw.Title,
		Explanation: raw.Explanation,
		ImageURL:    raw.URL,
		HDURL:       raw.HDURL,
		MediaType:   raw.MediaType,
		Copyright:   raw.Copyright,
	}
	if err := s.apodRepo.Create(ctx, entry); err != nil {
		return fmt.Errorf("保存APOD %s 失败: %w", day, err)
	}
	s.metrics.ApodCreated()
	s.logger.WithFields(logrus.Fields{"date": day, "title": entry.Title}).Info("APOD入库成功")
	return nil
}

// SyncRange 逐日拉取 [start, end]，单日拉取失败跳过，存储错误中断
func (s *ApodSyncService) SyncRange(ctx context.Context, start, end time.Time) (*ApodSyncResult, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("结束日期 %s 早于开始日期 %s", model.FormatDate(end), model.FormatDate(start))
	}
	startedAt := time.Now()
	defer s.metrics.ObserveRun(string(model.RunApod), startedAt)

	res := &ApodSyncResult{
		RunUUID:      newRunID(),
		Start:        model.FormatDate(start),
		End:          model.FormatDate(end),
		SkippedDates: []string{},
	}
	defer func() {
		s.ledger.record(ctx, &model.IngestRun{
			RunUUID:   res.RunUUID,
			Kind:      model.RunApod,
			StartDate: res.Start,
			EndDate:   res.End,
			NewApods:  res.Created,
		}, res.SkippedDates, startedAt)
	}()

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		day := model.FormatDate(d)
		exists, err := s.apodRepo.ExistsForDate(ctx, day)
		if err != nil {
			return res, fmt.Errorf("查询APOD %s 失败: %w", day, err)
		}
		if exists {
			res.Existing++
			continue
		}
		raw, err := s.fetcher.FetchApod(ctx, d)
		if err != nil {
			s.logger.WithError(err).WithField("date", day).Warn("拉取APOD失败，跳过该日")
			res.SkippedDates = append(res.SkippedDates, day)
			continue
		}
		if err := s.store(ctx, day, raw); err != nil {
			return res, err
		}
		res.Created++
	}
	s.logger.WithFields(logrus.Fields{
		"start":   res.Start,
		"end":     res.End,
		"created": res.Created,
		"skipped": len(res.SkippedDates),
	}).Info("APOD区间拉取完成")
	return res, nil
}

// SyncForNeoDates 覆盖所有已有 NEO 日汇总的日期区间
func (s *ApodSyncService) SyncForNeoDates(ctx context.Context) (*ApodSyncResult, error) {
	lo, hi, err := s.summaryRepo.SummaryDateBounds(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询汇总日期区间失败: %w", err)
	}
	if lo == "" {
		s.logger.Info("暂无NEO日汇总，跳过APOD拉取")
		return &ApodSyncResult{SkippedDates: []string{}}, nil
	}
	start, err := model.ParseDate(lo)
	if err != nil {
		return nil, err
	}
	end, err := model.ParseDate(hi)
	if err != nil {
		return nil, err
	}
	return s.SyncRange(ctx, start, end)
}
