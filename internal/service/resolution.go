package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"NeoSync/internal/metrics"
	"NeoSync/internal/model"
	"NeoSync/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrInvalidMatchParams threshold 不在 [0,1) 或 top_k < 1
var ErrInvalidMatchParams = errors.New("匹配参数不合法")

// maxFuzzyScore 模糊分数上界（严格小于精确关联的 1.0）
var maxFuzzyScore = math.Nextafter(1, 0)

// LinkResult 按日期精确关联的结果
type LinkResult struct {
	Items     int `json:"items"`
	Summaries int `json:"summaries"`
}

// FuzzyResult 模糊匹配结果
type FuzzyResult struct {
	ItemsScanned   int `json:"items_scanned"`
	ItemsSkipped   int `json:"items_skipped"` // 名称分词为空
	ItemsMatched   int `json:"items_matched"`
	RecordsWritten int `json:"records_written"`
}

// candidate 单个 APOD 候选
type candidate struct {
	ApodID uint64
	Score  float64
	Shared []string
}

// JoinSummary 关联总体情况
type JoinSummary struct {
	ExactLinks       int     `json:"exact_links"`
	FuzzyMatches     int     `json:"fuzzy_matches"`
	DistinctApods    int     `json:"distinct_apods"`
	FirstItemDate    string  `json:"first_item_date"`
	LastItemDate     string  `json:"last_item_date"`
	TopApodID        *uint64 `json:"top_apod_id"`
	TopApodTitle     string  `json:"top_apod_title"`
	TopApodItemCount int     `json:"top_apod_item_count"`
}

// ResolutionService NEO 条目与 APOD 的实体关联：同日期精确关联 + 文本相似度模糊匹配
type ResolutionService struct {
	summaryRepo repository.SummaryRepository
	apodRepo    repository.ApodRepository
	matchRepo   repository.MatchRepository
	ledger      runLedger
	metrics     *metrics.Metrics
	logger      *logrus.Logger
}

func NewResolutionService(
	summaryRepo repository.SummaryRepository,
	apodRepo repository.ApodRepository,
	matchRepo repository.MatchRepository,
	runRepo repository.RunRepository,
	m *metrics.Metrics,
	logger *logrus.Logger,
) *ResolutionService {
	return &ResolutionService{
		summaryRepo: summaryRepo,
		apodRepo:    apodRepo,
		matchRepo:   matchRepo,
		ledger:      runLedger{repo: runRepo, logger: logger},
		metrics:     m,
		logger:      logger,
	}
}

// LinkByDate 为没有 apod_id 的条目/汇总设置同日期 APOD（同日多条取 id 最小者）
func (s *ResolutionService) LinkByDate(ctx context.Context) (*LinkResult, error) {
	items, err := s.summaryRepo.ListUnlinkedItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("拉取未关联条目失败: %w", err)
	}
	summaries, err := s.summaryRepo.ListUnlinkedSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("拉取未关联汇总失败: %w", err)
	}

	dateSet := make(map[string]struct{})
	for _, it := range items {
		dateSet[it.Date] = struct{}{}
	}
	for _, su := range summaries {
		dateSet[su.Date] = struct{}{}
	}
	dates := make([]string, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	byDate, err := s.apodRepo.FirstByDates(ctx, dates)
	if err != nil {
		return nil, fmt.Errorf("按日期查询APOD失败: %w", err)
	}

	res := &LinkResult{}
	for _, it := range items {
		apod, ok := byDate[it.Date]
		if !ok {
			continue
		}
		if err := s.summaryRepo.SetItemApod(ctx, it.ID, apod.ID); err != nil {
			return res, fmt.Errorf("关联条目 %d 失败: %w", it.ID, err)
		}
		res.Items++
	}
	for _, su := range summaries {
		apod, ok := byDate[su.Date]
		if !ok {
			continue
		}
		if err := s.summaryRepo.SetSummaryApod(ctx, su.ID, apod.ID); err != nil {
			return res, fmt.Errorf("关联汇总 %d 失败: %w", su.ID, err)
		}
		res.Summaries++
	}
	s.metrics.MatchesWritten(string(model.MatchExact), res.Items)
	s.logger.WithFields(logrus.Fields{"items": res.Items, "summaries": res.Summaries}).Info("按日期精确关联完成")
	return res, nil
}

type apodTokens struct {
	id     uint64
	tokens TokenSet
}

// rankCandidates 计算条目与各 APOD 的相似度：保留 score >= threshold 且有交集的候选，
// 按分数降序稳定排序（同分保持 APOD 顺序），截取前 topK
func rankCandidates(item TokenSet, apods []apodTokens, threshold float64, topK int, exclude *uint64) []candidate {
	var out []candidate
	for _, a := range apods {
		if exclude != nil && a.id == *exclude {
			continue
		}
		score, shared := Jaccard(item, a.tokens)
		if len(shared) == 0 || score < threshold {
			continue
		}
		if score > maxFuzzyScore {
			score = maxFuzzyScore
		}
		out = append(out, candidate{ApodID: a.id, Score: score, Shared: shared})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > topK {
		out = out[:topK]
	}
	return out
}

// FuzzyMatch 对所有条目做模糊匹配，每个条目的旧结果在单事务内整体替换，重复运行结果不变
func (s *ResolutionService) FuzzyMatch(ctx context.Context, threshold float64, topK int) (*FuzzyResult, error) {
	if threshold < 0 || threshold >= 1 || topK < 1 {
		return nil, fmt.Errorf("%w: threshold=%v top_k=%d", ErrInvalidMatchParams, threshold, topK)
	}
	startedAt := time.Now()
	defer s.metrics.ObserveRun(string(model.RunReconcile), startedAt)

	items, err := s.summaryRepo.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("拉取条目失败: %w", err)
	}
	entries, err := s.apodRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("拉取APOD失败: %w", err)
	}
	apods := make([]apodTokens, 0, len(entries))
	for _, e := range entries {
		apods = append(apods, apodTokens{id: e.ID, tokens: Tokenize(e.Title + " " + e.Explanation)})
	}

	res := &FuzzyResult{}
	for _, it := range items {
		res.ItemsScanned++
		tokens := Tokenize(it.Name)
		if len(tokens) == 0 {
			res.ItemsSkipped++
			continue
		}
		candidates := rankCandidates(tokens, apods, threshold, topK, it.ApodID)
		records := make([]*model.MatchRecord, 0, len(candidates))
		for _, c := range candidates {
			shared, _ := json.Marshal(c.Shared)
			records = append(records, &model.MatchRecord{
				ApodID:       c.ApodID,
				Score:        c.Score,
				SharedTokens: datatypes.JSON(shared),
			})
		}
		if err := s.matchRepo.ReplaceForItem(ctx, it.ID, records); err != nil {
			return res, fmt.Errorf("保存条目 %d 的匹配失败: %w", it.ID, err)
		}
		if len(records) > 0 {
			res.ItemsMatched++
			res.RecordsWritten += len(records)
		}
	}
	s.metrics.MatchesWritten(string(model.MatchFuzzy), res.RecordsWritten)

	s.ledger.record(ctx, &model.IngestRun{RunUUID: newRunID(), Kind: model.RunReconcile}, nil, startedAt)
	s.logger.WithFields(logrus.Fields{
		"threshold":       threshold,
		"top_k":           topK,
		"items_scanned":   res.ItemsScanned,
		"items_matched":   res.ItemsMatched,
		"records_written": res.RecordsWritten,
	}).Info("模糊匹配完成")
	return res, nil
}

// ResolvedPairs 统一读视图：先列精确关联（分数 1.0），再列模糊匹配；matchType 为空时返回全部
func (s *ResolutionService) ResolvedPairs(ctx context.Context, matchType model.MatchType) ([]model.ResolvedPair, error) {
	var (
		exactItems []*model.NeoItem
		fuzzy      []*model.MatchRecord
	)
	if matchType == "" || matchType == model.MatchExact {
		items, err := s.summaryRepo.ListItems(ctx)
		if err != nil {
			return nil, fmt.Errorf("拉取条目失败: %w", err)
		}
		for _, it := range items {
			if it.ApodID != nil {
				exactItems = append(exactItems, it)
			}
		}
	}
	if matchType == "" || matchType == model.MatchFuzzy {
		var err error
		fuzzy, err = s.matchRepo.ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("拉取模糊匹配失败: %w", err)
		}
	}

	apodIDs := make([]uint64, 0, len(exactItems)+len(fuzzy))
	itemIDs := make([]uint64, 0, len(fuzzy))
	for _, it := range exactItems {
		apodIDs = append(apodIDs, *it.ApodID)
	}
	for _, m := range fuzzy {
		apodIDs = append(apodIDs, m.ApodID)
		itemIDs = append(itemIDs, m.NeoItemID)
	}
	apods, err := s.apodRepo.ListByIDs(ctx, apodIDs)
	if err != nil {
		return nil, fmt.Errorf("拉取APOD失败: %w", err)
	}
	itemsByID, err := s.summaryRepo.ListItemsByIDs(ctx, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("拉取条目失败: %w", err)
	}

	pairs := make([]model.ResolvedPair, 0, len(exactItems)+len(fuzzy))
	for _, it := range exactItems {
		apod, ok := apods[*it.ApodID]
		if !ok {
			continue
		}
		pairs = append(pairs, model.ResolvedPair{Item: *it, Apod: *apod, MatchType: model.MatchExact, Score: model.ExactScore})
	}
	for _, m := range fuzzy {
		it, okItem := itemsByID[m.NeoItemID]
		apod, okApod := apods[m.ApodID]
		if !okItem || !okApod {
			continue
		}
		pairs = append(pairs, model.ResolvedPair{Item: *it, Apod: *apod, MatchType: model.MatchFuzzy, Score: m.Score})
	}
	return pairs, nil
}

// ApodForItem 条目最相关的 APOD：有精确关联取之，否则取最高分模糊匹配；都没有返回 nil
func (s *ResolutionService) ApodForItem(ctx context.Context, itemID uint64) (*model.ResolvedPair, error) {
	item, err := s.summaryRepo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.ApodID != nil {
		apod, err := s.apodRepo.GetByID(ctx, *item.ApodID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if apod != nil {
			return &model.ResolvedPair{Item: *item, Apod: *apod, MatchType: model.MatchExact, Score: model.ExactScore}, nil
		}
	}
	matches, err := s.matchRepo.ListByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	for _, m := range matches {
		apod, err := s.apodRepo.GetByID(ctx, m.ApodID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &model.ResolvedPair{Item: *item, Apod: *apod, MatchType: model.MatchFuzzy, Score: m.Score}, nil
	}
	return nil, nil
}

// ItemsForApod APOD 关联的所有条目，精确关联在前
func (s *ResolutionService) ItemsForApod(ctx context.Context, apodID uint64) ([]model.ResolvedPair, error) {
	apod, err := s.apodRepo.GetByID(ctx, apodID)
	if err != nil {
		return nil, err
	}
	exact, err := s.summaryRepo.ListItemsByApod(ctx, apodID)
	if err != nil {
		return nil, err
	}
	matches, err := s.matchRepo.ListByApod(ctx, apodID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.NeoItemID)
	}
	itemsByID, err := s.summaryRepo.ListItemsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	pairs := make([]model.ResolvedPair, 0, len(exact)+len(matches))
	for _, it := range exact {
		pairs = append(pairs, model.ResolvedPair{Item: *it, Apod: *apod, MatchType: model.MatchExact, Score: model.ExactScore})
	}
	for _, m := range matches {
		if it, ok := itemsByID[m.NeoItemID]; ok {
			pairs = append(pairs, model.ResolvedPair{Item: *it, Apod: *apod, MatchType: model.MatchFuzzy, Score: m.Score})
		}
	}
	return pairs, nil
}

// JoinSummary 关联总体统计
func (s *ResolutionService) JoinSummary(ctx context.Context) (*JoinSummary, error) {
	pairs, err := s.ResolvedPairs(ctx, "")
	if err != nil {
		return nil, err
	}
	out := &JoinSummary{}
	perApod := make(map[uint64]int)
	titles := make(map[uint64]string)
	var order []uint64
	for _, p := range pairs {
		if p.MatchType == model.MatchExact {
			out.ExactLinks++
		} else {
			out.FuzzyMatches++
		}
		if _, ok := perApod[p.Apod.ID]; !ok {
			order = append(order, p.Apod.ID)
		}
		perApod[p.Apod.ID]++
		titles[p.Apod.ID] = p.Apod.Title
		if out.FirstItemDate == "" || p.Item.Date < out.FirstItemDate {
			out.FirstItemDate = p.Item.Date
		}
		if p.Item.Date > out.LastItemDate {
			out.LastItemDate = p.Item.Date
		}
	}
	out.DistinctApods = len(perApod)
	for _, id := range order {
		if perApod[id] > out.TopApodItemCount {
			top := id
			out.TopApodID = &top
			out.TopApodTitle = titles[id]
			out.TopApodItemCount = perApod[id]
		}
	}
	return out, nil
}
