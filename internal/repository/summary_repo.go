package repository

import (
	"context"
	"errors"

	"NeoSync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SummaryRepository 日汇总与 NEO 条目仓储
type SummaryRepository interface {
	FindByDate(ctx context.Context, date string) (*model.DailySummary, error)
	// CreateSummary date 冲突时不插入，回填已有行并返回 false
	CreateSummary(ctx context.Context, s *model.DailySummary) (bool, error)
	ListSummaries(ctx context.Context) ([]*model.DailySummary, error)
	ListUnlinkedSummaries(ctx context.Context) ([]*model.DailySummary, error)
	SetSummaryApod(ctx context.Context, summaryID, apodID uint64) error
	// SummaryDateBounds 最早/最晚汇总日期，空库返回 ""
	SummaryDateBounds(ctx context.Context) (string, string, error)

	CountItems(ctx context.Context, summaryID uint64) (int64, error)
	ItemExists(ctx context.Context, summaryID uint64, neoID string) (bool, error)
	CreateItem(ctx context.Context, item *model.NeoItem) (bool, error)
	GetItem(ctx context.Context, id uint64) (*model.NeoItem, error)
	ListItems(ctx context.Context) ([]*model.NeoItem, error)
	ListUnlinkedItems(ctx context.Context) ([]*model.NeoItem, error)
	ListItemsByApod(ctx context.Context, apodID uint64) ([]*model.NeoItem, error)
	ListItemsByIDs(ctx context.Context, ids []uint64) (map[uint64]*model.NeoItem, error)
	SetItemApod(ctx context.Context, itemID, apodID uint64) error
}

type summaryRepository struct {
	db *gorm.DB
}

func NewSummaryRepository(db *gorm.DB) SummaryRepository {
	return &summaryRepository{db: db}
}

func (r *summaryRepository) FindByDate(ctx context.Context, date string) (*model.DailySummary, error) {
	var s model.DailySummary
	err := r.db.WithContext(ctx).Where("date = ?", date).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *summaryRepository) CreateSummary(ctx context.Context, s *model.DailySummary) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoNothing: true,
	}).Create(s)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	existing, err := r.FindByDate(ctx, s.Date)
	if err != nil {
		return false, err
	}
	if existing != nil {
		*s = *existing
	}
	return false, nil
}

func (r *summaryRepository) ListSummaries(ctx context.Context) ([]*model.DailySummary, error) {
	var list []*model.DailySummary
	if err := r.db.WithContext(ctx).Order("date ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *summaryRepository) ListUnlinkedSummaries(ctx context.Context) ([]*model.DailySummary, error) {
	var list []*model.DailySummary
	if err := r.db.WithContext(ctx).Where("apod_id IS NULL").Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *summaryRepository) SetSummaryApod(ctx context.Context, summaryID, apodID uint64) error {
	return r.db.WithContext(ctx).Model(&model.DailySummary{}).
		Where("id = ? AND apod_id IS NULL", summaryID).
		Update("apod_id", apodID).Error
}

func (r *summaryRepository) SummaryDateBounds(ctx context.Context) (string, string, error) {
	var row struct {
		MinDate *string
		MaxDate *string
	}
	if err := r.db.WithContext(ctx).Model(&model.DailySummary{}).
		Select("MIN(date) AS min_date, MAX(date) AS max_date").
		Scan(&row).Error; err != nil {
		return "", "", err
	}
	if row.MinDate == nil || row.MaxDate == nil {
		return "", "", nil
	}
	return *row.MinDate, *row.MaxDate, nil
}

func (r *summaryRepository) CountItems(ctx context.Context, summaryID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.NeoItem{}).Where("neo_summary_id = ?", summaryID).Count(&n).Error
	return n, err
}

func (r *summaryRepository) ItemExists(ctx context.Context, summaryID uint64, neoID string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.NeoItem{}).
		Where("neo_summary_id = ? AND neo_id = ?", summaryID, neoID).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *summaryRepository) CreateItem(ctx context.Context, item *model.NeoItem) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "neo_summary_id"}, {Name: "neo_id"}},
		DoNothing: true,
	}).Create(item)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *summaryRepository) GetItem(ctx context.Context, id uint64) (*model.NeoItem, error) {
	var item model.NeoItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *summaryRepository) ListItems(ctx context.Context) ([]*model.NeoItem, error) {
	var list []*model.NeoItem
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *summaryRepository) ListUnlinkedItems(ctx context.Context) ([]*model.NeoItem, error) {
	var list []*model.NeoItem
	if err := r.db.WithContext(ctx).Where("apod_id IS NULL").Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *summaryRepository) ListItemsByApod(ctx context.Context, apodID uint64) ([]*model.NeoItem, error) {
	var list []*model.NeoItem
	if err := r.db.WithContext(ctx).Where("apod_id = ?", apodID).Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *summaryRepository) ListItemsByIDs(ctx context.Context, ids []uint64) (map[uint64]*model.NeoItem, error) {
	out := make(map[uint64]*model.NeoItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var list []*model.NeoItem
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, err
	}
	for _, it := range list {
		out[it.ID] = it
	}
	return out, nil
}

func (r *summaryRepository) SetItemApod(ctx context.Context, itemID, apodID uint64) error {
	return r.db.WithContext(ctx).Model(&model.NeoItem{}).
		Where("id = ? AND apod_id IS NULL", itemID).
		Update("apod_id", apodID).Error
}
