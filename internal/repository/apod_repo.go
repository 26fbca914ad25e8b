package repository

import (
	"context"

	"NeoSync/internal/model"

	"gorm.io/gorm"
)

// ApodRepository APOD 条目仓储（date 不唯一，同日多条时以 id 最小者为准）
type ApodRepository interface {
	ExistsForDate(ctx context.Context, date string) (bool, error)
	Create(ctx context.Context, e *model.ApodEntry) error
	// FirstByDates 每个日期取 id 最小的一条
	FirstByDates(ctx context.Context, dates []string) (map[string]*model.ApodEntry, error)
	GetByID(ctx context.Context, id uint64) (*model.ApodEntry, error)
	ListByIDs(ctx context.Context, ids []uint64) (map[uint64]*model.ApodEntry, error)
	ListAll(ctx context.Context) ([]*model.ApodEntry, error)
}

type apodRepository struct {
	db *gorm.DB
}

func NewApodRepository(db *gorm.DB) ApodRepository {
	return &apodRepository{db: db}
}

func (r *apodRepository) ExistsForDate(ctx context.Context, date string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.ApodEntry{}).Where("date = ?", date).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *apodRepository) Create(ctx context.Context, e *model.ApodEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *apodRepository) FirstByDates(ctx context.Context, dates []string) (map[string]*model.ApodEntry, error) {
	out := make(map[string]*model.ApodEntry, len(dates))
	if len(dates) == 0 {
		return out, nil
	}
	var list []*model.ApodEntry
	if err := r.db.WithContext(ctx).Where("date IN ?", dates).Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	for _, e := range list {
		if _, ok := out[e.Date]; !ok {
			out[e.Date] = e
		}
	}
	return out, nil
}

func (r *apodRepository) GetByID(ctx context.Context, id uint64) (*model.ApodEntry, error) {
	var e model.ApodEntry
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *apodRepository) ListByIDs(ctx context.Context, ids []uint64) (map[uint64]*model.ApodEntry, error) {
	out := make(map[uint64]*model.ApodEntry, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var list []*model.ApodEntry
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, err
	}
	for _, e := range list {
		out[e.ID] = e
	}
	return out, nil
}

func (r *apodRepository) ListAll(ctx context.Context) ([]*model.ApodEntry, error) {
	var list []*model.ApodEntry
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
