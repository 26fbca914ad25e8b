package repository

import (
	"context"

	"NeoSync/internal/model"

	"gorm.io/gorm"
)

// RunRepository 运行台账
type RunRepository interface {
	Create(ctx context.Context, run *model.IngestRun) error
	ListRecent(ctx context.Context, limit int) ([]*model.IngestRun, error)
}

type runRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) RunRepository {
	return &runRepository{db: db}
}

func (r *runRepository) Create(ctx context.Context, run *model.IngestRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *runRepository) ListRecent(ctx context.Context, limit int) ([]*model.IngestRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var list []*model.IngestRun
	if err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
