package repository

import (
	"context"
	"fmt"

	"NeoSync/internal/model"

	"gorm.io/gorm"
)

// MatchRepository 模糊匹配结果仓储
type MatchRepository interface {
	// ReplaceForItem 单事务内删除条目旧的匹配行并写入新行（records 为空即清空）
	ReplaceForItem(ctx context.Context, itemID uint64, records []*model.MatchRecord) error
	// ListAll 按条目 id 升序、分数降序
	ListAll(ctx context.Context) ([]*model.MatchRecord, error)
	ListByItem(ctx context.Context, itemID uint64) ([]*model.MatchRecord, error)
	ListByApod(ctx context.Context, apodID uint64) ([]*model.MatchRecord, error)
	Count(ctx context.Context) (int64, error)
}

type matchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) ReplaceForItem(ctx context.Context, itemID uint64, records []*model.MatchRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("neo_item_id = ?", itemID).Delete(&model.MatchRecord{}).Error; err != nil {
			return fmt.Errorf("删除旧匹配失败: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		for _, rec := range records {
			rec.NeoItemID = itemID
		}
		if err := tx.Create(&records).Error; err != nil {
			return fmt.Errorf("写入匹配失败: %w", err)
		}
		return nil
	})
}

func (r *matchRepository) ListAll(ctx context.Context) ([]*model.MatchRecord, error) {
	var list []*model.MatchRecord
	if err := r.db.WithContext(ctx).Order("neo_item_id ASC, score DESC, id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *matchRepository) ListByItem(ctx context.Context, itemID uint64) ([]*model.MatchRecord, error) {
	var list []*model.MatchRecord
	if err := r.db.WithContext(ctx).Where("neo_item_id = ?", itemID).Order("score DESC, id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *matchRepository) ListByApod(ctx context.Context, apodID uint64) ([]*model.MatchRecord, error) {
	var list []*model.MatchRecord
	if err := r.db.WithContext(ctx).Where("apod_id = ?", apodID).Order("score DESC, id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *matchRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.MatchRecord{}).Count(&n).Error
	return n, err
}
