package repository

import (
	"context"
	"database/sql"
	"errors"

	"NeoSync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AsteroidRepository 小行星/轨道/天体/掠过事件仓储
type AsteroidRepository interface {
	// FindByNeoID 按 neo_id 查找，不存在返回 (nil, nil)
	FindByNeoID(ctx context.Context, neoID string) (*model.Asteroid, error)
	// CreateAsteroid 插入小行星；neo_id 冲突时不插入，回填已有 id 并返回 false
	CreateAsteroid(ctx context.Context, a *model.Asteroid) (bool, error)
	UpsertOrbital(ctx context.Context, o *model.OrbitalElements) error
	GetOrbital(ctx context.Context, asteroidID uint64) (*model.OrbitalElements, error)
	GetOrCreateBody(ctx context.Context, name string) (*model.OrbitingBody, bool, error)
	ApproachExists(ctx context.Context, asteroidID uint64, date string) (bool, error)
	// CreateApproach 插入掠过事件；(asteroid_id, approach_date) 已存在时返回 false
	CreateApproach(ctx context.Context, ap *model.Approach) (bool, error)
	// MaxApproachDate 已入库的最大掠过日期，空库返回 ""
	MaxApproachDate(ctx context.Context) (string, error)
	CountApproachesByAsteroid(ctx context.Context, asteroidID uint64) (int64, error)
}

type asteroidRepository struct {
	db *gorm.DB
}

func NewAsteroidRepository(db *gorm.DB) AsteroidRepository {
	return &asteroidRepository{db: db}
}

func (r *asteroidRepository) FindByNeoID(ctx context.Context, neoID string) (*model.Asteroid, error) {
	var a model.Asteroid
	err := r.db.WithContext(ctx).Where("neo_id = ?", neoID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *asteroidRepository) CreateAsteroid(ctx context.Context, a *model.Asteroid) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "neo_id"}},
		DoNothing: true,
	}).Create(a)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	existing, err := r.FindByNeoID(ctx, a.NeoID)
	if err != nil {
		return false, err
	}
	if existing != nil {
		*a = *existing
	}
	return false, nil
}

func (r *asteroidRepository) UpsertOrbital(ctx context.Context, o *model.OrbitalElements) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "asteroid_id"}},
		UpdateAll: true,
	}).Create(o).Error
}

func (r *asteroidRepository) GetOrbital(ctx context.Context, asteroidID uint64) (*model.OrbitalElements, error) {
	var o model.OrbitalElements
	err := r.db.WithContext(ctx).Where("asteroid_id = ?", asteroidID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *asteroidRepository) GetOrCreateBody(ctx context.Context, name string) (*model.OrbitingBody, bool, error) {
	var body model.OrbitingBody
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&body).Error
	if err == nil {
		return &body, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	body = model.OrbitingBody{Name: name}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&body)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected > 0 {
		return &body, true, nil
	}
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&body).Error; err != nil {
		return nil, false, err
	}
	return &body, false, nil
}

func (r *asteroidRepository) ApproachExists(ctx context.Context, asteroidID uint64, date string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Approach{}).
		Where("asteroid_id = ? AND approach_date = ?", asteroidID, date).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *asteroidRepository) CreateApproach(ctx context.Context, ap *model.Approach) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "asteroid_id"}, {Name: "approach_date"}},
		DoNothing: true,
	}).Create(ap)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *asteroidRepository) MaxApproachDate(ctx context.Context) (string, error) {
	var maxDate sql.NullString
	if err := r.db.WithContext(ctx).Model(&model.Approach{}).
		Select("MAX(approach_date)").
		Scan(&maxDate).Error; err != nil {
		return "", err
	}
	return maxDate.String, nil
}

func (r *asteroidRepository) CountApproachesByAsteroid(ctx context.Context, asteroidID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Approach{}).Where("asteroid_id = ?", asteroidID).Count(&n).Error
	return n, err
}
