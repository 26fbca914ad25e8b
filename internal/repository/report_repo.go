package repository

import (
	"context"

	"NeoSync/internal/model"

	"gorm.io/gorm"
)

// DayApproachRow 按日聚合的掠过统计
type DayApproachRow struct {
	Date            string   `json:"date"`
	Count           int64    `json:"count"`
	AvgMissDistance *float64 `json:"avg_miss_distance_km"`
	AvgVelocity     *float64 `json:"avg_velocity_km_s"`
	AvgDiameter     *float64 `json:"avg_diameter_km"`
	HazardousCount  int64    `json:"hazardous_count"`
}

// ApproachPoint 单次掠过的速度/距离点
type ApproachPoint struct {
	Name           string   `json:"name"`
	ApproachDate   string   `json:"approach_date"`
	VelocityKmS    float64  `json:"velocity_km_s"`
	MissDistanceKm float64  `json:"miss_distance_km"`
	DiameterKm     *float64 `json:"diameter_km"`
	IsHazardous    bool     `json:"is_hazardous"`
}

// AsteroidSize 尺寸分布所需字段
type AsteroidSize struct {
	DiameterKm  *float64
	Magnitude   *float64
	IsHazardous bool
}

// Totals 各表行数
type Totals struct {
	Asteroids       int64 `json:"asteroids"`
	Approaches      int64 `json:"approaches"`
	OrbitalElements int64 `json:"orbital_elements"`
	OrbitingBodies  int64 `json:"orbiting_bodies"`
	Summaries       int64 `json:"summaries"`
	Items           int64 `json:"items"`
	ApodEntries     int64 `json:"apod_entries"`
	Matches         int64 `json:"matches"`
}

// ReportRepository 只读聚合查询
type ReportRepository interface {
	ApproachesByDay(ctx context.Context) ([]DayApproachRow, error)
	// ApproachPoints 速度与距离都已知的掠过，按距离升序
	ApproachPoints(ctx context.Context) ([]ApproachPoint, error)
	AsteroidSizes(ctx context.Context) ([]AsteroidSize, error)
	ApproachDates(ctx context.Context) ([]string, error)
	ApodDates(ctx context.Context) ([]string, error)
	Totals(ctx context.Context) (Totals, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) ApproachesByDay(ctx context.Context) ([]DayApproachRow, error) {
	var rows []DayApproachRow
	err := r.db.WithContext(ctx).
		Table("approaches AS ap").
		Select(`ap.approach_date AS date,
			COUNT(*) AS count,
			AVG(ap.miss_distance_km) AS avg_miss_distance,
			AVG(ap.rel_vel_km_s) AS avg_velocity,
			AVG(a.estimated_diameter_max) AS avg_diameter,
			SUM(CASE WHEN a.is_potentially_hazardous THEN 1 ELSE 0 END) AS hazardous_count`).
		Joins("JOIN asteroids AS a ON a.id = ap.asteroid_id").
		Group("ap.approach_date").
		Order("ap.approach_date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *reportRepository) ApproachPoints(ctx context.Context) ([]ApproachPoint, error) {
	var rows []ApproachPoint
	err := r.db.WithContext(ctx).
		Table("approaches AS ap").
		Select(`a.name AS name,
			ap.approach_date AS approach_date,
			ap.rel_vel_km_s AS velocity_km_s,
			ap.miss_distance_km AS miss_distance_km,
			a.estimated_diameter_max AS diameter_km,
			a.is_potentially_hazardous AS is_hazardous`).
		Joins("JOIN asteroids AS a ON a.id = ap.asteroid_id").
		Where("ap.rel_vel_km_s IS NOT NULL AND ap.miss_distance_km IS NOT NULL").
		Order("ap.miss_distance_km ASC, ap.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *reportRepository) AsteroidSizes(ctx context.Context) ([]AsteroidSize, error) {
	var out []AsteroidSize
	err := r.db.WithContext(ctx).Model(&model.Asteroid{}).
		Select("estimated_diameter_max AS diameter_km, absolute_magnitude AS magnitude, is_potentially_hazardous AS is_hazardous").
		Order("id ASC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *reportRepository) ApproachDates(ctx context.Context) ([]string, error) {
	var out []string
	if err := r.db.WithContext(ctx).Model(&model.Approach{}).Distinct("approach_date").Order("approach_date ASC").Pluck("approach_date", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *reportRepository) ApodDates(ctx context.Context) ([]string, error) {
	var out []string
	if err := r.db.WithContext(ctx).Model(&model.ApodEntry{}).Distinct("date").Order("date ASC").Pluck("date", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *reportRepository) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	counts := []struct {
		m   interface{}
		dst *int64
	}{
		{&model.Asteroid{}, &t.Asteroids},
		{&model.Approach{}, &t.Approaches},
		{&model.OrbitalElements{}, &t.OrbitalElements},
		{&model.OrbitingBody{}, &t.OrbitingBodies},
		{&model.DailySummary{}, &t.Summaries},
		{&model.NeoItem{}, &t.Items},
		{&model.ApodEntry{}, &t.ApodEntries},
		{&model.MatchRecord{}, &t.Matches},
	}
	for _, c := range counts {
		if err := r.db.WithContext(ctx).Model(c.m).Count(c.dst).Error; err != nil {
			return Totals{}, err
		}
	}
	return t, nil
}
