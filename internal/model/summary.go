package model

import "time"

// DailySummary 每日 NEO 汇总（date 唯一）
type DailySummary struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Date      string    `gorm:"column:date;type:varchar(10);uniqueIndex;not null;comment:日期YYYY-MM-DD" json:"date"`
	Count     int       `gorm:"column:count;not null;default:0;comment:当日NEO数量" json:"count"`
	Smallest  float64   `gorm:"column:smallest;default:0;comment:最小直径(km)" json:"smallest"`
	Largest   float64   `gorm:"column:largest;default:0;comment:最大直径(km)" json:"largest"`
	ApodID    *uint64   `gorm:"column:apod_id;index;comment:按日期精确关联的APOD" json:"apod_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// NeoItem 单个 NEO 条目（每个汇总最多 N 条，供对账使用）
type NeoItem struct {
	ID           uint64   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	NeoSummaryID uint64   `gorm:"column:neo_summary_id;not null;uniqueIndex:uq_summary_neo;comment:所属汇总ID" json:"neo_summary_id"`
	NeoID        string   `gorm:"column:neo_id;type:varchar(32);not null;uniqueIndex:uq_summary_neo;comment:NeoWs原生ID" json:"neo_id"`
	Date         string   `gorm:"column:date;type:varchar(10);index;not null" json:"date"`
	Name         string   `gorm:"column:name;type:varchar(128)" json:"name"`
	DiameterMin  *float64 `gorm:"column:diameter_min" json:"diameter_min"`
	DiameterMax  *float64 `gorm:"column:diameter_max" json:"diameter_max"`
	IsHazardous  bool     `gorm:"column:is_hazardous;default:false" json:"is_hazardous"`
	ApodID       *uint64  `gorm:"column:apod_id;index;comment:按日期精确关联的APOD" json:"apod_id"`
}

func (DailySummary) TableName() string { return "neo_summaries" }
func (NeoItem) TableName() string      { return "neo_items" }
