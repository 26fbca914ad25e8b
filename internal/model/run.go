package model

import (
	"time"

	"gorm.io/datatypes"
)

// RunKind 运行类型
type RunKind string

const (
	RunWindow    RunKind = "window"    // 游标窗口增量
	RunRange     RunKind = "range"     // 指定日期区间逐日拉取
	RunApod      RunKind = "apod"      // APOD 拉取
	RunReconcile RunKind = "reconcile" // 对账
)

// IngestRun 每次运行的台账
type IngestRun struct {
	ID            uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	RunUUID       string         `gorm:"column:run_uuid;type:varchar(64);uniqueIndex;not null" json:"run_uuid"`
	Kind          RunKind        `gorm:"column:kind;type:varchar(16);not null" json:"kind"`
	StartDate     string         `gorm:"column:start_date;type:varchar(10)" json:"start_date"`
	EndDate       string         `gorm:"column:end_date;type:varchar(10)" json:"end_date"`
	NewAsteroids  int            `gorm:"column:new_asteroids;default:0" json:"new_asteroids"`
	NewApproaches int            `gorm:"column:new_approaches;default:0" json:"new_approaches"`
	NewItems      int            `gorm:"column:new_items;default:0" json:"new_items"`
	NewApods      int            `gorm:"column:new_apods;default:0" json:"new_apods"`
	SkippedDates  datatypes.JSON `gorm:"column:skipped_dates;comment:拉取失败跳过的日期" json:"skipped_dates"`
	StartedAt     time.Time      `gorm:"column:started_at" json:"started_at"`
	FinishedAt    time.Time      `gorm:"column:finished_at" json:"finished_at"`
}

func (IngestRun) TableName() string { return "ingest_runs" }
