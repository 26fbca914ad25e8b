package model

import "time"

// ApodEntry 每日天文图（date 业务上唯一，但库表不强制）
type ApodEntry struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Date        string    `gorm:"column:date;type:varchar(10);index;not null;comment:日期YYYY-MM-DD" json:"date"`
	Title       string    `gorm:"column:title;type:varchar(256)" json:"title"`
	Explanation string    `gorm:"column:explanation;type:text" json:"explanation"`
	ImageURL    string    `gorm:"column:image_url;type:varchar(512)" json:"image_url"`
	HDURL       string    `gorm:"column:hd_url;type:varchar(512)" json:"hd_url"`
	MediaType   string    `gorm:"column:media_type;type:varchar(16)" json:"media_type"`
	Copyright   string    `gorm:"column:copyright;type:varchar(256)" json:"copyright"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ApodEntry) TableName() string { return "apod_entries" }
