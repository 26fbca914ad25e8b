package model

import "time"

// DateLayout 所有日期列统一使用 ISO 日期字符串，字典序即时间序
const DateLayout = "2006-01-02"

// FormatDate time -> YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate YYYY-MM-DD -> time（UTC 零点）
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// AllModels 需要迁移的表（按依赖顺序）
func AllModels() []interface{} {
	return []interface{}{
		&Asteroid{},
		&OrbitalElements{},
		&OrbitingBody{},
		&Approach{},
		&ApodEntry{},
		&DailySummary{},
		&NeoItem{},
		&MatchRecord{},
		&IngestRun{},
	}
}
