package model

import (
	"time"

	"gorm.io/datatypes"
)

// MatchType 关联来源
type MatchType string

const (
	MatchExact MatchType = "exact" // 同日期精确关联，隐含分数 1.0
	MatchFuzzy MatchType = "fuzzy" // 文本相似度关联
)

// ExactScore 精确关联在统一视图中的固定分数
const ExactScore = 1.0

// MatchRecord 模糊匹配结果（仅保存文本相似度来源；精确关联以外键形式存于 neo_items/neo_summaries）
type MatchRecord struct {
	ID           uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	NeoItemID    uint64         `gorm:"column:neo_item_id;not null;uniqueIndex:uq_item_apod;index;comment:关联NEO条目" json:"neo_item_id"`
	ApodID       uint64         `gorm:"column:apod_id;not null;uniqueIndex:uq_item_apod;comment:关联APOD" json:"apod_id"`
	Score        float64        `gorm:"column:score;not null;comment:Jaccard相似度，[threshold,1)" json:"score"`
	SharedTokens datatypes.JSON `gorm:"column:shared_tokens;comment:交集词" json:"shared_tokens"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (MatchRecord) TableName() string { return "neo_item_apod_matches" }

// ResolvedPair 统一读视图中的一条关联
type ResolvedPair struct {
	Item      NeoItem   `json:"item"`
	Apod      ApodEntry `json:"apod"`
	MatchType MatchType `json:"match_type"`
	Score     float64   `json:"score"`
}
