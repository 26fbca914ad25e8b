package interfaces

import (
	"context"
	"time"

	"NeoSync/internal/model"
)

// NeoFetcher NeoWs 拉取接口（feed + lookup）
type NeoFetcher interface {
	FetchWindow(ctx context.Context, start, end time.Time) (*model.NeoFeed, error) // 区间 feed，含两端
	FetchDetail(ctx context.Context, neoID string) (*model.NeoDetail, error)       // 详情，不存在返回 nil
}

// ApodFetcher APOD 拉取接口
type ApodFetcher interface {
	FetchApod(ctx context.Context, date time.Time) (*model.ApodRaw, error)
}
