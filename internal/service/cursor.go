package service

import (
	"context"
	"fmt"
	"time"

	"NeoSync/internal/config"
	"NeoSync/internal/model"
	"NeoSync/internal/repository"
)

// Window 一次增量拉取的日期区间（含两端）
type Window struct {
	Start time.Time
	End   time.Time
}

// CursorService 根据已入库数据推导下一次拉取窗口；不单独持久化游标
type CursorService struct {
	asteroidRepo repository.AsteroidRepository
	epoch        time.Time
	windowDays   int
}

func NewCursorService(asteroidRepo repository.AsteroidRepository, cfg config.IngestConfig) (*CursorService, error) {
	epoch, err := cfg.EpochDate()
	if err != nil {
		return nil, fmt.Errorf("解析起始日期失败: %w", err)
	}
	days := cfg.WindowDays
	if days <= 0 {
		days = 7
	}
	return &CursorService{asteroidRepo: asteroidRepo, epoch: epoch, windowDays: days}, nil
}

// NextWindow start = 最大掠过日期 + 1 天（空库取 epoch），end = start + windowDays
func (s *CursorService) NextWindow(ctx context.Context) (Window, error) {
	maxDate, err := s.asteroidRepo.MaxApproachDate(ctx)
	if err != nil {
		return Window{}, fmt.Errorf("查询最大掠过日期失败: %w", err)
	}
	start := s.epoch
	if maxDate != "" {
		last, err := model.ParseDate(maxDate)
		if err != nil {
			return Window{}, fmt.Errorf("解析最大掠过日期 %q 失败: %w", maxDate, err)
		}
		start = last.AddDate(0, 0, 1)
	}
	return Window{Start: start, End: start.AddDate(0, 0, s.windowDays)}, nil
}
