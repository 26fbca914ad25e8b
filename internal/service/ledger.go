package service

import (
	"context"
	"encoding/json"
	"time"

	"NeoSync/internal/model"
	"NeoSync/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// runLedger 写入 ingest_runs；台账写入失败只告警，不影响本次运行结果
type runLedger struct {
	repo   repository.RunRepository
	logger *logrus.Logger
}

func newRunID() string {
	return uuid.NewString()
}

func (l runLedger) record(ctx context.Context, run *model.IngestRun, skipped []string, startedAt time.Time) {
	if l.repo == nil {
		return
	}
	if skipped == nil {
		skipped = []string{}
	}
	raw, _ := json.Marshal(skipped)
	run.SkippedDates = datatypes.JSON(raw)
	run.StartedAt = startedAt
	run.FinishedAt = time.Now()
	if err := l.repo.Create(ctx, run); err != nil {
		l.logger.WithError(err).WithField("run_uuid", run.RunUUID).Warn("写入运行台账失败")
	}
}
