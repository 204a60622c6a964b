package workflow

import (
	"context"
	"log/slog"
	"time"

	"subsync/internal/logging"
	"subsync/internal/services"
)

// Stage names recorded in logs and error messages.
const (
	StageResolve = "resolve"
	StageParse   = "parse"
	StageFilter  = "filter"
	StageAlign   = "align"
	StageApply   = "apply"
	StageWrite   = "write"
)

// runStage stamps ctx with the stage, logs its start and outcome and returns
// fn's error unchanged.
func runStage(ctx context.Context, logger *slog.Logger, name string, fn func(context.Context, *slog.Logger) error) error {
	stageCtx := services.WithStage(ctx, name)
	stageLogger := logging.WithContext(stageCtx, logger)
	started := time.Now()

	stageLogger.Debug("stage started", logging.String(logging.FieldEventType, "stage_start"))
	if err := fn(stageCtx, stageLogger); err != nil {
		logging.ErrorWithContext(stageLogger, "stage failed", "stage_failure",
			logging.Duration("elapsed", time.Since(started)),
			logging.Error(err),
		)
		return err
	}
	stageLogger.Debug("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}
