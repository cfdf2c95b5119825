package pipeline

import (
	"context"
	"log/slog"
	"time"

	"extpack/internal/logging"
	"extpack/internal/services"
)

type stage struct {
	name string
	run  func(context.Context, *slog.Logger) error
}

// runStage executes one stage with started/completed/failed lifecycle lines
// written to logger. The stage itself receives base, without the pipeline
// component, so the components it drives can name themselves.
func runStage(ctx context.Context, logger, base *slog.Logger, st stage) error {
	stageCtx := logging.WithStage(ctx, st.name)
	stageLogger := logging.WithContext(stageCtx, logger)

	if err := ctx.Err(); err != nil {
		return err
	}

	stageLogger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))
	start := time.Now()

	if err := st.run(stageCtx, base); err != nil {
		stageLogger.Error("stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.String(logging.FieldErrorKind, services.Kind(err)),
			logging.Duration("elapsed", time.Since(start)),
			logging.Error(err),
		)
		return err
	}

	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", time.Since(start)),
	)
	return nil
}
