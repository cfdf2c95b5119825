package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"extpack/internal/archiver"
	"extpack/internal/artifacts"
	"extpack/internal/assembler"
	"extpack/internal/config"
	"extpack/internal/fileutil"
	"extpack/internal/history"
	"extpack/internal/logging"
	"extpack/internal/preflight"
	"extpack/internal/services"
	"extpack/internal/workspace"
)

// Orchestrator sequences the build stages for one project.
type Orchestrator struct {
	cfg      *config.Config
	base     *slog.Logger
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
	progress archiver.ProgressFunc
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithClock replaces the wall clock used for timestamps and the license year.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithIDGenerator replaces the build id source.
func WithIDGenerator(fn func() string) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.newID = fn
		}
	}
}

// WithArchiveProgress forwards archive compression progress to fn.
func WithArchiveProgress(fn archiver.ProgressFunc) Option {
	return func(o *Orchestrator) {
		o.progress = fn
	}
}

// New returns an Orchestrator for cfg.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	o := &Orchestrator{
		cfg:    cfg,
		base:   logger,
		logger: logging.NewComponentLogger(logger, "pipeline"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// build carries state between the stages of one run.
type build struct {
	ws       *workspace.Manager
	prepared bool
	result   *Result
}

// Run executes one build. The returned Result is always populated; err is a
// *StageError when the build failed.
func (o *Orchestrator) Run(ctx context.Context) (Result, error) {
	result := Result{
		BuildID:     o.newID(),
		Status:      history.StatusFailed,
		StartedAt:   o.now(),
		ArchivePath: o.cfg.ArchivePath(),
		SidecarPath: o.cfg.SidecarPath(),
	}
	ctx = services.WithBuildID(ctx, result.BuildID)
	logger := logging.WithContext(ctx, o.logger)

	unlock, err := acquireLock(o.cfg)
	if err != nil {
		return o.fail(ctx, logger, &result, StageLock, err)
	}
	defer func() {
		if err := unlock(); err != nil {
			logger.Warn("failed to release build lock", logging.Error(err))
		}
	}()

	logger.Info("build started",
		logging.String("root", o.cfg.Paths.Root),
		logging.String("archive", o.cfg.ArchivePath()),
	)

	ws, err := workspace.New(o.cfg.Paths.OutputDir, o.cfg.WorkspacePath(), logging.WithContext(ctx, o.base))
	if err != nil {
		return o.fail(ctx, logger, &result, StageWorkspace, services.Wrap(services.ErrConfiguration, StageWorkspace, "configure", "", err))
	}
	b := &build{ws: ws, result: &result}

	for _, st := range o.stages(b) {
		if err := runStage(ctx, o.logger, o.base, st); err != nil {
			o.cleanupAfterFailure(logger, b)
			return o.fail(ctx, logger, &result, st.name, err)
		}
	}

	result.Status = history.StatusSucceeded
	result.FinishedAt = o.now()
	logger.Info("build completed",
		logging.String(logging.FieldEventType, "build_complete"),
		logging.String("archive", result.ArchivePath),
		logging.Int64("bytes", result.ArchiveBytes),
		logging.String("size", humanize.Bytes(uint64(result.ArchiveBytes))),
		logging.String("sidecar", result.SidecarPath),
		logging.Duration("elapsed", result.Duration()),
	)
	o.recordHistory(ctx, logger, result, nil)
	return result, nil
}

func (o *Orchestrator) stages(b *build) []stage {
	return []stage{
		{StagePreflight, o.runPreflight},
		{StageWorkspace, func(context.Context, *slog.Logger) error {
			if err := b.ws.Prepare(); err != nil {
				return services.Wrap(services.ErrFilesystem, StageWorkspace, "prepare", "", err)
			}
			b.prepared = true
			return nil
		}},
		{StageGenerate, func(ctx context.Context, logger *slog.Logger) error {
			logger = logging.WithContext(ctx, logger)
			manifest, err := artifacts.LoadManifest(o.cfg.SourcePath(o.cfg.Extension.Manifest))
			if err != nil {
				return err
			}
			logger.Debug("manifest loaded",
				logging.String("name", manifest.String("name")),
				logging.Int("keys", manifest.Len()),
			)
			_, err = artifacts.NewGenerator(o.cfg.Extension, manifest, logger).Write(b.ws.Dir())
			return err
		}},
		{StageAssemble, func(ctx context.Context, logger *slog.Logger) error {
			res, err := assembler.New(o.cfg, logger).WithClock(o.now).Assemble(ctx, b.ws.Dir())
			b.result.Files = res.Files
			b.result.LicenseGenerated = res.LicenseGenerated
			return err
		}},
		{StageArchive, func(ctx context.Context, logger *slog.Logger) error {
			res, err := archiver.New(o.cfg.Archive.CompressionLevel, logger).WithProgress(o.progress).Create(ctx, b.ws.Dir(), o.cfg.ArchivePath())
			if err != nil {
				return err
			}
			b.result.ArchiveBytes = res.Bytes
			b.result.ArchiveEntries = res.Entries
			return nil
		}},
		{StageExport, func(ctx context.Context, _ *slog.Logger) error {
			src := filepath.Join(b.ws.Dir(), filepath.FromSlash(o.cfg.Extension.RuntimeManifest))
			logging.WithContext(ctx, o.logger).Info("exporting manifest", logging.String("target", o.cfg.SidecarPath()))
			if _, err := fileutil.CopyFileVerified(src, o.cfg.SidecarPath()); err != nil {
				return services.Wrap(services.ErrFilesystem, StageExport, "copy", o.cfg.Paths.SidecarName, err)
			}
			return nil
		}},
		{StageCleanup, func(context.Context, *slog.Logger) error {
			if err := b.ws.Remove(); err != nil {
				return services.Wrap(services.ErrFilesystem, StageCleanup, "remove workspace", "", err)
			}
			return nil
		}},
	}
}

func (o *Orchestrator) runPreflight(ctx context.Context, _ *slog.Logger) error {
	logger := logging.WithContext(ctx, logging.NewComponentLogger(o.base, "preflight"))
	results := preflight.RunAll(o.cfg)
	if results == nil {
		logger.Debug("preflight disabled")
		return nil
	}
	for _, r := range results {
		if r.Passed {
			logger.Debug("check passed", logging.String("check", r.Name), logging.String("detail", r.Detail))
		}
	}
	return preflight.Err(results)
}

// cleanupAfterFailure removes a workspace this build prepared unless the
// configuration asks to keep it.
func (o *Orchestrator) cleanupAfterFailure(logger *slog.Logger, b *build) {
	if !b.prepared || !b.ws.Exists() {
		return
	}
	if o.cfg.Workspace.KeepOnFailure {
		b.result.WorkspaceKept = true
		logger.Info("workspace kept for inspection", logging.String("path", b.ws.Dir()))
		return
	}
	if err := b.ws.Remove(); err != nil {
		logging.WarnWithContext(logger, "failed to remove workspace after failure", "workspace_cleanup_failed",
			logging.String("path", b.ws.Dir()),
			logging.Error(err),
			logging.String(logging.FieldImpact, "the staging directory remains until the next build"),
		)
	}
}

func (o *Orchestrator) fail(ctx context.Context, logger *slog.Logger, result *Result, stageName string, err error) (Result, error) {
	result.Status = history.StatusFailed
	result.FinishedAt = o.now()
	result.FailedStage = stageName
	result.ErrorKind = services.Kind(err)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		result.ErrorKind = "cancelled"
	}

	stageErr := &StageError{Stage: stageName, Err: err}
	logger.Error("build failed",
		logging.String(logging.FieldEventType, "build_failure"),
		logging.String(logging.FieldStage, stageName),
		logging.String(logging.FieldErrorKind, result.ErrorKind),
		logging.Error(err),
	)
	if !errors.Is(err, services.ErrBusy) {
		o.recordHistory(ctx, logger, *result, stageErr)
	}
	return *result, stageErr
}

// recordHistory appends the build to the ledger. Failures are logged and
// never change the build outcome.
func (o *Orchestrator) recordHistory(ctx context.Context, logger *slog.Logger, result Result, err error) {
	if !o.cfg.History.Enabled {
		return
	}
	ctx = context.WithoutCancel(ctx)
	store, openErr := history.Open(ctx, o.cfg)
	if openErr != nil {
		logging.WarnWithContext(logger, "build history unavailable", "history_open_failed",
			logging.Error(openErr),
			logging.String(logging.FieldImpact, "this build is not recorded in history"),
		)
		return
	}
	defer store.Close()

	if _, recErr := store.Record(ctx, result.record(err)); recErr != nil {
		logging.WarnWithContext(logger, "failed to record build", "history_record_failed",
			logging.Error(recErr),
			logging.String(logging.FieldImpact, "this build is not recorded in history"),
		)
	}
}
