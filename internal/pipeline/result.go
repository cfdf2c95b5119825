package pipeline

import (
	"fmt"
	"time"

	"extpack/internal/history"
)

// Stage names in execution order.
const (
	StageLock      = "lock"
	StagePreflight = "preflight"
	StageWorkspace = "workspace"
	StageGenerate  = "generate"
	StageAssemble  = "assemble"
	StageArchive   = "archive"
	StageExport    = "export"
	StageCleanup   = "cleanup"
)

// StageError reports the stage a build failed in.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Result describes a finished build, successful or not.
type Result struct {
	BuildID    string
	Status     history.Status
	StartedAt  time.Time
	FinishedAt time.Time

	// FailedStage and ErrorKind are set only when Status is failed.
	FailedStage string
	ErrorKind   string

	ArchivePath      string
	ArchiveBytes     int64
	ArchiveEntries   int
	SidecarPath      string
	Files            []string
	LicenseGenerated bool
	WorkspaceKept    bool
}

// Succeeded reports whether the build produced its artifacts.
func (r Result) Succeeded() bool {
	return r.Status == history.StatusSucceeded
}

// Duration returns the wall time of the build.
func (r Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r Result) record(err error) history.Record {
	rec := history.Record{
		BuildID:          r.BuildID,
		Status:           r.Status,
		FailedStage:      r.FailedStage,
		ErrorKind:        r.ErrorKind,
		ArchivePath:      r.ArchivePath,
		ArchiveBytes:     r.ArchiveBytes,
		ArchiveEntries:   r.ArchiveEntries,
		LicenseGenerated: r.LicenseGenerated,
		StartedAt:        r.StartedAt,
		FinishedAt:       r.FinishedAt,
	}
	if err != nil {
		rec.ErrorMessage = err.Error()
	}
	return rec
}
