package preflight

import (
	"fmt"
	"path/filepath"
	"strings"

	"extpack/internal/config"
	"extpack/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem checks for cfg. It returns nil when
// preflight is disabled.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil || !cfg.Preflight.Enabled {
		return nil
	}

	parent := filepath.Dir(cfg.Paths.OutputDir)
	results := []Result{
		CheckDirectoryAccess("Project root", cfg.Paths.Root),
		CheckWritable("Output parent", parent),
	}
	if cfg.Preflight.MinFreeMiB > 0 {
		minBytes := uint64(cfg.Preflight.MinFreeMiB) << 20
		results = append(results, CheckFreeSpace("Free space", parent, minBytes))
	}
	return results
}

// Err folds failed results into a single filesystem error, or nil when every
// check passed.
func Err(results []Result) error {
	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return services.Wrap(services.ErrFilesystem, "preflight", "checks failed", strings.Join(failed, "; "), nil)
}
