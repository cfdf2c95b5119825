// Package workspace owns the output directory and the ephemeral staging
// directory nested inside it.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"extpack/internal/logging"
)

// Manager prepares and tears down the staging directory for one build.
type Manager struct {
	outputDir string
	dir       string
	logger    *slog.Logger
}

// New returns a Manager for the given output directory and the staging
// directory nested inside it.
func New(outputDir, dir string, logger *slog.Logger) (*Manager, error) {
	outputDir = strings.TrimSpace(outputDir)
	dir = strings.TrimSpace(dir)
	if outputDir == "" || dir == "" {
		return nil, errors.New("workspace requires output and staging directories")
	}
	rel, err := filepath.Rel(outputDir, dir)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("staging directory %q must be inside %q", dir, outputDir)
	}
	return &Manager{
		outputDir: outputDir,
		dir:       dir,
		logger:    logging.NewComponentLogger(logger, "workspace"),
	}, nil
}

// Dir returns the staging directory.
func (m *Manager) Dir() string { return m.dir }

// OutputDir returns the output directory.
func (m *Manager) OutputDir() string { return m.outputDir }

// Prepare ensures the output directory exists and is empty, then creates the
// staging directory. Running it repeatedly is safe.
func (m *Manager) Prepare() error {
	if err := os.MkdirAll(m.outputDir, 0o755); err != nil {
		return err
	}
	removed, err := emptyDir(m.outputDir)
	if err != nil {
		return err
	}
	if removed > 0 {
		m.logger.Debug("cleared output directory",
			logging.String("path", m.outputDir),
			logging.Int("removed", removed),
		)
	}
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return err
	}
	m.logger.Info("workspace ready", logging.String("path", m.dir))
	return nil
}

// Exists reports whether the staging directory is present.
func (m *Manager) Exists() bool {
	info, err := os.Stat(m.dir)
	return err == nil && info.IsDir()
}

// Remove deletes the staging directory tree. A missing directory is not an
// error.
func (m *Manager) Remove() error {
	if err := os.RemoveAll(m.dir); err != nil {
		return err
	}
	m.logger.Info("workspace removed", logging.String("path", m.dir))
	return nil
}

// emptyDir removes every entry inside dir, leaving dir itself in place.
func emptyDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	removed := 0
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
