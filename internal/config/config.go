package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// ProjectConfigName is the file looked up in the project root when no
// explicit config path is supplied.
const ProjectConfigName = "extpack.toml"

// Paths contains output locations. Relative values resolve against the
// project root, except WorkspaceDir which resolves against OutputDir.
type Paths struct {
	Root         string `toml:"-"`
	OutputDir    string `toml:"output_dir"`
	WorkspaceDir string `toml:"workspace_dir"`
	ArchiveName  string `toml:"archive_name"`
	SidecarName  string `toml:"sidecar_name"`
	StateDir     string `toml:"state_dir"`
}

// Extension describes the manifest and the generated wrapper files.
type Extension struct {
	Name            string `toml:"name"`
	Manifest        string `toml:"manifest"`
	EntryPoint      string `toml:"entry_point"`
	RuntimeManifest string `toml:"runtime_manifest"`
	AppEntry        string `toml:"app_entry"`
	AppModule       string `toml:"app_module"`
	InitModule      string `toml:"init_module"`
	MountPath       string `toml:"mount_path"`
}

// Page is the HTML template rendered as the public index page.
type Page struct {
	Template string `toml:"template"`
	Target   string `toml:"target"`
}

// File maps one source path to its workspace-relative target.
type File struct {
	Source string `toml:"source"`
	Target string `toml:"target"`
}

// License controls the optional license source and the synthesized fallback.
type License struct {
	Source string `toml:"source"`
	Target string `toml:"target"`
	Holder string `toml:"holder"`
}

// Archive contains compression settings.
type Archive struct {
	CompressionLevel int `toml:"compression_level"`
}

// Workspace controls staging directory lifecycle.
type Workspace struct {
	// KeepOnFailure leaves the staging directory in place after a failed
	// build for post-mortem inspection.
	KeepOnFailure bool `toml:"keep_on_failure"`
}

// Preflight controls the checks run before the workspace is touched.
type Preflight struct {
	Enabled    bool `toml:"enabled"`
	MinFreeMiB int  `toml:"min_free_mib"`
}

// History controls the build ledger.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for a packaging run.
//
// Configuration sections:
//   - Paths: output directory, staging directory and artifact names
//   - Extension: manifest location and generated wrapper names
//   - Page: HTML template rendered as the public index page
//   - Files: the source file set copied into the workspace
//   - License: optional license source and fallback holder
//   - Archive: compression level
//   - Workspace: failure-path cleanup
//   - Preflight: disk and permission checks
//   - History: SQLite build ledger
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Extension Extension `toml:"extension"`
	Page      Page      `toml:"page"`
	Files     []File    `toml:"files"`
	License   License   `toml:"license"`
	Archive   Archive   `toml:"archive"`
	Workspace Workspace `toml:"workspace"`
	Preflight Preflight `toml:"preflight"`
	History   History   `toml:"history"`
	Logging   Logging   `toml:"logging"`
}

// Load resolves the project root, locates and parses an optional config
// file, and validates the result. When path is empty the project-level
// extpack.toml is used if present; otherwise defaults apply. The returned
// config has every path expanded to an absolute location.
func Load(root, path string) (*Config, string, bool, error) {
	cfg := Default()

	absRoot, err := expandPath(defaultString(root, "."), "")
	if err != nil {
		return nil, "", false, fmt.Errorf("resolve project root: %w", err)
	}

	resolvedPath, exists, err := resolveConfigPath(absRoot, path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		// A [[files]] table in the file replaces the built-in set entirely.
		cfg.Files = nil
		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
		if len(cfg.Files) == 0 {
			cfg.Files = DefaultFiles()
		}
	}

	cfg.Paths.Root = absRoot
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(root, path string) (string, bool, error) {
	candidate := filepath.Join(root, ProjectConfigName)
	if strings.TrimSpace(path) != "" {
		expanded, err := expandPath(path, "")
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, fmt.Errorf("config file %s does not exist", expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	info, err := os.Stat(candidate)
	switch {
	case err == nil && !info.IsDir():
		return candidate, true, nil
	case err == nil || errors.Is(err, fs.ErrNotExist):
		return candidate, false, nil
	default:
		return "", false, fmt.Errorf("stat config: %w", err)
	}
}

// WorkspacePath returns the absolute staging directory.
func (c *Config) WorkspacePath() string {
	return c.Paths.WorkspaceDir
}

// ArchivePath returns the absolute location of the output archive.
func (c *Config) ArchivePath() string {
	return filepath.Join(c.Paths.OutputDir, c.Paths.ArchiveName)
}

// SidecarPath returns the absolute location of the exported manifest copy.
func (c *Config) SidecarPath() string {
	return filepath.Join(c.Paths.OutputDir, c.Paths.SidecarName)
}

// LockPath returns the build lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "build.lock")
}

// HistoryPath returns the build ledger database location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// SourcePath resolves a project-relative path against the project root.
func (c *Config) SourcePath(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(c.Paths.Root, filepath.FromSlash(rel))
}

// EnsureStateDir creates the directory that holds the build lock and ledger.
func (c *Config) EnsureStateDir() error {
	if err := os.MkdirAll(c.Paths.StateDir, 0o755); err != nil {
		return fmt.Errorf("create state directory %q: %w", c.Paths.StateDir, err)
	}
	return nil
}

// expandPath cleans pathValue and makes it absolute. Relative values are
// joined to base when base is set, otherwise to the working directory.
func expandPath(pathValue, base string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	if base != "" && !filepath.IsAbs(cleaned) {
		return filepath.Join(base, cleaned), nil
	}
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue, "")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

func defaultString(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
