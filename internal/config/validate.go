package config

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateExtension(); err != nil {
		return err
	}
	if err := c.validateTargets(); err != nil {
		return err
	}
	if err := c.validateArchive(); err != nil {
		return err
	}
	if err := c.validatePreflight(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.OutputDir == c.Paths.Root || isWithin(c.Paths.Root, c.Paths.OutputDir) {
		return errors.New("paths.output_dir must not contain the project root; it is emptied on every build")
	}
	if !isWithin(c.Paths.WorkspaceDir, c.Paths.OutputDir) {
		return errors.New("paths.workspace_dir must be inside paths.output_dir")
	}
	if c.Paths.StateDir == c.Paths.OutputDir || isWithin(c.Paths.StateDir, c.Paths.OutputDir) {
		return errors.New("paths.state_dir must not be inside paths.output_dir")
	}
	if strings.ContainsAny(c.Paths.ArchiveName, `/\`) {
		return errors.New("paths.archive_name must be a file name, not a path")
	}
	if strings.ContainsAny(c.Paths.SidecarName, `/\`) {
		return errors.New("paths.sidecar_name must be a file name, not a path")
	}
	if c.Paths.ArchiveName == c.Paths.SidecarName {
		return errors.New("paths.archive_name and paths.sidecar_name must differ")
	}
	return nil
}

func (c *Config) validateExtension() error {
	required := []struct {
		key   string
		value string
	}{
		{"extension.manifest", c.Extension.Manifest},
		{"extension.entry_point", c.Extension.EntryPoint},
		{"extension.runtime_manifest", c.Extension.RuntimeManifest},
		{"extension.app_entry", c.Extension.AppEntry},
		{"extension.app_module", c.Extension.AppModule},
		{"extension.init_module", c.Extension.InitModule},
		{"page.template", c.Page.Template},
		{"page.target", c.Page.Target},
	}
	for _, field := range required {
		if field.value == "" {
			return fmt.Errorf("%s must be set", field.key)
		}
	}
	if !strings.HasPrefix(c.Extension.MountPath, "/") {
		return errors.New("extension.mount_path must start with /")
	}
	return nil
}

// validateTargets rejects targets that escape the workspace or collide.
func (c *Config) validateTargets() error {
	seen := make(map[string]string)
	claim := func(key, target string) error {
		if target == "" {
			return fmt.Errorf("%s must be set", key)
		}
		if path.IsAbs(target) || target == ".." || strings.HasPrefix(target, "../") {
			return fmt.Errorf("%s %q must stay inside the workspace", key, target)
		}
		if prev, ok := seen[target]; ok {
			return fmt.Errorf("%s %q collides with %s", key, target, prev)
		}
		seen[target] = key
		return nil
	}

	if err := claim("extension.entry_point", c.Extension.EntryPoint); err != nil {
		return err
	}
	if err := claim("extension.runtime_manifest", c.Extension.RuntimeManifest); err != nil {
		return err
	}
	if err := claim("extension.app_entry", c.Extension.AppEntry); err != nil {
		return err
	}
	if err := claim("page.target", c.Page.Target); err != nil {
		return err
	}
	if err := claim("license.target", c.License.Target); err != nil {
		return err
	}
	if len(c.Files) == 0 {
		return errors.New("files must include at least one entry")
	}
	for i, file := range c.Files {
		key := fmt.Sprintf("files[%d]", i)
		if file.Source == "" {
			return fmt.Errorf("%s.source must be set", key)
		}
		if err := c.checkSource(key+".source", file.Source); err != nil {
			return err
		}
		if err := claim(key+".target", file.Target); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateArchive() error {
	if c.Archive.CompressionLevel < 0 || c.Archive.CompressionLevel > 9 {
		return errors.New("archive.compression_level must be between 0 and 9")
	}
	return nil
}

func (c *Config) validatePreflight() error {
	if c.Preflight.MinFreeMiB < 0 {
		return errors.New("preflight.min_free_mib must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

// checkSource rejects sources that overlap the output directory: a source
// holding it would copy the workspace into itself, one inside it is emptied
// before assembly.
func (c *Config) checkSource(key, rel string) error {
	src := c.SourcePath(rel)
	out := c.Paths.OutputDir
	if src == out || isWithin(out, src) || isWithin(src, out) {
		return fmt.Errorf("%s %q overlaps paths.output_dir", key, rel)
	}
	return nil
}

// isWithin reports whether child is strictly below parent.
func isWithin(child, parent string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
