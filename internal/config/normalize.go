package config

import (
	"fmt"
	"path"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeExtension()
	c.normalizeFiles()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	root := c.Paths.Root
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir, root); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.WorkspaceDir) == "" {
		c.Paths.WorkspaceDir = defaultWorkspaceDir
	}
	if c.Paths.WorkspaceDir, err = expandPath(c.Paths.WorkspaceDir, c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.workspace_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir, root); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	c.Paths.ArchiveName = strings.TrimSpace(c.Paths.ArchiveName)
	if c.Paths.ArchiveName == "" {
		c.Paths.ArchiveName = defaultArchiveName
	}
	c.Paths.SidecarName = strings.TrimSpace(c.Paths.SidecarName)
	if c.Paths.SidecarName == "" {
		c.Paths.SidecarName = defaultSidecarName
	}
	return nil
}

func (c *Config) normalizeExtension() {
	ext := &c.Extension
	ext.Name = strings.TrimSpace(ext.Name)
	ext.Manifest = strings.TrimSpace(ext.Manifest)
	ext.EntryPoint = cleanTarget(ext.EntryPoint)
	ext.RuntimeManifest = cleanTarget(ext.RuntimeManifest)
	ext.AppEntry = cleanTarget(ext.AppEntry)
	ext.AppModule = strings.TrimSpace(ext.AppModule)
	ext.InitModule = strings.TrimSpace(ext.InitModule)
	ext.MountPath = strings.TrimSpace(ext.MountPath)
	if ext.MountPath == "" {
		ext.MountPath = defaultMountPath
	}
	c.Page.Template = strings.TrimSpace(c.Page.Template)
	c.Page.Target = cleanTarget(c.Page.Target)
	c.License.Source = strings.TrimSpace(c.License.Source)
	c.License.Target = cleanTarget(c.License.Target)
	if c.License.Target == "" {
		c.License.Target = defaultLicenseTarget
	}
	c.License.Holder = strings.TrimSpace(c.License.Holder)
}

func (c *Config) normalizeFiles() {
	for i := range c.Files {
		c.Files[i].Source = strings.TrimSpace(c.Files[i].Source)
		c.Files[i].Target = cleanTarget(c.Files[i].Target)
		if c.Files[i].Target == "" {
			c.Files[i].Target = cleanTarget(c.Files[i].Source)
		}
	}
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if format == "" {
		format = defaultLogFormat
	}
	c.Logging.Format = format

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level
}

// cleanTarget converts a workspace-relative target to a clean slash path.
func cleanTarget(value string) string {
	value = strings.TrimSpace(strings.ReplaceAll(value, "\\", "/"))
	if value == "" {
		return ""
	}
	return path.Clean(value)
}
