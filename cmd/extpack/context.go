package main

import (
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"extpack/internal/config"
	"extpack/internal/logging"
)

type commandContext struct {
	rootFlag   *string
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error
}

func newCommandContext(rootFlag, configFlag *string) *commandContext {
	return &commandContext{
		rootFlag:   rootFlag,
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(c.root(), c.explicitConfig())
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
		c.configSeen = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) root() string {
	if c.rootFlag == nil || strings.TrimSpace(*c.rootFlag) == "" {
		return "."
	}
	return strings.TrimSpace(*c.rootFlag)
}

func (c *commandContext) explicitConfig() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

// defaultConfigTarget is where `config init` writes when no path is given.
func (c *commandContext) defaultConfigTarget() (string, error) {
	if explicit := c.explicitConfig(); explicit != "" {
		return config.ExpandPath(explicit)
	}
	root, err := config.ExpandPath(c.root())
	if err != nil {
		return "", err
	}
	return filepath.Join(root, config.ProjectConfigName), nil
}

// newLogger builds the command logger. Progress goes to the command's stdout
// and error-level records to its stderr.
func (c *commandContext) newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfig(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
