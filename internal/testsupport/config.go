// Package testsupport builds throwaway extension projects for tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"extpack/internal/config"
)

// DefaultSources is the content written for the default source layout.
var DefaultSources = map[string]string{
	"auth0-manifest.json": `{"name":"x","version":"1.0"}`,
	"auth0-frontend.html": "<!doctype html>\n<html><body>Admin</body></html>\n",
	"auth0-ai-admin.js":   "const express = require('express');\nmodule.exports = express();\n",
	"auth0-config.js":     "module.exports = { domain: 'example.auth0.com' };\n",
	"auth0-init.js":       "module.exports = function init(req, res) { res.end(); };\n",
	"package.json":        `{"name":"auth0-ai-admin-assistant","version":"1.0.0"}`,
	"README.md":           "# Admin Assistant\n",
}

// ProjectOption allows callers to customize the generated test project.
type ProjectOption func(*projectBuilder)

type projectBuilder struct {
	t       testing.TB
	root    string
	sources map[string]string
	mutate  []func(*config.Config)
}

// NewProject writes a project tree with the default source layout into a
// temp directory and returns its loaded configuration. Preflight free-space
// checks are disabled so tests do not depend on the host disk.
func NewProject(t testing.TB, opts ...ProjectOption) *config.Config {
	t.Helper()

	builder := &projectBuilder{
		t:       t,
		root:    t.TempDir(),
		sources: make(map[string]string, len(DefaultSources)),
	}
	for name, content := range DefaultSources {
		builder.sources[name] = content
	}
	for _, opt := range opts {
		opt(builder)
	}

	for name, content := range builder.sources {
		WriteText(t, filepath.Join(builder.root, filepath.FromSlash(name)), content)
	}

	cfg, _, _, err := config.Load(builder.root, "")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	cfg.Preflight.MinFreeMiB = 0
	for _, fn := range builder.mutate {
		fn(cfg)
	}
	return cfg
}

// WithSource adds or replaces a project file.
func WithSource(name, content string) ProjectOption {
	return func(b *projectBuilder) {
		b.sources[name] = content
	}
}

// WithoutSource leaves a default project file out of the tree.
func WithoutSource(name string) ProjectOption {
	return func(b *projectBuilder) {
		delete(b.sources, name)
	}
}

// WithConfig adjusts the loaded configuration.
func WithConfig(fn func(*config.Config)) ProjectOption {
	return func(b *projectBuilder) {
		b.mutate = append(b.mutate, fn)
	}
}
