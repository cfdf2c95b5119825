package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"extpack/internal/config"
	"extpack/internal/testsupport"
)

// newCLIProject writes a default project and an extpack.toml that disables
// the free-space check.
func newCLIProject(t *testing.T, opts ...testsupport.ProjectOption) *config.Config {
	t.Helper()
	cfg := testsupport.NewProject(t, opts...)
	testsupport.WriteText(t, filepath.Join(cfg.Paths.Root, config.ProjectConfigName), "[preflight]\nmin_free_mib = 0\n")
	return cfg
}

func runCLI(t *testing.T, root string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--root", root}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
