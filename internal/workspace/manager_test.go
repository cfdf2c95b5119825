package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"extpack/internal/logging"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	out := filepath.Join(t.TempDir(), "dist")
	m, err := New(out, filepath.Join(out, "temp"), logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestNewRejectsStagingOutsideOutput(t *testing.T) {
	base := t.TempDir()
	for _, dir := range []string{base, filepath.Join(base, "dist"), filepath.Join(base, "elsewhere")} {
		if _, err := New(filepath.Join(base, "dist"), dir, nil); err == nil {
			t.Errorf("expected error for staging dir %q", dir)
		}
	}
	if _, err := New("", "x", nil); err == nil {
		t.Error("expected error for empty output dir")
	}
}

func TestPrepareCreatesDirectories(t *testing.T) {
	m := newTestManager(t)

	if err := m.Prepare(); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if !m.Exists() {
		t.Fatal("expected staging directory to exist")
	}
}

func TestPrepareEmptiesOutputDirectory(t *testing.T) {
	m := newTestManager(t)
	if err := os.MkdirAll(filepath.Join(m.Dir(), "stale", "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(m.OutputDir(), "old.zip"), []byte("zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(m.Dir(), "leftover.js"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := m.Prepare(); err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	entries, err := os.ReadDir(m.OutputDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "temp" {
		t.Fatalf("expected only the staging dir to remain, got %v", entries)
	}
	staged, err := os.ReadDir(m.Dir())
	if err != nil {
		t.Fatal(err)
	}
	if len(staged) != 0 {
		t.Fatalf("expected empty staging dir, got %v", staged)
	}
}

func TestPrepareIsIdempotent(t *testing.T) {
	m := newTestManager(t)
	for i := 0; i < 3; i++ {
		if err := m.Prepare(); err != nil {
			t.Fatalf("Prepare #%d: %v", i+1, err)
		}
	}
}

func TestRemove(t *testing.T) {
	m := newTestManager(t)
	if err := m.Prepare(); err != nil {
		t.Fatal(err)
	}
	if err := m.Remove(); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if m.Exists() {
		t.Fatal("expected staging directory to be gone")
	}
	if err := m.Remove(); err != nil {
		t.Fatalf("second Remove should be a no-op: %v", err)
	}
	if _, err := os.Stat(m.OutputDir()); err != nil {
		t.Fatalf("output directory must survive Remove: %v", err)
	}
}
