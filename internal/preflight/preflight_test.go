package preflight

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"extpack/internal/config"
	"extpack/internal/services"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckWritable_MissingPathUsesAncestor(t *testing.T) {
	base := t.TempDir()
	result := CheckWritable("test", filepath.Join(base, "a", "b", "c"))
	if !result.Passed {
		t.Fatalf("expected pass via existing ancestor, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, base) {
		t.Fatalf("expected detail to name the ancestor, got: %s", result.Detail)
	}
}

func TestCheckWritable_FileInPath(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckWritable("test", filepath.Join(f, "child")); result.Passed {
		t.Fatal("expected failure when a file blocks the path")
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	if result := CheckFreeSpace("test", dir, 1); !result.Passed {
		t.Fatalf("expected at least one free byte, got: %s", result.Detail)
	}
	if result := CheckFreeSpace("test", dir, math.MaxUint64); result.Passed {
		t.Fatal("expected failure for impossible requirement")
	}
}

func TestRunAll(t *testing.T) {
	root := t.TempDir()
	cfg, _, _, err := config.Load(root, "")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}

	results := RunAll(cfg)
	if len(results) != 3 {
		t.Fatalf("expected 3 checks, got %d", len(results))
	}
	if err := Err(results); err != nil {
		t.Fatalf("expected all checks to pass: %v", err)
	}

	cfg.Preflight.Enabled = false
	if results := RunAll(cfg); results != nil {
		t.Fatalf("expected no checks when disabled, got %v", results)
	}
}

func TestErrCollectsFailures(t *testing.T) {
	err := Err([]Result{
		{Name: "ok", Passed: true},
		{Name: "Project root", Detail: "/x (error: does not exist)"},
		{Name: "Free space", Detail: "/y (error: 1 KiB free, need 16 MiB)"},
	})
	if !errors.Is(err, services.ErrFilesystem) {
		t.Fatalf("expected filesystem error, got %v", err)
	}
	for _, want := range []string{"Project root", "Free space"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q: %v", want, err)
		}
	}
}
