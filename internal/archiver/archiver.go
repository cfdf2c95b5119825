// Package archiver compresses a staged workspace into a single zip file.
//
// An Archiver writes exactly one archive. Its State moves from Idle to
// Writing when Create starts and ends in Closed or Errored. Closed is only
// entered after the zip central directory is written and the file has been
// synced and closed, so callers that observe Closed can read the archive.
package archiver

import (
	"archive/zip"
	"compress/flate"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/dustin/go-humanize"

	"extpack/internal/logging"
	"extpack/internal/services"
)

const stageName = "archive"

// Result describes a finished archive.
type Result struct {
	Path    string
	Bytes   int64
	Entries int
}

// ProgressFunc is called once before compression starts with the total
// number of file bytes to be archived. Bytes are written to the returned
// writer as they are read from the workspace.
type ProgressFunc func(total int64) io.Writer

// Archiver writes one zip archive.
type Archiver struct {
	level    int
	logger   *slog.Logger
	progress ProgressFunc
	state    atomic.Int32
}

// New returns an Archiver using deflate at level. Levels outside
// flate.NoCompression..flate.BestCompression fall back to BestCompression.
func New(level int, logger *slog.Logger) *Archiver {
	if level < flate.NoCompression || level > flate.BestCompression {
		level = flate.BestCompression
	}
	return &Archiver{
		level:  level,
		logger: logging.NewComponentLogger(logger, "archiver"),
	}
}

// WithProgress reports compression progress through fn.
func (a *Archiver) WithProgress(fn ProgressFunc) *Archiver {
	a.progress = fn
	return a
}

// State returns the current lifecycle state.
func (a *Archiver) State() State {
	return State(a.state.Load())
}

// Create walks dir and writes its contents to dest. Entry names are relative
// to dir, use forward slashes and appear in lexical order; directories get
// their own entries with a trailing slash. On failure the partial archive is
// removed.
func (a *Archiver) Create(ctx context.Context, dir, dest string) (Result, error) {
	if !a.state.CompareAndSwap(int32(Idle), int32(Writing)) {
		return Result{}, services.Wrap(services.ErrArchive, stageName, "start", fmt.Sprintf("archiver is %s", a.State()), nil)
	}
	logger := logging.WithContext(ctx, a.logger)

	if err := checkPaths(dir, dest); err != nil {
		a.state.Store(int32(Errored))
		return Result{}, err
	}
	result, err := a.write(ctx, dir, dest)
	if err != nil {
		a.state.Store(int32(Errored))
		if removeErr := os.Remove(dest); removeErr != nil && !errors.Is(removeErr, fs.ErrNotExist) {
			logger.Warn("partial archive not removed",
				logging.String("path", dest),
				logging.Error(removeErr),
				logging.String(logging.FieldEventType, "archive_cleanup_failed"),
				logging.String(logging.FieldImpact, "a truncated archive remains in the output directory"),
			)
		}
		return Result{}, err
	}
	a.state.Store(int32(Closed))

	logger.Info("archive created",
		logging.String("path", dest),
		logging.Int64("bytes", result.Bytes),
		logging.String("size", humanize.Bytes(uint64(result.Bytes))),
		logging.Int("entries", result.Entries),
	)
	return result, nil
}

func checkPaths(dir, dest string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return services.Wrap(services.ErrArchive, stageName, "stat workspace", "", err)
	}
	if !info.IsDir() {
		return services.Wrap(services.ErrArchive, stageName, "stat workspace", dir+" is not a directory", nil)
	}
	if within(dir, dest) {
		return services.Wrap(services.ErrArchive, stageName, "open", "archive must be written outside the directory being archived", nil)
	}
	return nil
}

func (a *Archiver) write(ctx context.Context, dir, dest string) (Result, error) {
	file, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return Result{}, services.Wrap(services.ErrArchive, stageName, "open", "", err)
	}
	defer func() {
		_ = file.Close()
	}()

	zw := zip.NewWriter(file)
	level := a.level
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, level)
	})

	var progress io.Writer
	if a.progress != nil {
		total, err := treeSize(dir)
		if err != nil {
			return Result{}, services.Wrap(services.ErrArchive, stageName, "measure", "", err)
		}
		progress = a.progress(total)
	}

	entries, err := addTree(ctx, zw, dir, progress)
	if err != nil {
		return Result{}, err
	}
	if err := zw.Close(); err != nil {
		return Result{}, services.Wrap(services.ErrArchive, stageName, "finalize", "", err)
	}
	if err := file.Sync(); err != nil {
		return Result{}, services.Wrap(services.ErrArchive, stageName, "sync", "", err)
	}
	if err := file.Close(); err != nil {
		return Result{}, services.Wrap(services.ErrArchive, stageName, "close", "", err)
	}

	stat, err := os.Stat(dest)
	if err != nil {
		return Result{}, services.Wrap(services.ErrArchive, stageName, "stat", "", err)
	}
	return Result{Path: dest, Bytes: stat.Size(), Entries: entries}, nil
}

func addTree(ctx context.Context, zw *zip.Writer, dir string, progress io.Writer) (int, error) {
	entries := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return services.Wrap(services.ErrArchive, stageName, "walk", "", walkErr)
		}
		if path == dir {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return services.Wrap(services.ErrArchive, stageName, "walk", "", err)
		}
		name := filepath.ToSlash(rel)

		info, err := d.Info()
		if err != nil {
			return services.Wrap(services.ErrArchive, stageName, "stat", name, err)
		}
		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return services.Wrap(services.ErrArchive, stageName, "header", name, err)
		}
		header.Name = name
		if d.IsDir() {
			header.Name += "/"
			header.Method = zip.Store
			if _, err := zw.CreateHeader(header); err != nil {
				return services.Wrap(services.ErrArchive, stageName, "add directory", name, err)
			}
			entries++
			return nil
		}
		if !info.Mode().IsRegular() {
			return services.Wrap(services.ErrArchive, stageName, "add", name+" is not a regular file", nil)
		}

		header.Method = zip.Deflate
		w, err := zw.CreateHeader(header)
		if err != nil {
			return services.Wrap(services.ErrArchive, stageName, "add", name, err)
		}
		if err := copyInto(w, path, progress); err != nil {
			return services.Wrap(services.ErrArchive, stageName, "add", name, err)
		}
		entries++
		return nil
	})
	return entries, err
}

func copyInto(w io.Writer, path string, progress io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	var src io.Reader = f
	if progress != nil {
		src = io.TeeReader(f, progress)
	}
	_, err = io.Copy(w, src)
	return err
}

// treeSize sums the sizes of the regular files below dir.
func treeSize(dir string) (int64, error) {
	var total int64
	err := filepath.WalkDir(dir, func(_ string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	return total, err
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
