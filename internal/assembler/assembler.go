// Package assembler copies the extension's source files into the staging
// workspace.
//
// Operations run one at a time in a fixed order and the first failure stops
// the stage. Every operation is logged before it starts, so the last progress
// line before an error names the file that failed.
package assembler

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"extpack/internal/artifacts"
	"extpack/internal/config"
	"extpack/internal/fileutil"
	"extpack/internal/logging"
	"extpack/internal/services"
)

const stageName = "assemble"

// Assembler populates a workspace from the project tree.
type Assembler struct {
	cfg    *config.Config
	logger *slog.Logger
	now    func() time.Time
}

// Result summarizes what the assembler placed in the workspace.
type Result struct {
	// Files lists workspace-relative targets in the order they were written.
	Files            []string
	Bytes            int64
	LicenseGenerated bool
}

// New returns an Assembler for cfg.
func New(cfg *config.Config, logger *slog.Logger) *Assembler {
	return &Assembler{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "assembler"),
		now:    time.Now,
	}
}

// WithClock replaces the clock used for the generated license year.
func (a *Assembler) WithClock(now func() time.Time) *Assembler {
	if now != nil {
		a.now = now
	}
	return a
}

// Assemble renders the public page, copies the source file set and applies
// the license rule into dir.
func (a *Assembler) Assemble(ctx context.Context, dir string) (Result, error) {
	var result Result
	logger := logging.WithContext(ctx, a.logger)

	pageTarget := filepath.Join(dir, filepath.FromSlash(a.cfg.Page.Target))
	pageDir := filepath.Dir(pageTarget)
	logger.Info("creating directory", logging.String("path", relTo(dir, pageDir)))
	if err := os.MkdirAll(pageDir, 0o755); err != nil {
		return result, services.Wrap(services.ErrFilesystem, stageName, "create directory", relTo(dir, pageDir), err)
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	logger.Info("rendering page",
		logging.String("source", a.cfg.Page.Template),
		logging.String("target", a.cfg.Page.Target),
	)
	n, err := RenderPage(a.cfg.SourcePath(a.cfg.Page.Template), pageTarget)
	if err != nil {
		return result, services.Wrap(services.ErrFilesystem, stageName, "render page", a.cfg.Page.Template, err)
	}
	result.Files = append(result.Files, a.cfg.Page.Target)
	result.Bytes += n

	for _, file := range a.cfg.Files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		logger.Info("copying file",
			logging.String("source", file.Source),
			logging.String("target", file.Target),
		)
		n, err := fileutil.CopyTree(a.cfg.SourcePath(file.Source), filepath.Join(dir, filepath.FromSlash(file.Target)))
		if err != nil {
			return result, services.Wrap(services.ErrFilesystem, stageName, "copy", file.Source, err)
		}
		result.Files = append(result.Files, file.Target)
		result.Bytes += n
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	generated, n, err := a.applyLicense(logger, dir)
	if err != nil {
		return result, err
	}
	result.Files = append(result.Files, a.cfg.License.Target)
	result.Bytes += n
	result.LicenseGenerated = generated
	return result, nil
}

// applyLicense copies the project license when it exists and writes the MIT
// text otherwise.
func (a *Assembler) applyLicense(logger *slog.Logger, dir string) (bool, int64, error) {
	lic := a.cfg.License
	target := filepath.Join(dir, filepath.FromSlash(lic.Target))
	source := a.cfg.SourcePath(lic.Source)

	_, err := os.Stat(source)
	switch {
	case err == nil:
		logger.Info("copying license",
			logging.String("source", lic.Source),
			logging.String("target", lic.Target),
		)
		n, err := fileutil.CopyFileVerified(source, target)
		if err != nil {
			return false, n, services.Wrap(services.ErrFilesystem, stageName, "copy license", lic.Source, err)
		}
		return false, n, nil
	case errors.Is(err, fs.ErrNotExist):
		year := a.now().Year()
		logger.Info("creating default license",
			logging.String("target", lic.Target),
			logging.Int("year", year),
		)
		text := artifacts.DefaultLicense(year, lic.Holder)
		if err := os.WriteFile(target, []byte(text), 0o644); err != nil {
			return true, 0, services.Wrap(services.ErrFilesystem, stageName, "write license", lic.Target, err)
		}
		return true, int64(len(text)), nil
	default:
		return false, 0, services.Wrap(services.ErrFilesystem, stageName, "stat license", lic.Source, err)
	}
}

// RenderPage reads src as UTF-8 text and writes it to dst as UTF-8. Invalid
// byte sequences are replaced with U+FFFD; a leading byte order mark is kept.
// It returns the number of bytes written.
func RenderPage(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = out.Close()
	}()

	n, err := io.Copy(out, transform.NewReader(in, unicode.UTF8.NewDecoder()))
	if err != nil {
		_ = os.Remove(dst)
		return n, err
	}
	return n, out.Close()
}

func relTo(base, target string) string {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return target
	}
	return filepath.ToSlash(rel)
}
