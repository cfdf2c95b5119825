package artifacts

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"extpack/internal/config"
	"extpack/internal/logging"
	"extpack/internal/services"
)

// Generator writes the synthesized files into a prepared workspace.
type Generator struct {
	ext      config.Extension
	manifest *Manifest
	logger   *slog.Logger
}

// NewGenerator returns a Generator for the extension settings and manifest.
func NewGenerator(ext config.Extension, manifest *Manifest, logger *slog.Logger) *Generator {
	return &Generator{
		ext:      ext,
		manifest: manifest,
		logger:   logging.NewComponentLogger(logger, "generator"),
	}
}

type generatedFile struct {
	name    string
	content func() ([]byte, error)
}

// Write creates the entry-point wrapper, the runtime manifest and the
// composed application file in dir, in that order. dir must already exist.
// It returns the workspace-relative names written.
func (g *Generator) Write(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "generate", "check workspace", "", err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrFilesystem, "generate", "check workspace", "",
			&fs.PathError{Op: "stat", Path: dir, Err: fmt.Errorf("not a directory")})
	}
	if g.manifest == nil {
		return nil, services.Wrap(services.ErrSerialization, "generate", "manifest", "no manifest loaded", nil)
	}

	files := []generatedFile{
		{g.ext.EntryPoint, func() ([]byte, error) {
			return []byte(EntryPoint(g.ext.AppEntry)), nil
		}},
		{g.ext.RuntimeManifest, func() ([]byte, error) {
			return g.manifest.Pretty(), nil
		}},
		{g.ext.AppEntry, func() ([]byte, error) {
			app, err := ComposeApp(AppSpec{
				Title:      g.ext.Name,
				AppModule:  g.ext.AppModule,
				InitModule: g.ext.InitModule,
				MountPath:  g.ext.MountPath,
			})
			return []byte(app), err
		}},
	}

	written := make([]string, 0, len(files))
	for _, file := range files {
		g.logger.Info("creating file", logging.String("file", file.name))
		content, err := file.content()
		if err != nil {
			return written, services.Wrap(services.ErrConfiguration, "generate", file.name, "", err)
		}
		target := filepath.Join(dir, filepath.FromSlash(file.name))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return written, services.Wrap(services.ErrFilesystem, "generate", file.name, "", err)
		}
		if err := os.WriteFile(target, content, 0o644); err != nil {
			return written, services.Wrap(services.ErrFilesystem, "generate", file.name, "", err)
		}
		written = append(written, file.name)
	}
	return written, nil
}
