package archiver

import (
	"archive/zip"
	"strings"
	"time"

	"extpack/internal/services"
)

// Entry describes one member of an existing archive.
type Entry struct {
	Name           string
	Size           uint64
	CompressedSize uint64
	Method         string
	Modified       time.Time
	Dir            bool
}

// List returns the entries of the archive at path in stored order.
func List(path string) ([]Entry, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, services.Wrap(services.ErrArchive, "inspect", "open", path, err)
	}
	defer reader.Close()

	entries := make([]Entry, 0, len(reader.File))
	for _, f := range reader.File {
		entries = append(entries, Entry{
			Name:           f.Name,
			Size:           f.UncompressedSize64,
			CompressedSize: f.CompressedSize64,
			Method:         methodName(f.Method),
			Modified:       f.Modified,
			Dir:            strings.HasSuffix(f.Name, "/"),
		})
	}
	return entries, nil
}

func methodName(method uint16) string {
	switch method {
	case zip.Store:
		return "store"
	case zip.Deflate:
		return "deflate"
	default:
		return "other"
	}
}
