package artifacts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"extpack/internal/services"
)

// Manifest is the extension descriptor consumed by the host runtime. It keeps
// the source document so key order and values survive re-serialization.
type Manifest struct {
	raw    []byte
	fields map[string]json.RawMessage
}

// LoadManifest reads and parses the manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "manifest", "read", "", err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ParseManifest validates data as a JSON document whose top level is an
// object.
func ParseManifest(data []byte) (*Manifest, error) {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, services.Wrap(services.ErrSerialization, "manifest", "parse",
				fmt.Sprintf("top level must be an object, found %s", typeErr.Value), err)
		}
		return nil, services.Wrap(services.ErrSerialization, "manifest", "parse", "", err)
	}
	if fields == nil {
		return nil, services.Wrap(services.ErrSerialization, "manifest", "parse", "top level must be an object, found null", nil)
	}
	return &Manifest{raw: trimmed, fields: fields}, nil
}

// Pretty returns the manifest re-indented with two spaces, without a trailing
// newline. Keys, key order and values are unchanged.
func (m *Manifest) Pretty() []byte {
	var buf bytes.Buffer
	// raw was validated by ParseManifest, so Indent cannot fail.
	_ = json.Indent(&buf, m.raw, "", "  ")
	return buf.Bytes()
}

// String returns the value of a top-level string field, or "" when the field
// is missing or not a string.
func (m *Manifest) String(key string) string {
	raw, ok := m.fields[key]
	if !ok {
		return ""
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return ""
	}
	return value
}

// Len returns the number of top-level keys.
func (m *Manifest) Len() int { return len(m.fields) }
