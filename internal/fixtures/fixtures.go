// package fixtures writes captured responses to disk as JSON fixture files.
package fixtures

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"

	"github.com/desertthunder/nicofix/internal/shared"
)

const (
	Ext = ".json"

	MappingJSONFile = "fixture_type_mappings.json"
	MappingGoFile   = "fixture_type_mappings.go"
	ManifestFile    = "capture_manifest.json"
)

// Key returns the slash separated fixture key, e.g. "search/test.json".
//
// Keys identify fixtures in the type mapping and the manifest independently of the OS.
func Key(category, name string) string {
	return path.Join(category, name+Ext)
}

// Path returns the file path of a fixture: dir/category/name.json.
func Path(dir, category, name string) string {
	return filepath.Join(dir, filepath.FromSlash(Key(category, name)))
}

// Encode serializes v as 2-space indented JSON with non-ASCII text left as is and a trailing newline.
//
// The output for equal values is byte-identical.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSerialize, err)
	}
	return buf.Bytes(), nil
}
