package fixtures

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"go/format"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"unicode"

	"github.com/desertthunder/nicofix/internal/nicovideo"
	"github.com/desertthunder/nicofix/internal/shared"
)

// Mapping records, for each fixture key, the Go type its JSON decodes into.
type Mapping map[string]nicovideo.TypeRef

// Keys returns the fixture keys in sorted order.
func (m Mapping) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge copies entries from other into m, replacing existing keys.
func (m Mapping) Merge(other Mapping) {
	for k, v := range other {
		m[k] = v
	}
}

// LoadMapping reads a mapping JSON file. A missing file yields an empty mapping.
func LoadMapping(path string) (Mapping, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Mapping{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read mapping %s: %v", shared.ErrFilesystem, path, err)
	}

	m := Mapping{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: failed to parse mapping %s: %v", shared.ErrSerialize, path, err)
	}
	return m, nil
}

// WriteJSON writes the mapping with keys in sorted order.
func (m Mapping) WriteJSON(path string) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// DecodeFixture decodes fixture data using the type recorded for key.
func (m Mapping) DecodeFixture(key string, data []byte) (nicovideo.Response, error) {
	ref, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("%w: no type mapping for %s", shared.ErrSerialize, key)
	}
	return nicovideo.Decode(ref, data)
}

// ReadFixture loads and decodes the fixture stored under dir for key.
func (m Mapping) ReadFixture(dir, key string) (nicovideo.Response, error) {
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read fixture %s: %v", shared.ErrFilesystem, key, err)
	}
	return m.DecodeFixture(key, data)
}

var goTemplate = template.Must(template.New("mapping").Parse(`// Code generated by nicofix. DO NOT EDIT.

package {{ .Package }}

import (
{{- range .Imports }}
	{{ printf "%q" . }}
{{- end }}
)

// FixtureTypeMappings maps fixture paths to constructors of the value each fixture decodes into.
var FixtureTypeMappings = map[string]func() any{
{{- range .Entries }}
	{{ printf "%q" .Key }}: func() any { return new({{ .Type }}) },
{{- end }}
}
`))

type goEntry struct {
	Key  string
	Type string
}

// GoSource renders the mapping as a gofmt-formatted Go file in package pkg.
func (m Mapping) GoSource(pkg string) ([]byte, error) {
	imports := map[string]bool{}
	entries := make([]goEntry, 0, len(m))
	for _, key := range m.Keys() {
		ref := m[key]
		if ref.Package != "" {
			imports[ref.Package] = true
		}
		entries = append(entries, goEntry{Key: key, Type: ref.String()})
	}

	paths := make([]string, 0, len(imports))
	for p := range imports {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var buf bytes.Buffer
	data := struct {
		Package string
		Imports []string
		Entries []goEntry
	}{pkg, paths, entries}
	if err := goTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("%w: failed to render mapping source: %v", shared.ErrSerialize, err)
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to format mapping source: %v", shared.ErrSerialize, err)
	}
	return src, nil
}

// WriteGo writes the mapping as Go source. The package name is derived from the file's directory.
func (m Mapping) WriteGo(path string) error {
	src, err := m.GoSource(PackageName(filepath.Dir(path)))
	if err != nil {
		return err
	}
	return writeFile(path, src)
}

// PackageName turns a directory into a valid Go package name, falling back to "fixtures".
func PackageName(dir string) string {
	base := strings.ToLower(filepath.Base(dir))
	var b strings.Builder
	for _, r := range base {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" || unicode.IsDigit(rune(name[0])) {
		return "fixtures"
	}
	return name
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: failed to create directory for %s: %v", shared.ErrFilesystem, path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: failed to write %s: %v", shared.ErrFilesystem, path, err)
	}
	return nil
}
