package fixtures

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/nicofix/internal/shared"
)

// EntryStatus is the outcome of one capture target.
type EntryStatus string

const (
	EntrySaved   EntryStatus = "saved"
	EntryFailed  EntryStatus = "failed"
	EntrySkipped EntryStatus = "skipped" // run aborted before the target was reached
)

// Manifest describes one capture run.
type Manifest struct {
	RunID       string          `json:"run_id"`
	StartedAt   time.Time       `json:"started_at"`
	FinishedAt  time.Time       `json:"finished_at"`
	FixturesDir string          `json:"fixtures_dir"`
	Entries     []ManifestEntry `json:"targets"`
}

// ManifestEntry records what happened to a single target.
type ManifestEntry struct {
	Key       string      `json:"key"`
	Category  string      `json:"category"`
	Name      string      `json:"name"`
	Operation string      `json:"operation"`
	Status    EntryStatus `json:"status"`
	Change    Status      `json:"change,omitempty"`
	Type      string      `json:"type,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// Count returns the number of entries with the given status.
func (m *Manifest) Count(status EntryStatus) int {
	n := 0
	for _, e := range m.Entries {
		if e.Status == status {
			n++
		}
	}
	return n
}

// Write saves the manifest as indented JSON.
func (m *Manifest) Write(path string) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// ReadManifest loads a manifest written by [Manifest.Write].
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read manifest %s: %v", shared.ErrFilesystem, path, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: failed to parse manifest %s: %v", shared.ErrSerialize, path, err)
	}
	return &m, nil
}
