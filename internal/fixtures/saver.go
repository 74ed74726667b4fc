package fixtures

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nicofix/internal/shared"
)

// Saver writes fixtures under a root directory and tracks how each one changed.
type Saver struct {
	dir     string
	tracker *DiffTracker
	logger  *log.Logger
}

// NewSaver creates a Saver rooted at dir. The directory is created on first save.
func NewSaver(dir string, logger *log.Logger) *Saver {
	return &Saver{dir: dir, tracker: NewDiffTracker(logger), logger: logger}
}

// Dir returns the fixtures root.
func (s *Saver) Dir() string { return s.dir }

// Tracker returns the diff tracker fed by [Saver.Save].
func (s *Saver) Tracker() *DiffTracker { return s.tracker }

// Save writes encoded fixture data to dir/category/name.json, replacing any previous file.
//
// Errors wrap [shared.ErrFilesystem].
func (s *Saver) Save(category, name string, data []byte) (string, Change, error) {
	key := Key(category, name)
	path := Path(s.dir, category, name)

	old, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		old = nil
	case err != nil:
		if s.logger != nil {
			s.logger.Warn("could not read existing fixture", "path", path, "error", err)
		}
		old = nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return path, Change{}, fmt.Errorf("%w: failed to create directory for %s: %v", shared.ErrFilesystem, path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return path, Change{}, fmt.Errorf("%w: failed to write %s: %v", shared.ErrFilesystem, path, err)
	}

	// Only fixtures that reached disk are tracked.
	change := s.tracker.Track(key, old, data)

	if s.logger != nil {
		s.logger.Info("saved fixture", "path", path)
	}
	return path, change, nil
}
