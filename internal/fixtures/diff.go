package fixtures

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/pmezard/go-difflib/difflib"
)

// Status classifies a saved fixture against the file it replaced.
type Status string

const (
	StatusNew       Status = "new"
	StatusChanged   Status = "changed"
	StatusUnchanged Status = "unchanged"
)

// Change is the outcome of tracking one fixture.
type Change struct {
	Key    string
	Status Status
	Diff   string // unified diff, only for StatusChanged
}

// Summary lists fixture keys by [Status] in the order they were tracked.
type Summary struct {
	New       []string
	Changed   []string
	Unchanged []string
}

// HasChanges reports whether any fixture was created or modified.
func (s Summary) HasChanges() bool {
	return len(s.New) > 0 || len(s.Changed) > 0
}

// DiffTracker compares fixture content before it is overwritten.
type DiffTracker struct {
	mu      sync.Mutex
	summary Summary
	logger  *log.Logger
}

// NewDiffTracker creates a tracker. A nil logger disables logging.
func NewDiffTracker(logger *log.Logger) *DiffTracker {
	return &DiffTracker{logger: logger}
}

// Track classifies after against before. A nil before means the fixture did not exist.
func (t *DiffTracker) Track(key string, before, after []byte) Change {
	change := Change{Key: key}
	switch {
	case before == nil:
		change.Status = StatusNew
	case string(before) == string(after):
		change.Status = StatusUnchanged
	default:
		change.Status = StatusChanged
		change.Diff = UnifiedDiff(string(before), string(after))
	}

	t.mu.Lock()
	switch change.Status {
	case StatusNew:
		t.summary.New = append(t.summary.New, key)
	case StatusChanged:
		t.summary.Changed = append(t.summary.Changed, key)
	default:
		t.summary.Unchanged = append(t.summary.Unchanged, key)
	}
	t.mu.Unlock()

	if t.logger != nil {
		switch change.Status {
		case StatusNew:
			t.logger.Info("new fixture", "key", key)
		case StatusChanged:
			t.logger.Info("fixture changed", "key", key, "diff", change.Diff)
		}
	}
	return change
}

// Summary returns a copy of the tracked results.
func (t *DiffTracker) Summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	return Summary{
		New:       append([]string(nil), t.summary.New...),
		Changed:   append([]string(nil), t.summary.Changed...),
		Unchanged: append([]string(nil), t.summary.Unchanged...),
	}
}

// LogSummary writes the summary to the tracker's logger.
func (t *DiffTracker) LogSummary() {
	if t.logger == nil {
		return
	}
	s := t.Summary()
	if !s.HasChanges() {
		t.logger.Info("no changes detected in any fixtures", "unchanged", len(s.Unchanged))
		return
	}
	t.logger.Info("fixture summary", "new", len(s.New), "changed", len(s.Changed), "unchanged", len(s.Unchanged))
}

// UnifiedDiff returns a unified diff from before to after with three lines of context.
func UnifiedDiff(before, after string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "before",
		ToFile:   "after",
		Context:  3,
	})
	if err != nil {
		return fmt.Sprintf("(diff unavailable: %v)", err)
	}
	return diff
}

// Render formats the summary for a terminal.
func (s Summary) Render() string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Fixture summary"))
	b.WriteString("\n")

	if len(s.New) > 0 {
		b.WriteString(styles.OK.Render(fmt.Sprintf("New fixtures (%d):", len(s.New))))
		b.WriteString("\n")
		for _, key := range s.New {
			b.WriteString("  + " + key + "\n")
		}
	}

	if len(s.Changed) > 0 {
		b.WriteString(styles.Warn.Render(fmt.Sprintf("Changed fixtures (%d):", len(s.Changed))))
		b.WriteString("\n")
		for _, key := range s.Changed {
			b.WriteString("  ~ " + key + "\n")
		}
	}

	if !s.HasChanges() {
		b.WriteString(styles.Help.Render("No changes detected in any fixtures."))
		b.WriteString("\n")
	}
	return b.String()
}
