// package formatter renders capture targets and run manifests as plain text, CSV or Markdown
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/desertthunder/nicofix/internal/capture"
	"github.com/desertthunder/nicofix/internal/fixtures"
	"github.com/desertthunder/nicofix/internal/shared"
)

// Format names an output format accepted by the CLI.
type Format string

const (
	Text     Format = "text"
	CSV      Format = "csv"
	Markdown Format = "markdown"
)

// ParseFormat validates a format name. An empty name means [Text].
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return Text, nil
	case Text, CSV, Markdown:
		return f, nil
	case "md":
		return Markdown, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (expected text, csv or markdown)", shared.ErrInvalidArgument, s)
	}
}

// FormatParams renders params as sorted key=value pairs.
func FormatParams(p capture.Params) string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		v := p[k]
		if l, err := p.Strings(k); err == nil && isList(v) {
			v = strings.Join(l, ",")
		}
		parts[i] = fmt.Sprintf("%s=%v", k, v)
	}
	return strings.Join(parts, " ")
}

func isList(v any) bool {
	switch v.(type) {
	case []string, []any:
		return true
	}
	return false
}

// Targets renders a target list in the given format.
func Targets(targets []capture.Target, f Format) ([]byte, error) {
	switch f {
	case CSV:
		return TargetsToCSV(targets)
	case Markdown:
		return TargetsToMarkdown(targets), nil
	default:
		return TargetsToText(targets), nil
	}
}

// TargetsToText renders one aligned line per target: key, operation, params.
func TargetsToText(targets []capture.Target) []byte {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	for _, t := range targets {
		fmt.Fprintf(w, "%s\t%s\t%s\n", t.Key(), t.Operation, FormatParams(t.Params))
	}
	w.Flush()
	fmt.Fprintf(&buf, "\n%d targets\n", len(targets))
	return buf.Bytes()
}

// TargetsToCSV converts targets to CSV with columns: Key, Category, Name, Operation, Params
func TargetsToCSV(targets []capture.Target) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Key", "Category", "Name", "Operation", "Params"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, t := range targets {
		record := []string{t.Key(), string(t.Category), t.Name, t.Operation, FormatParams(t.Params)}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// TargetsToMarkdown renders targets grouped by category.
func TargetsToMarkdown(targets []capture.Target) []byte {
	var buf bytes.Buffer
	buf.WriteString("# Capture Targets\n")

	var current capture.Category
	for _, t := range targets {
		if t.Category != current {
			current = t.Category
			fmt.Fprintf(&buf, "\n## %s\n\n", current)
		}
		fmt.Fprintf(&buf, "- `%s` via `%s`", t.Key(), t.Operation)
		if len(t.Params) > 0 {
			fmt.Fprintf(&buf, " (%s)", FormatParams(t.Params))
		}
		buf.WriteString("\n")
	}
	return buf.Bytes()
}

// ManifestToMarkdown renders a run report from a manifest.
func ManifestToMarkdown(m *fixtures.Manifest) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Capture Run %s\n\n", m.RunID)
	fmt.Fprintf(&buf, "**Fixtures**: %s\n", m.FixturesDir)
	fmt.Fprintf(&buf, "**Started**: %s\n", m.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&buf, "**Duration**: %s\n", m.FinishedAt.Sub(m.StartedAt).Round(time.Millisecond))
	fmt.Fprintf(&buf, "**Targets**: %d saved, %d failed, %d skipped\n\n",
		m.Count(fixtures.EntrySaved), m.Count(fixtures.EntryFailed), m.Count(fixtures.EntrySkipped))

	buf.WriteString("| Fixture | Operation | Status | Type |\n")
	buf.WriteString("|---|---|---|---|\n")
	for _, e := range m.Entries {
		status := string(e.Status)
		if e.Change != "" {
			status += " (" + string(e.Change) + ")"
		}
		fmt.Fprintf(&buf, "| `%s` | %s | %s | %s |\n", e.Key, e.Operation, status, e.Type)
	}

	var failed []fixtures.ManifestEntry
	for _, e := range m.Entries {
		if e.Status == fixtures.EntryFailed {
			failed = append(failed, e)
		}
	}
	if len(failed) > 0 {
		buf.WriteString("\n## Failures\n\n")
		for _, e := range failed {
			fmt.Fprintf(&buf, "- `%s`: %s\n", e.Key, e.Error)
		}
	}
	return buf.Bytes()
}
