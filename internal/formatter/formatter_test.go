package formatter

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/nicofix/internal/capture"
	"github.com/desertthunder/nicofix/internal/fixtures"
	"github.com/desertthunder/nicofix/internal/shared"
)

func sampleTargets() []capture.Target {
	return []capture.Target{
		{Category: capture.Albums, Name: "own_series", Operation: capture.OpOwnSeries},
		{Category: capture.Search, Name: "mylist_search", Operation: capture.OpSearchLists, Params: capture.Params{
			capture.ParamQuery:    "テストマイリスト",
			capture.ParamPageSize: 1,
			capture.ParamTypes:    []string{"mylist"},
		}},
	}
}

func TestFormatters(t *testing.T) {
	t.Run("ParseFormat", func(t *testing.T) {
		for in, want := range map[string]Format{"": Text, "CSV": CSV, "md": Markdown, " markdown ": Markdown} {
			if got, err := ParseFormat(in); err != nil || got != want {
				t.Errorf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
			}
		}
		if _, err := ParseFormat("yaml"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("FormatParams sorts keys", func(t *testing.T) {
		got := FormatParams(sampleTargets()[1].Params)
		want := "page_size=1 query=テストマイリスト types=mylist"
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
		if FormatParams(nil) != "" {
			t.Error("expected empty string for nil params")
		}
	})

	t.Run("TargetsToText", func(t *testing.T) {
		output := string(TargetsToText(sampleTargets()))

		for _, want := range []string{"albums/own_series.json", "search/mylist_search.json", "search_lists", "2 targets"} {
			if !strings.Contains(output, want) {
				t.Errorf("text output missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("TargetsToCSV", func(t *testing.T) {
		data, err := TargetsToCSV(sampleTargets())
		if err != nil {
			t.Fatalf("TargetsToCSV failed: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected header and 2 rows, got %d lines", len(lines))
		}
		if lines[0] != "Key,Category,Name,Operation,Params" {
			t.Errorf("unexpected header %q", lines[0])
		}
		if lines[1] != "albums/own_series.json,albums,own_series,own_series," {
			t.Errorf("unexpected row %q", lines[1])
		}
	})

	t.Run("TargetsToMarkdown", func(t *testing.T) {
		output := string(TargetsToMarkdown(sampleTargets()))

		if !strings.HasPrefix(output, "# Capture Targets\n") {
			t.Errorf("missing title:\n%s", output)
		}
		for _, want := range []string{"## albums", "## search", "- `search/mylist_search.json` via `search_lists` ("} {
			if !strings.Contains(output, want) {
				t.Errorf("markdown output missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("Targets dispatches by format", func(t *testing.T) {
		data, err := Targets(sampleTargets(), CSV)
		if err != nil || !strings.HasPrefix(string(data), "Key,") {
			t.Errorf("expected CSV output, got %q, %v", data, err)
		}
	})

	t.Run("ManifestToMarkdown", func(t *testing.T) {
		started := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		m := &fixtures.Manifest{
			RunID:       "run-1",
			StartedAt:   started,
			FinishedAt:  started.Add(2500 * time.Millisecond),
			FixturesDir: "fixture_data/generated/fixtures",
			Entries: []fixtures.ManifestEntry{
				{Key: "search/test.json", Operation: "search_videos_by_keyword", Status: fixtures.EntrySaved, Change: fixtures.StatusNew, Type: "nicovideo.VideoSearchData"},
				{Key: "history/user_history.json", Operation: "history", Status: fixtures.EntryFailed, Error: "rate limited by service"},
			},
		}

		output := string(ManifestToMarkdown(m))
		for _, want := range []string{
			"# Capture Run run-1",
			"**Duration**: 2.5s",
			"**Targets**: 1 saved, 1 failed, 0 skipped",
			"| `search/test.json` | search_videos_by_keyword | saved (new) | nicovideo.VideoSearchData |",
			"## Failures",
			"- `history/user_history.json`: rate limited by service",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("report missing %q:\n%s", want, output)
			}
		}
	})
}
