package fixtures

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/nicofix/internal/nicovideo"
	"github.com/desertthunder/nicofix/internal/shared"
	"github.com/google/go-cmp/cmp"
)

func TestPath(t *testing.T) {
	if got := Key("search", "test"); got != "search/test.json" {
		t.Errorf("expected search/test.json, got %s", got)
	}

	want := filepath.Join("fixtures", "search", "test.json")
	if got := Path("fixtures", "search", "test"); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestEncode(t *testing.T) {
	t.Run("indents with two spaces and ends with newline", func(t *testing.T) {
		data, err := Encode(map[string]any{"a": 1})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if string(data) != "{\n  \"a\": 1\n}\n" {
			t.Errorf("unexpected encoding %q", data)
		}
	})

	t.Run("keeps non-ASCII and HTML characters", func(t *testing.T) {
		data, err := Encode(map[string]string{"title": "テスト <b>&</b>"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(string(data), "テスト <b>&</b>") {
			t.Errorf("expected raw text, got %s", data)
		}
	})

	t.Run("is deterministic", func(t *testing.T) {
		v := map[string]int{"z": 1, "a": 2, "m": 3}
		a, _ := Encode(v)
		b, _ := Encode(v)
		if !bytes.Equal(a, b) {
			t.Error("expected identical output")
		}
	})

	t.Run("unsupported value", func(t *testing.T) {
		if _, err := Encode(map[string]any{"ch": make(chan int)}); !errors.Is(err, shared.ErrSerialize) {
			t.Errorf("expected ErrSerialize, got %v", err)
		}
	})
}

func TestDiffTracker(t *testing.T) {
	tracker := NewDiffTracker(nil)

	if c := tracker.Track("tracks/a.json", nil, []byte("{}\n")); c.Status != StatusNew {
		t.Errorf("expected new, got %s", c.Status)
	}
	if c := tracker.Track("tracks/b.json", []byte("{}\n"), []byte("{}\n")); c.Status != StatusUnchanged {
		t.Errorf("expected unchanged, got %s", c.Status)
	}

	c := tracker.Track("tracks/c.json", []byte("{\n  \"a\": 1\n}\n"), []byte("{\n  \"a\": 2\n}\n"))
	if c.Status != StatusChanged {
		t.Fatalf("expected changed, got %s", c.Status)
	}
	for _, line := range []string{"--- before", "+++ after", "-  \"a\": 1", "+  \"a\": 2"} {
		if !strings.Contains(c.Diff, line) {
			t.Errorf("expected diff to contain %q, got:\n%s", line, c.Diff)
		}
	}

	want := Summary{
		New:       []string{"tracks/a.json"},
		Changed:   []string{"tracks/c.json"},
		Unchanged: []string{"tracks/b.json"},
	}
	if diff := cmp.Diff(want, tracker.Summary()); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}

	t.Run("Render", func(t *testing.T) {
		out := tracker.Summary().Render()
		for _, s := range []string{"+ tracks/a.json", "~ tracks/c.json"} {
			if !strings.Contains(out, s) {
				t.Errorf("expected render to contain %q, got:\n%s", s, out)
			}
		}

		if out := (Summary{Unchanged: []string{"x"}}).Render(); !strings.Contains(out, "No changes detected") {
			t.Errorf("expected no-change message, got:\n%s", out)
		}
	})
}

func TestSaver(t *testing.T) {
	t.Run("creates directories and tracks changes", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "fixtures")
		saver := NewSaver(dir, nil)

		path, change, err := saver.Save("search", "test", []byte("{}\n"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if path != filepath.Join(dir, "search", "test.json") {
			t.Errorf("unexpected path %s", path)
		}
		if change.Status != StatusNew {
			t.Errorf("expected new, got %s", change.Status)
		}

		if _, change, _ = saver.Save("search", "test", []byte("{}\n")); change.Status != StatusUnchanged {
			t.Errorf("expected unchanged on identical rewrite, got %s", change.Status)
		}
		if _, change, _ = saver.Save("search", "test", []byte("[]\n")); change.Status != StatusChanged {
			t.Errorf("expected changed, got %s", change.Status)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read fixture: %v", err)
		}
		if string(data) != "[]\n" {
			t.Errorf("expected file to be overwritten, got %q", data)
		}
	})

	t.Run("unwritable directory", func(t *testing.T) {
		root := t.TempDir()
		blocker := filepath.Join(root, "fixtures")
		if err := os.WriteFile(blocker, []byte("not a dir"), 0644); err != nil {
			t.Fatalf("setup: %v", err)
		}

		saver := NewSaver(blocker, nil)
		_, _, err := saver.Save("search", "test", []byte("{}\n"))
		if !errors.Is(err, shared.ErrFilesystem) {
			t.Errorf("expected ErrFilesystem, got %v", err)
		}
		if saver.Tracker().Summary().HasChanges() {
			t.Errorf("expected nothing tracked for a failed write, got %+v", saver.Tracker().Summary())
		}
	})

	t.Run("failed write is not tracked next to a written one", func(t *testing.T) {
		root := t.TempDir()
		if err := os.WriteFile(filepath.Join(root, "albums"), []byte("not a dir"), 0644); err != nil {
			t.Fatalf("setup: %v", err)
		}

		saver := NewSaver(root, nil)
		if _, _, err := saver.Save("tracks", "own_videos", []byte("{}\n")); err != nil {
			t.Fatalf("expected first save to succeed, got %v", err)
		}
		if _, _, err := saver.Save("albums", "own_series", []byte("[]\n")); !errors.Is(err, shared.ErrFilesystem) {
			t.Fatalf("expected ErrFilesystem, got %v", err)
		}

		summary := saver.Tracker().Summary()
		if diff := cmp.Diff([]string{"tracks/own_videos.json"}, summary.New); diff != "" {
			t.Errorf("new fixtures mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestMapping(t *testing.T) {
	user := &nicovideo.NicoUser{ID: 68461151, Nickname: "tester"}
	series := nicovideo.Items[nicovideo.UserSeriesItem]{{ID: 527007, Title: "テストシリーズ"}}

	m := Mapping{
		"artists/user_details.json": nicovideo.TypeRefOf(user),
		"albums/own_series.json":    nicovideo.TypeRefOf(series),
	}

	t.Run("Keys are sorted", func(t *testing.T) {
		want := []string{"albums/own_series.json", "artists/user_details.json"}
		if diff := cmp.Diff(want, m.Keys()); diff != "" {
			t.Errorf("keys mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("JSON round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), MappingJSONFile)
		if err := m.WriteJSON(path); err != nil {
			t.Fatalf("WriteJSON: %v", err)
		}
		loaded, err := LoadMapping(path)
		if err != nil {
			t.Fatalf("LoadMapping: %v", err)
		}
		if diff := cmp.Diff(m, loaded); diff != "" {
			t.Errorf("mapping mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("missing file is empty", func(t *testing.T) {
		loaded, err := LoadMapping(filepath.Join(t.TempDir(), "none.json"))
		if err != nil || len(loaded) != 0 {
			t.Errorf("expected empty mapping, got %v, %v", loaded, err)
		}
	})

	t.Run("Merge replaces entries", func(t *testing.T) {
		merged := Mapping{"albums/own_series.json": {Name: "Stale"}, "search/x.json": {Name: "VideoSearchData"}}
		merged.Merge(m)
		if merged["albums/own_series.json"].Name != "UserSeriesItem" || len(merged) != 3 {
			t.Errorf("unexpected merge result: %+v", merged)
		}
	})

	t.Run("decodes fixtures back into the recorded type", func(t *testing.T) {
		dir := t.TempDir()
		saver := NewSaver(dir, nil)
		for key, v := range map[string]nicovideo.Response{"artists/user_details": user, "albums/own_series": series} {
			data, err := Encode(v)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			category, name, _ := strings.Cut(key, "/")
			if _, _, err := saver.Save(category, name, data); err != nil {
				t.Fatalf("Save: %v", err)
			}
		}

		got, err := m.ReadFixture(dir, "artists/user_details.json")
		if err != nil {
			t.Fatalf("ReadFixture: %v", err)
		}
		if diff := cmp.Diff(nicovideo.Response(user), got); diff != "" {
			t.Errorf("user mismatch (-want +got):\n%s", diff)
		}

		got, err = m.ReadFixture(dir, "albums/own_series.json")
		if err != nil {
			t.Fatalf("ReadFixture: %v", err)
		}
		if diff := cmp.Diff(nicovideo.Response(series), got); diff != "" {
			t.Errorf("series mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		if _, err := m.DecodeFixture("stream/nope.json", []byte("{}")); !errors.Is(err, shared.ErrSerialize) {
			t.Errorf("expected ErrSerialize, got %v", err)
		}
	})

	t.Run("GoSource", func(t *testing.T) {
		src, err := m.GoSource("generated")
		if err != nil {
			t.Fatalf("GoSource: %v", err)
		}
		flat := strings.Join(strings.Fields(string(src)), " ")
		for _, s := range []string{
			"// Code generated by nicofix. DO NOT EDIT.",
			"package generated",
			`"github.com/desertthunder/nicofix/internal/nicovideo"`,
			`"albums/own_series.json": func() any { return new([]nicovideo.UserSeriesItem) },`,
			`"artists/user_details.json": func() any { return new(nicovideo.NicoUser) },`,
		} {
			if !strings.Contains(flat, s) {
				t.Errorf("expected source to contain %q, got:\n%s", s, src)
			}
		}
	})

	t.Run("PackageName", func(t *testing.T) {
		tc := map[string]string{
			"fixture_data/generated": "generated",
			"out/Fixture-Data":       "fixturedata",
			"out/2024":               "fixtures",
			".":                      "fixtures",
		}
		for dir, want := range tc {
			if got := PackageName(dir); got != want {
				t.Errorf("PackageName(%q) = %s, want %s", dir, got, want)
			}
		}
	})
}

func TestManifest(t *testing.T) {
	started := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := &Manifest{
		RunID:       "run-1",
		StartedAt:   started,
		FinishedAt:  started.Add(time.Minute),
		FixturesDir: "fixtures",
		Entries: []ManifestEntry{
			{Key: "search/test.json", Category: "search", Name: "test", Operation: "search_videos_by_keyword", Status: EntrySaved, Change: StatusNew},
			{Key: "history/user_history.json", Category: "history", Name: "user_history", Operation: "history", Status: EntryFailed, Error: "boom"},
		},
	}

	if m.Count(EntrySaved) != 1 || m.Count(EntryFailed) != 1 || m.Count(EntrySkipped) != 0 {
		t.Errorf("unexpected counts for %+v", m.Entries)
	}

	path := filepath.Join(t.TempDir(), ManifestFile)
	if err := m.Write(path); err != nil {
		t.Fatalf("Write: %v", err)
	}
	loaded, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if diff := cmp.Diff(m, loaded); diff != "" {
		t.Errorf("manifest mismatch (-want +got):\n%s", diff)
	}
}
