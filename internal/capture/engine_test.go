package capture

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/desertthunder/nicofix/internal/fixtures"
	"github.com/desertthunder/nicofix/internal/nicovideo"
	"github.com/desertthunder/nicofix/internal/shared"
	tu "github.com/desertthunder/nicofix/internal/testing"
	"github.com/google/go-cmp/cmp"
)

func sampleWatch() *nicovideo.WatchData {
	return &nicovideo.WatchData{
		Client: nicovideo.WatchClient{Nicosid: "1700000000.123", WatchID: "sm45285955", WatchTrackID: "abc_1700000000"},
		Media: nicovideo.WatchMedia{Domand: &nicovideo.WatchMediaDomand{
			Audios: []nicovideo.WatchMediaDomandAudio{
				{ID: "audio-aac-64kbps", IsAvailable: true, BitRate: 64000, QualityLevel: 0},
				{ID: "audio-aac-192kbps", IsAvailable: false, BitRate: 192000, QualityLevel: 2},
				{ID: "audio-aac-128kbps", IsAvailable: true, BitRate: 128000, QualityLevel: 1},
			},
			AccessRightKey: "live.jwt.token",
		}},
		Video: nicovideo.WatchVideo{
			ID:           "sm45285955",
			Title:        "APIテスト",
			Description:  "live description",
			Count:        nicovideo.VideoCount{View: 10, Comment: 1, Mylist: 2, Like: 3},
			RegisteredAt: "2024-06-01T12:00:00+09:00",
		},
	}
}

// newMock returns a client with a response for every default target.
func newMock() *tu.MockClient {
	m := tu.NewMockClient()
	m.Responses["WatchData"] = sampleWatch()
	m.Responses["OwnSeries"] = nicovideo.Items[nicovideo.UserSeriesItem]{
		{ID: 1, Title: "first", ItemsCount: 4},
		{ID: 2, Title: "second", ItemsCount: 8},
		{ID: 3, Title: "third", ItemsCount: 16},
	}
	m.Responses["SearchVideosByKeyword"] = &nicovideo.VideoSearchData{
		SearchID:   "live-search-id",
		TotalCount: 120,
		HasNext:    true,
		Items:      []nicovideo.EssentialVideo{{ID: "sm45285955", Title: "APIテスト", RegisteredAt: "2024-06-01T12:00:00+09:00"}},
	}
	return m
}

func newTestEngine(t *testing.T, client nicovideo.Client, opts EngineOpts) (*Engine, string) {
	t.Helper()
	root := t.TempDir()
	if opts.FixturesDir == "" {
		opts.FixturesDir = filepath.Join(root, "fixtures")
	}
	if opts.RunID == "" {
		opts.RunID = "test-run"
	}
	return NewEngine(client, opts), root
}

func searchTarget(query string) Target {
	return Target{Category: Search, Name: "test", Operation: OpSearchVideosByKeyword, Params: Params{ParamQuery: query}}
}

func TestEngineRun(t *testing.T) {
	ctx := context.Background()
	defaults := DefaultTargets(shared.DefaultConfig().Samples, 1)

	t.Run("writes one fixture per target", func(t *testing.T) {
		engine, root := newTestEngine(t, newMock(), EngineOpts{Limit: 1})

		result, err := engine.Run(ctx, defaults, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := result.Err(); err != nil {
			t.Fatalf("expected complete run, got %v", err)
		}
		if result.Saved != len(defaults) {
			t.Errorf("expected %d saved, got %d", len(defaults), result.Saved)
		}

		want := make([]string, len(defaults))
		for i, tgt := range defaults {
			want[i] = tgt.Key()
		}
		got := tu.ListFiles(t, filepath.Join(root, "fixtures"))
		if diff := cmp.Diff(result.Mapping.Keys(), got); diff != "" {
			t.Errorf("mapping keys do not match files (-mapping +files):\n%s", diff)
		}
		if len(got) != len(want) {
			t.Errorf("expected %d files, got %d: %v", len(want), len(got), got)
		}
		for _, key := range want {
			tu.AssertFileExists(t, filepath.Join(root, "fixtures", filepath.FromSlash(key)))
		}
	})

	t.Run("saves the mock payload as the fixture", func(t *testing.T) {
		mock := tu.NewMockClient()
		keyword := "test"
		payload := &nicovideo.VideoSearchData{
			SearchID:   "live-search-id",
			TotalCount: 3,
			Keyword:    &keyword,
			Items:      []nicovideo.EssentialVideo{{ID: "sm9", Title: "test video", Duration: 42}},
		}
		mock.Responses["SearchVideosByKeyword"] = payload

		engine, root := newTestEngine(t, mock, EngineOpts{Raw: true})
		if _, err := engine.Run(ctx, []Target{searchTarget("test")}, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		want, err := fixtures.Encode(payload)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		got := tu.MustReadFile(t, filepath.Join(root, "fixtures", "search", "test.json"))
		if diff := cmp.Diff(string(want), got); diff != "" {
			t.Errorf("fixture mismatch (-want +got):\n%s", diff)
		}

		calls := mock.Calls()
		if len(calls) != 2 || calls[0].Method != "Login" || calls[1].Method != "SearchVideosByKeyword" {
			t.Fatalf("unexpected calls %v", mock.Methods())
		}
		if calls[1].Args[0] != "test" {
			t.Errorf("expected query %q, got %v", "test", calls[1].Args[0])
		}
	})

	t.Run("stable payloads pass through stabilization unchanged", func(t *testing.T) {
		mock := tu.NewMockClient()
		keyword := "test"
		payload := &nicovideo.VideoSearchData{
			SearchID:   "dummy-search-id-for-testing",
			TotalCount: 1,
			Keyword:    &keyword,
			Items:      []nicovideo.EssentialVideo{},
		}
		mock.Responses["SearchVideosByKeyword"] = payload

		engine, root := newTestEngine(t, mock, EngineOpts{})
		if _, err := engine.Run(ctx, []Target{searchTarget("test")}, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		want, _ := fixtures.Encode(payload)
		got := tu.MustReadFile(t, filepath.Join(root, "fixtures", "search", "test.json"))
		if diff := cmp.Diff(string(want), got); diff != "" {
			t.Errorf("fixture mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("reruns are byte identical", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "fixtures")
		opts := EngineOpts{FixturesDir: dir, Limit: 1}

		if _, err := NewEngine(newMock(), opts).Run(ctx, defaults, nil); err != nil {
			t.Fatalf("first run: %v", err)
		}
		first := readTree(t, dir)

		result, err := NewEngine(newMock(), opts).Run(ctx, defaults, nil)
		if err != nil {
			t.Fatalf("second run: %v", err)
		}
		if diff := cmp.Diff(first, readTree(t, dir)); diff != "" {
			t.Errorf("fixtures changed between runs (-first +second):\n%s", diff)
		}
		if result.Summary.HasChanges() || len(result.Summary.Unchanged) != len(defaults) {
			t.Errorf("expected every fixture unchanged, got %+v", result.Summary)
		}
	})

	t.Run("fixtures decode through the type mapping", func(t *testing.T) {
		engine, root := newTestEngine(t, newMock(), EngineOpts{Limit: 1})
		if _, err := engine.Run(ctx, defaults, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		mapping, err := fixtures.LoadMapping(filepath.Join(root, fixtures.MappingJSONFile))
		if err != nil {
			t.Fatalf("LoadMapping: %v", err)
		}
		if len(mapping) != len(defaults) {
			t.Fatalf("expected %d mapping entries, got %d", len(defaults), len(mapping))
		}

		dir := filepath.Join(root, "fixtures")
		for _, key := range mapping.Keys() {
			resp, err := mapping.ReadFixture(dir, key)
			if err != nil {
				t.Errorf("%s: %v", key, err)
				continue
			}
			data, err := fixtures.Encode(resp)
			if err != nil {
				t.Fatalf("%s: %v", key, err)
			}
			if got := tu.MustReadFile(t, filepath.Join(dir, filepath.FromSlash(key))); got != string(data) {
				t.Errorf("%s does not survive decode and re-encode", key)
			}
		}

		want := map[string]string{
			"albums/own_series.json":     "[]nicovideo.UserSeriesItem",
			"playlists/own_mylists.json": "[]nicovideo.UserMylistItem",
			"stream/stream_data.json":    "nicovideo.StreamFixtureData",
			"search/series_search.json":  "nicovideo.ListSearchData",
		}
		for key, typ := range want {
			if got := mapping[key].String(); got != typ {
				t.Errorf("%s: expected %s, got %s", key, typ, got)
			}
		}

		src := tu.MustReadFile(t, filepath.Join(root, fixtures.MappingGoFile))
		if !bytes.Contains([]byte(src), []byte(`"stream/stream_data.json"`)) {
			t.Errorf("generated source is missing the stream fixture:\n%s", src)
		}
	})

	t.Run("truncates list results to the limit", func(t *testing.T) {
		engine, root := newTestEngine(t, newMock(), EngineOpts{Limit: 1})
		target := Target{Category: Albums, Name: "own_series", Operation: OpOwnSeries}
		if _, err := engine.Run(ctx, []Target{target}, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		mapping, _ := fixtures.LoadMapping(filepath.Join(root, fixtures.MappingJSONFile))
		resp, err := mapping.ReadFixture(filepath.Join(root, "fixtures"), target.Key())
		if err != nil {
			t.Fatalf("ReadFixture: %v", err)
		}
		items := resp.(nicovideo.Items[nicovideo.UserSeriesItem])
		if len(items) != 1 || items[0].Title != "first" {
			t.Errorf("expected only the first series, got %+v", items)
		}
	})

	t.Run("empty list fixtures are arrays", func(t *testing.T) {
		engine, root := newTestEngine(t, tu.NewMockClient(), EngineOpts{})
		target := Target{Category: Playlists, Name: "own_mylists", Operation: OpOwnMylists}
		if _, err := engine.Run(ctx, []Target{target}, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := tu.MustReadFile(t, filepath.Join(root, "fixtures", "playlists", "own_mylists.json")); got != "[]\n" {
			t.Errorf("expected an empty array, got %q", got)
		}
	})

	t.Run("continues past failed targets", func(t *testing.T) {
		mock := newMock()
		mock.Errors["History"] = shared.ErrRateLimited

		engine, root := newTestEngine(t, mock, EngineOpts{Limit: 1})
		result, err := engine.Run(ctx, defaults, nil)
		if err != nil {
			t.Fatalf("expected no abort, got %v", err)
		}
		if result.Failed != 1 || result.Saved != len(defaults)-1 {
			t.Errorf("expected 1 failed and %d saved, got %d and %d", len(defaults)-1, result.Failed, result.Saved)
		}
		if !errors.Is(result.Err(), shared.ErrCaptureIncomplete) {
			t.Errorf("expected ErrCaptureIncomplete, got %v", result.Err())
		}

		failures := result.Failures()
		if len(failures) != 1 || failures[0].Target.Key() != "history/user_history.json" {
			t.Fatalf("unexpected failures %+v", failures)
		}
		if !errors.Is(failures[0].Err, shared.ErrRateLimited) {
			t.Errorf("expected ErrRateLimited, got %v", failures[0].Err)
		}
		tu.AssertNotExists(t, filepath.Join(root, "fixtures", "history", "user_history.json"))

		manifest, err := fixtures.ReadManifest(filepath.Join(root, fixtures.ManifestFile))
		if err != nil {
			t.Fatalf("ReadManifest: %v", err)
		}
		if manifest.RunID != "test-run" || manifest.Count(fixtures.EntryFailed) != 1 {
			t.Errorf("unexpected manifest %+v", manifest)
		}
	})

	t.Run("nil response is a failure", func(t *testing.T) {
		mock := tu.NewMockClient()
		mock.Responses["User"] = nil

		engine, _ := newTestEngine(t, mock, EngineOpts{})
		result, err := engine.Run(ctx, []Target{{Category: Artists, Name: "user_details", Operation: OpUser, Params: Params{ParamID: "1"}}}, nil)
		if err != nil {
			t.Fatalf("expected no abort, got %v", err)
		}
		if len(result.Failures()) != 1 || !errors.Is(result.Failures()[0].Err, shared.ErrNoData) {
			t.Errorf("expected ErrNoData, got %+v", result.Failures())
		}
	})

	t.Run("fail fast skips the rest", func(t *testing.T) {
		mock := newMock()
		mock.Errors["OwnVideos"] = shared.ErrAPIRequest

		engine, _ := newTestEngine(t, mock, EngineOpts{FailFast: true})
		result, err := engine.Run(ctx, defaults, nil)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		if result.Failed != 1 || result.Skipped != len(defaults)-1 {
			t.Errorf("expected 1 failed and %d skipped, got %d and %d", len(defaults)-1, result.Failed, result.Skipped)
		}
		if diff := cmp.Diff([]string{"Login", "OwnVideos"}, mock.Methods()); diff != "" {
			t.Errorf("unexpected calls (-want +got):\n%s", diff)
		}
	})

	t.Run("progress buffer holds a full run", func(t *testing.T) {
		engine, _ := newTestEngine(t, newMock(), EngineOpts{Limit: 1})
		progress := make(chan ProgressUpdate, ProgressBuffer(len(defaults)))

		if _, err := engine.Run(ctx, defaults, progress); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(progress) != cap(progress) {
			t.Errorf("expected %d buffered updates, got %d", cap(progress), len(progress))
		}

		var last ProgressUpdate
		for len(progress) > 0 {
			last = <-progress
		}
		if last.Phase != Done {
			t.Errorf("expected final update to be done, got %s", last.Phase)
		}
	})

	t.Run("filesystem errors abort", func(t *testing.T) {
		root := t.TempDir()
		blocker := filepath.Join(root, "fixtures")
		if err := os.WriteFile(blocker, []byte("not a directory"), 0644); err != nil {
			t.Fatal(err)
		}

		mock := newMock()
		result, err := NewEngine(mock, EngineOpts{FixturesDir: blocker}).Run(ctx, defaults, nil)
		if !errors.Is(err, shared.ErrFilesystem) {
			t.Fatalf("expected ErrFilesystem, got %v", err)
		}
		if result.Skipped != len(defaults)-1 {
			t.Errorf("expected %d skipped, got %d", len(defaults)-1, result.Skipped)
		}
		tu.AssertNotExists(t, filepath.Join(root, fixtures.MappingJSONFile))

		manifest, err := fixtures.ReadManifest(filepath.Join(root, fixtures.ManifestFile))
		if err != nil {
			t.Fatalf("expected manifest after abort, got %v", err)
		}
		if manifest.Count(fixtures.EntryFailed) != 1 || manifest.Count(fixtures.EntrySkipped) != len(defaults)-1 {
			t.Errorf("unexpected manifest entries: %+v", manifest.Entries)
		}
	})

	t.Run("abort keeps mapping for fixtures already written", func(t *testing.T) {
		engine, root := newTestEngine(t, newMock(), EngineOpts{})
		fixturesDir := filepath.Join(root, "fixtures")
		if err := os.MkdirAll(fixturesDir, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(fixturesDir, "albums"), []byte("not a directory"), 0644); err != nil {
			t.Fatal(err)
		}

		targets := []Target{
			{Category: Tracks, Name: "own_videos", Operation: OpOwnVideos},
			{Category: Albums, Name: "own_series", Operation: OpOwnSeries},
		}
		result, err := engine.Run(ctx, targets, nil)
		if !errors.Is(err, shared.ErrFilesystem) {
			t.Fatalf("expected ErrFilesystem, got %v", err)
		}
		tu.AssertFileExists(t, filepath.Join(fixturesDir, "tracks", "own_videos.json"))
		tu.AssertNotExists(t, filepath.Join(fixturesDir, "albums", "own_series.json"))

		mapping, err := fixtures.LoadMapping(filepath.Join(root, fixtures.MappingJSONFile))
		if err != nil {
			t.Fatalf("expected readable mapping, got %v", err)
		}
		if diff := cmp.Diff([]string{"tracks/own_videos.json"}, mapping.Keys()); diff != "" {
			t.Errorf("mapping keys mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"tracks/own_videos.json"}, result.Summary.New); diff != "" {
			t.Errorf("summary mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("login failure calls nothing else", func(t *testing.T) {
		mock := newMock()
		mock.LoginErr = shared.ErrAuthFailed

		engine, root := newTestEngine(t, mock, EngineOpts{})
		result, err := engine.Run(ctx, defaults, nil)
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Fatalf("expected ErrAuthFailed, got %v", err)
		}
		if result != nil {
			t.Errorf("expected no result, got %+v", result)
		}
		if mock.CallCount() != 1 {
			t.Errorf("expected only Login, got %v", mock.Methods())
		}
		tu.AssertNotExists(t, filepath.Join(root, "fixtures"))
	})

	t.Run("invalid targets make no calls", func(t *testing.T) {
		mock := newMock()
		engine, _ := newTestEngine(t, mock, EngineOpts{})
		_, err := engine.Run(ctx, []Target{{Category: Search, Name: "x", Operation: "ranking"}}, nil)
		if !errors.Is(err, shared.ErrUnknownOperation) {
			t.Fatalf("expected ErrUnknownOperation, got %v", err)
		}
		if mock.CallCount() != 0 {
			t.Errorf("expected no calls, got %v", mock.Methods())
		}
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		mock := newMock()
		engine, _ := newTestEngine(t, mock, EngineOpts{})
		if _, err := engine.Run(cctx, defaults, nil); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if mock.CallCount() != 0 {
			t.Errorf("expected no calls, got %v", mock.Methods())
		}
	})

	t.Run("paces calls with the delay", func(t *testing.T) {
		delay := 20 * time.Millisecond
		targets := defaults[:3]

		engine, _ := newTestEngine(t, newMock(), EngineOpts{Delay: delay})
		start := time.Now()
		if _, err := engine.Run(ctx, targets, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		// login plus three targets: the first call is immediate
		if elapsed := time.Since(start); elapsed < 3*delay {
			t.Errorf("expected at least %v between calls, run took %v", 3*delay, elapsed)
		}
	})

	t.Run("reports progress", func(t *testing.T) {
		progress := make(chan ProgressUpdate, 64)
		engine, _ := newTestEngine(t, newMock(), EngineOpts{})

		targets := defaults[:2]
		if _, err := engine.Run(ctx, targets, progress); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		close(progress)

		var phases []Phase
		for u := range progress {
			phases = append(phases, u.Phase)
		}
		want := []Phase{Login, CaptureTarget, TargetSaved, CaptureTarget, TargetSaved, WriteMapping, Done}
		if diff := cmp.Diff(want, phases); diff != "" {
			t.Errorf("phase mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("keeps mapping entries from earlier runs", func(t *testing.T) {
		root := t.TempDir()
		opts := EngineOpts{FixturesDir: filepath.Join(root, "fixtures")}

		if _, err := NewEngine(newMock(), opts).Run(ctx, []Target{searchTarget("test")}, nil); err != nil {
			t.Fatal(err)
		}
		second := Target{Category: Albums, Name: "own_series", Operation: OpOwnSeries}
		result, err := NewEngine(newMock(), opts).Run(ctx, []Target{second}, nil)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]string{"albums/own_series.json", "search/test.json"}, result.Mapping.Keys()); diff != "" {
			t.Errorf("mapping keys mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestRunResultErr(t *testing.T) {
	if err := (&RunResult{Saved: 3, Results: make([]TargetResult, 3)}).Err(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if err := (&RunResult{Saved: 2, Skipped: 1, Results: make([]TargetResult, 3)}).Err(); !errors.Is(err, shared.ErrCaptureIncomplete) {
		t.Errorf("expected ErrCaptureIncomplete, got %v", err)
	}
}

func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	tree := map[string]string{}
	for _, rel := range tu.ListFiles(t, root) {
		tree[rel] = tu.MustReadFile(t, filepath.Join(root, filepath.FromSlash(rel)))
	}
	return tree
}
