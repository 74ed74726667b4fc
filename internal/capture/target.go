package capture

import (
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/nicofix/internal/fixtures"
	"github.com/desertthunder/nicofix/internal/shared"
)

// Category groups fixtures by the provider feature they exercise. It is also the fixture subdirectory.
type Category string

const (
	Tracks    Category = "tracks"
	Playlists Category = "playlists"
	Albums    Category = "albums"
	Artists   Category = "artists"
	Search    Category = "search"
	History   Category = "history"
	Stream    Category = "stream"
)

// Categories lists every category in capture order.
var Categories = []Category{Tracks, Playlists, Albums, Artists, Search, History, Stream}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Categories, c) {
		return "", fmt.Errorf("%w: %q (expected one of %s)", shared.ErrUnknownCategory, s, categoryList())
	}
	return c, nil
}

func categoryList() string {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// Target is one API call to snapshot: fixtures/<Category>/<Name>.json.
type Target struct {
	Category  Category
	Name      string
	Operation string
	Params    Params
}

// Key returns the fixture key of the target, e.g. "search/test.json".
func (t Target) Key() string { return fixtures.Key(string(t.Category), t.Name) }

func (t Target) String() string { return fmt.Sprintf("%s/%s (%s)", t.Category, t.Name, t.Operation) }

// DefaultTargets returns the built-in capture list for the sample account.
//
// limit is passed as the page size of every paginated request.
func DefaultTargets(s shared.SamplesConfig, limit int) []Target {
	return []Target{
		{Tracks, "own_videos", OpOwnVideos, nil},
		{Tracks, "watch_data", OpWatchData, Params{ParamID: s.VideoID}},
		{Tracks, "user_videos", OpUserVideos, Params{ParamID: s.UserID, ParamPage: 1, ParamPageSize: limit}},

		{Playlists, "own_mylists", OpOwnMylists, nil},
		{Playlists, "following_mylists", OpFollowingMylists, nil},
		{Playlists, "single_mylist_details", OpMylist, Params{ParamID: s.MylistID, ParamPage: 1, ParamPageSize: limit}},

		{Albums, "own_series", OpOwnSeries, nil},
		{Albums, "user_series", OpUserSeries, Params{ParamID: s.UserID, ParamPage: 1, ParamPageSize: limit}},
		{Albums, "single_series_details", OpSeries, Params{ParamID: s.SeriesID, ParamPage: 1, ParamPageSize: limit}},

		{Artists, "following_users", OpFollowingUsers, Params{ParamPageSize: limit}},
		{Artists, "user_details", OpUser, Params{ParamID: s.UserID}},

		{Search, "video_search_keyword", OpSearchVideosByKeyword, Params{
			ParamQuery: s.Keyword, ParamSortKey: "registeredAt", ParamSortOrder: "asc", ParamPageSize: limit,
		}},
		{Search, "video_search_tags", OpSearchVideosByTag, Params{
			ParamQuery: s.Tag, ParamSortKey: "registeredAt", ParamSortOrder: "asc", ParamPageSize: limit,
		}},
		{Search, "mylist_search", OpSearchLists, Params{
			ParamQuery: s.MylistKeyword, ParamSortKey: "startTime", ParamSortOrder: "asc", ParamPageSize: limit,
			ParamTypes: []string{"mylist"},
		}},
		{Search, "series_search", OpSearchLists, Params{
			ParamQuery: s.SeriesKeyword, ParamSortKey: "startTime", ParamSortOrder: "asc", ParamPageSize: limit,
			ParamTypes: []string{"series"},
		}},

		{History, "user_history", OpHistory, Params{ParamPageSize: limit}},
		{History, "user_likes", OpLikeHistory, Params{ParamPageSize: limit}},

		{Stream, "stream_data", OpStreamData, Params{ParamID: s.VideoID}},
	}
}

// TargetsFromConfig converts configured targets. An empty list means "use the defaults".
func TargetsFromConfig(cfg []shared.TargetConfig) ([]Target, error) {
	targets := make([]Target, 0, len(cfg))
	for i, tc := range cfg {
		category, err := ParseCategory(tc.Category)
		if err != nil {
			return nil, fmt.Errorf("targets[%d]: %w", i, err)
		}
		targets = append(targets, Target{
			Category:  category,
			Name:      tc.Name,
			Operation: tc.Operation,
			Params:    Params(tc.Params),
		})
	}
	return targets, nil
}

// ResolveTargets returns the configured targets, or the defaults when none are configured,
// restricted to categories when any are given.
func ResolveTargets(cfg *shared.Config, categories []string) ([]Target, error) {
	targets, err := TargetsFromConfig(cfg.Targets)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		targets = DefaultTargets(cfg.Samples, cfg.Capture.Limit)
	}

	if len(categories) == 0 {
		categories = cfg.Capture.Categories
	}
	if targets, err = FilterCategories(targets, categories); err != nil {
		return nil, err
	}
	return targets, Validate(targets)
}

// FilterCategories keeps the targets in the named categories. No names keeps everything.
func FilterCategories(targets []Target, names []string) ([]Target, error) {
	if len(names) == 0 {
		return targets, nil
	}

	want := make(map[Category]bool, len(names))
	for _, n := range names {
		c, err := ParseCategory(n)
		if err != nil {
			return nil, err
		}
		want[c] = true
	}

	out := make([]Target, 0, len(targets))
	for _, t := range targets {
		if want[t.Category] {
			out = append(out, t)
		}
	}
	return out, nil
}

// Validate checks a target list before any network activity:
// names must be usable as file names, keys must be unique and operations must exist with valid params.
func Validate(targets []Target) error {
	seen := make(map[string]bool, len(targets))
	for _, t := range targets {
		if !slices.Contains(Categories, t.Category) {
			return fmt.Errorf("%w: %q in target %s", shared.ErrUnknownCategory, t.Category, t.Name)
		}
		if t.Name == "" || strings.ContainsAny(t.Name, `/\`) || t.Name == "." || t.Name == ".." {
			return fmt.Errorf("%w: invalid target name %q", shared.ErrInvalidConfig, t.Name)
		}
		if seen[t.Key()] {
			return fmt.Errorf("%w: duplicate target %s", shared.ErrInvalidConfig, t.Key())
		}
		seen[t.Key()] = true

		op, ok := Lookup(t.Operation)
		if !ok {
			return fmt.Errorf("%w: %q in target %s", shared.ErrUnknownOperation, t.Operation, t.Key())
		}
		if err := op.check(t.Params); err != nil {
			return fmt.Errorf("target %s: %w", t.Key(), err)
		}
	}
	return nil
}
