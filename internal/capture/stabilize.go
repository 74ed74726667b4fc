package capture

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/desertthunder/nicofix/internal/nicovideo"
	"github.com/desertthunder/nicofix/internal/shared"
)

// DummyCount replaces every number found under a count-like key.
const DummyCount = 1

const (
	dummyTime = "2025-01-01T00:00:00+09:00"
	dummyJWT  = "dummy.jwt.token.for.testing"
)

// Rule replaces the value of a field whose name matches Key.
//
// Exact rules compare the field name as is; partial rules match a case-insensitive substring.
type Rule struct {
	Key     string
	Value   any
	Partial bool
}

// Matches reports whether the rule applies to a field name.
func (r Rule) Matches(field string) bool {
	if r.Partial {
		return strings.Contains(strings.ToLower(field), strings.ToLower(r.Key))
	}
	return r.Key == field
}

// DefaultRules replace values that change between otherwise identical captures.
var DefaultRules = []Rule{
	{Key: "searchId", Value: "dummy-search-id-for-testing"},
	{Key: "lastViewedAt", Value: dummyTime},
	{Key: "serverTime", Value: dummyTime},
	{Key: "registeredAt", Value: dummyTime},
	{Key: "nicosid", Value: "dummy_nicosid_for_testing"},
	{Key: "watchTrackId", Value: "dummy_track_id_for_testing"},
	{Key: "isPeakTime", Value: false},
	{Key: "thumbnailUrl", Value: "https://resource.video.nimg.jp/web/img/series/no_thumbnail.png"},
	{Key: "playbackPosition", Value: 0.0},
	{Key: "hls_url", Value: "https://dummy.hls.url/for/testing"},
	{Key: "domand_bid", Value: "dummy_domand_bid_for_testing"},
	{Key: "hls_playlist_text", Value: "dummy_hls_playlist_text_for_testing"},
	{Key: "threadKey", Value: dummyJWT},
	{Key: "accessRightKey", Value: dummyJWT},
	{Key: "editKey", Value: dummyJWT},
	{Key: "views", Value: DummyCount},
	{Key: "description", Value: "This is a dummy description for testing purposes.", Partial: true},
}

// RulesFromConfig converts configured stabilize rules.
func RulesFromConfig(cfg []shared.StabilizeRule) []Rule {
	rules := make([]Rule, len(cfg))
	for i, r := range cfg {
		rules[i] = Rule{Key: r.Key, Value: r.Value, Partial: r.Partial}
	}
	return rules
}

// Stabilizer rewrites unstable fields so repeated captures produce identical fixtures.
type Stabilizer struct {
	rules []Rule
}

// NewStabilizer creates a Stabilizer. extra rules are checked before [DefaultRules].
func NewStabilizer(extra ...Rule) *Stabilizer {
	rules := make([]Rule, 0, len(extra)+len(DefaultRules))
	rules = append(rules, extra...)
	rules = append(rules, DefaultRules...)
	return &Stabilizer{rules: rules}
}

// Stabilize returns a copy of resp with unstable fields replaced.
//
// The response goes through its JSON form and is decoded back into the same type,
// so a rule value that does not fit the field is a serialization error.
func (s *Stabilizer) Stabilize(resp nicovideo.Response) (nicovideo.Response, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSerialize, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSerialize, err)
	}

	out, err := json.Marshal(s.Value(tree))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSerialize, err)
	}
	return nicovideo.Decode(nicovideo.TypeRefOf(resp), out)
}

// Value stabilizes a decoded JSON tree.
func (s *Stabilizer) Value(v any) any {
	return s.value("", v, false)
}

func (s *Stabilizer) value(key string, v any, inCount bool) any {
	for _, r := range s.rules {
		if r.Matches(key) {
			return r.Value
		}
	}

	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[k] = s.value(k, child, inCount || strings.Contains(strings.ToLower(k), "count"))
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = s.value(key, item, inCount)
		}
		return out
	case json.Number, float64, int, int64:
		if inCount {
			return DummyCount
		}
	}
	return v
}
