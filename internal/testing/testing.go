// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/desertthunder/nicofix/internal/nicovideo"
)

// MockClient is a test double for [nicovideo.Client].
//
// Every call is recorded by method name. Responses and Errors are keyed by method name;
// a method with neither configured returns a zero value of its result type.
type MockClient struct {
	mu        sync.Mutex
	calls     []Call
	LoginUser *nicovideo.NicoUser
	LoginErr  error
	Responses map[string]nicovideo.Response
	Errors    map[string]error
}

// Call is one recorded invocation.
type Call struct {
	Method string
	Args   []any
}

// NewMockClient creates a MockClient that logs in as a test user.
func NewMockClient() *MockClient {
	return &MockClient{
		LoginUser: &nicovideo.NicoUser{ID: 68461151, Nickname: "test-account"},
		Responses: map[string]nicovideo.Response{},
		Errors:    map[string]error{},
	}
}

var _ nicovideo.Client = (*MockClient)(nil)

// Calls returns the recorded invocations in order.
func (m *MockClient) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// CallCount returns the number of recorded invocations, including Login.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Methods returns the names of the recorded invocations in order.
func (m *MockClient) Methods() []string {
	calls := m.Calls()
	names := make([]string, len(calls))
	for i, c := range calls {
		names[i] = c.Method
	}
	return names
}

func (m *MockClient) record(method string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Method: method, Args: args})
}

// result returns the configured response for method, or a new zero value of T.
func result[T nicovideo.Response](m *MockClient, method string, zero func() T) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var empty T
	if err := m.Errors[method]; err != nil {
		return empty, err
	}
	if resp, ok := m.Responses[method]; ok {
		if resp == nil {
			return empty, nil
		}
		v, ok := resp.(T)
		if !ok {
			return empty, errors.New("mock: response for " + method + " has the wrong type")
		}
		return v, nil
	}
	return zero(), nil
}

func (m *MockClient) Login(ctx context.Context) (*nicovideo.NicoUser, error) {
	m.record("Login")
	return m.LoginUser, m.LoginErr
}

func (m *MockClient) OwnVideos(ctx context.Context, opts nicovideo.PageOpts) (*nicovideo.OwnVideosData, error) {
	m.record("OwnVideos", opts)
	return result(m, "OwnVideos", func() *nicovideo.OwnVideosData { return &nicovideo.OwnVideosData{} })
}

func (m *MockClient) WatchData(ctx context.Context, videoID string) (*nicovideo.WatchData, error) {
	m.record("WatchData", videoID)
	return result(m, "WatchData", func() *nicovideo.WatchData { return &nicovideo.WatchData{} })
}

func (m *MockClient) UserVideos(ctx context.Context, userID string, opts nicovideo.PageOpts) (*nicovideo.UserVideosData, error) {
	m.record("UserVideos", userID, opts)
	return result(m, "UserVideos", func() *nicovideo.UserVideosData { return &nicovideo.UserVideosData{} })
}

func (m *MockClient) OwnMylists(ctx context.Context) (nicovideo.Items[nicovideo.UserMylistItem], error) {
	m.record("OwnMylists")
	return result(m, "OwnMylists", func() nicovideo.Items[nicovideo.UserMylistItem] { return nil })
}

func (m *MockClient) FollowingMylists(ctx context.Context) (*nicovideo.FollowingMylistsData, error) {
	m.record("FollowingMylists")
	return result(m, "FollowingMylists", func() *nicovideo.FollowingMylistsData { return &nicovideo.FollowingMylistsData{} })
}

func (m *MockClient) Mylist(ctx context.Context, mylistID string, opts nicovideo.PageOpts) (*nicovideo.Mylist, error) {
	m.record("Mylist", mylistID, opts)
	return result(m, "Mylist", func() *nicovideo.Mylist { return &nicovideo.Mylist{} })
}

func (m *MockClient) OwnSeries(ctx context.Context) (nicovideo.Items[nicovideo.UserSeriesItem], error) {
	m.record("OwnSeries")
	return result(m, "OwnSeries", func() nicovideo.Items[nicovideo.UserSeriesItem] { return nil })
}

func (m *MockClient) UserSeries(ctx context.Context, userID string, opts nicovideo.PageOpts) (nicovideo.Items[nicovideo.UserSeriesItem], error) {
	m.record("UserSeries", userID, opts)
	return result(m, "UserSeries", func() nicovideo.Items[nicovideo.UserSeriesItem] { return nil })
}

func (m *MockClient) Series(ctx context.Context, seriesID string, opts nicovideo.PageOpts) (*nicovideo.SeriesData, error) {
	m.record("Series", seriesID, opts)
	return result(m, "Series", func() *nicovideo.SeriesData { return &nicovideo.SeriesData{} })
}

func (m *MockClient) FollowingUsers(ctx context.Context, opts nicovideo.PageOpts) (*nicovideo.RelationshipUsersData, error) {
	m.record("FollowingUsers", opts)
	return result(m, "FollowingUsers", func() *nicovideo.RelationshipUsersData { return &nicovideo.RelationshipUsersData{} })
}

func (m *MockClient) User(ctx context.Context, userID string) (*nicovideo.NicoUser, error) {
	m.record("User", userID)
	return result(m, "User", func() *nicovideo.NicoUser { return &nicovideo.NicoUser{} })
}

func (m *MockClient) SearchVideosByKeyword(ctx context.Context, keyword string, opts nicovideo.SearchOpts) (*nicovideo.VideoSearchData, error) {
	m.record("SearchVideosByKeyword", keyword, opts)
	return result(m, "SearchVideosByKeyword", func() *nicovideo.VideoSearchData { return &nicovideo.VideoSearchData{} })
}

func (m *MockClient) SearchVideosByTag(ctx context.Context, tag string, opts nicovideo.SearchOpts) (*nicovideo.VideoSearchData, error) {
	m.record("SearchVideosByTag", tag, opts)
	return result(m, "SearchVideosByTag", func() *nicovideo.VideoSearchData { return &nicovideo.VideoSearchData{} })
}

func (m *MockClient) SearchLists(ctx context.Context, keyword string, opts nicovideo.SearchOpts) (*nicovideo.ListSearchData, error) {
	m.record("SearchLists", keyword, opts)
	return result(m, "SearchLists", func() *nicovideo.ListSearchData { return &nicovideo.ListSearchData{} })
}

func (m *MockClient) History(ctx context.Context, opts nicovideo.PageOpts) (*nicovideo.HistoryData, error) {
	m.record("History", opts)
	return result(m, "History", func() *nicovideo.HistoryData { return &nicovideo.HistoryData{} })
}

func (m *MockClient) LikeHistory(ctx context.Context, opts nicovideo.PageOpts) (*nicovideo.LikeHistoryData, error) {
	m.record("LikeHistory", opts)
	return result(m, "LikeHistory", func() *nicovideo.LikeHistoryData { return &nicovideo.LikeHistoryData{} })
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Expected %s not to exist (stat error: %v)", path, err)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// ListFiles returns every regular file under root as slash separated paths relative to root.
func ListFiles(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Failed to walk %s: %v", root, err)
	}
	return files
}
