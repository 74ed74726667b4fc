// niconico [Client] implementation over HTTP
//
// nvapi endpoints share a {"meta": ..., "data": ...} envelope; the watch API uses the same shape.
package nicovideo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nicofix/internal/shared"
	"github.com/go-resty/resty/v2"
)

const (
	DefaultNvapiURL = "https://nvapi.nicovideo.jp"
	DefaultWatchURL = "https://www.nicovideo.jp"

	sessionCookieName = "user_session"
	defaultTimeout    = 30 * time.Second
)

// Meta is the status block of a niconico API envelope.
type Meta struct {
	Status    int    `json:"status"`
	ErrorCode string `json:"errorCode,omitempty"`
}

type envelope[T any] struct {
	Meta Meta `json:"meta"`
	Data T    `json:"data"`
}

// ClientOpts contains configuration for [NewHTTPClient].
type ClientOpts struct {
	Session    string        // user_session cookie value
	NvapiURL   string        // default: https://nvapi.nicovideo.jp
	WatchURL   string        // default: https://www.nicovideo.jp
	Timeout    time.Duration // default: 30s
	UserAgent  string
	HTTPClient *http.Client // optional; shared by both API hosts
	Logger     *log.Logger  // optional; logs every response at debug level
}

// HTTPClient implements [Client] against the live niconico APIs.
type HTTPClient struct {
	nvapi *resty.Client
	watch *resty.Client
	now   func() time.Time
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a client authenticated by the given session token.
func NewHTTPClient(opts ClientOpts) (*HTTPClient, error) {
	if strings.TrimSpace(opts.Session) == "" {
		return nil, fmt.Errorf("%w: empty session token", shared.ErrNotAuthenticated)
	}
	if opts.NvapiURL == "" {
		opts.NvapiURL = DefaultNvapiURL
	}
	if opts.WatchURL == "" {
		opts.WatchURL = DefaultWatchURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	return &HTTPClient{
		nvapi: newResty(opts, opts.NvapiURL),
		watch: newResty(opts, opts.WatchURL),
		now:   time.Now,
	}, nil
}

func newResty(opts ClientOpts, baseURL string) *resty.Client {
	var rc *resty.Client
	if opts.HTTPClient != nil {
		rc = resty.NewWithClient(opts.HTTPClient)
	} else {
		rc = resty.New()
	}

	rc.SetBaseURL(strings.TrimRight(baseURL, "/"))
	rc.SetTimeout(opts.Timeout)
	rc.SetHeader("X-Frontend-Id", "6")
	rc.SetHeader("X-Frontend-Version", "0")
	rc.SetHeader("Accept", "application/json")
	if opts.UserAgent != "" {
		rc.SetHeader("User-Agent", opts.UserAgent)
	}
	rc.SetCookie(&http.Cookie{Name: sessionCookieName, Value: opts.Session})

	if opts.Logger != nil {
		logger := opts.Logger
		rc.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
			logger.Debug("response", "method", res.Request.Method, "url", res.Request.URL, "status", res.StatusCode(), "elapsed", res.Time())
			return nil
		})
	}
	return rc
}

// get performs a GET request and unwraps the response envelope.
func get[T any](ctx context.Context, rc *resty.Client, path string, params map[string]string, query url.Values) (*T, error) {
	req := rc.R().SetContext(ctx)
	if len(params) > 0 {
		req.SetPathParams(params)
	}
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}

	resp, err := req.Get(path)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %w", shared.ErrAPIRequest, path, err)
	}

	var env envelope[T]
	decodeErr := json.Unmarshal(resp.Body(), &env)

	if resp.IsError() {
		return nil, statusError(path, resp.StatusCode(), env.Meta)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: failed to decode %s: %v", shared.ErrAPIRequest, path, decodeErr)
	}

	return &env.Data, nil
}

// statusError maps a non-2xx status onto the shared error taxonomy.
func statusError(path string, status int, meta Meta) error {
	kind := shared.ErrAPIRequest
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = shared.ErrAuthFailed
	case http.StatusTooManyRequests:
		kind = shared.ErrRateLimited
	}

	if meta.ErrorCode != "" {
		return fmt.Errorf("%w: %s: status %d (%s)", kind, path, status, meta.ErrorCode)
	}
	return fmt.Errorf("%w: %s: status %d", kind, path, status)
}

func pageQuery(opts PageOpts) url.Values {
	q := url.Values{}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(opts.PageSize))
	}
	return q
}

func searchQuery(opts SearchOpts) url.Values {
	q := pageQuery(PageOpts{Page: opts.Page, PageSize: opts.PageSize})
	if opts.SortKey != "" {
		q.Set("sortKey", opts.SortKey)
	}
	if opts.SortOrder != "" {
		q.Set("sortOrder", opts.SortOrder)
	}
	if len(opts.Types) > 0 {
		q.Set("types", strings.Join(opts.Types, ","))
	}
	return q
}

// Login calls GET /v1/users/me.
func (c *HTTPClient) Login(ctx context.Context) (*NicoUser, error) {
	data, err := get[struct {
		User NicoUser `json:"user"`
	}](ctx, c.nvapi, "/v1/users/me", nil, nil)
	if err != nil {
		return nil, err
	}
	return &data.User, nil
}

// OwnVideos calls GET /v1/users/me/videos.
func (c *HTTPClient) OwnVideos(ctx context.Context, opts PageOpts) (*OwnVideosData, error) {
	q := pageQuery(opts)
	q.Set("sortKey", "registeredAt")
	q.Set("sortOrder", "desc")
	return get[OwnVideosData](ctx, c.nvapi, "/v1/users/me/videos", nil, q)
}

// WatchData calls GET /api/watch/v3/{videoId} on the watch host.
func (c *HTTPClient) WatchData(ctx context.Context, videoID string) (*WatchData, error) {
	q := url.Values{}
	q.Set("actionTrackId", c.actionTrackID())
	return get[WatchData](ctx, c.watch, "/api/watch/v3/{videoId}", map[string]string{"videoId": videoID}, q)
}

// actionTrackID builds the random "xxxxxxxxxx_<unix ms>" identifier the watch API expects.
func (c *HTTPClient) actionTrackID() string {
	id := strings.ReplaceAll(shared.GenerateID(), "-", "")
	return fmt.Sprintf("%s_%d", id[:10], c.now().UnixMilli())
}

// UserVideos calls GET /v3/users/{userId}/videos.
func (c *HTTPClient) UserVideos(ctx context.Context, userID string, opts PageOpts) (*UserVideosData, error) {
	q := pageQuery(opts)
	q.Set("sortKey", "registeredAt")
	q.Set("sortOrder", "desc")
	return get[UserVideosData](ctx, c.nvapi, "/v3/users/{userId}/videos", map[string]string{"userId": userID}, q)
}

// OwnMylists calls GET /v1/users/me/mylists.
func (c *HTTPClient) OwnMylists(ctx context.Context) (Items[UserMylistItem], error) {
	q := url.Values{}
	q.Set("sampleItemCount", "3")
	data, err := get[struct {
		Mylists Items[UserMylistItem] `json:"mylists"`
	}](ctx, c.nvapi, "/v1/users/me/mylists", nil, q)
	if err != nil {
		return nil, err
	}
	return data.Mylists, nil
}

// FollowingMylists calls GET /v1/users/me/following/mylists.
func (c *HTTPClient) FollowingMylists(ctx context.Context) (*FollowingMylistsData, error) {
	q := url.Values{}
	q.Set("sampleItemCount", "3")
	return get[FollowingMylistsData](ctx, c.nvapi, "/v1/users/me/following/mylists", nil, q)
}

// Mylist calls GET /v2/mylists/{mylistId}.
func (c *HTTPClient) Mylist(ctx context.Context, mylistID string, opts PageOpts) (*Mylist, error) {
	data, err := get[struct {
		Mylist Mylist `json:"mylist"`
	}](ctx, c.nvapi, "/v2/mylists/{mylistId}", map[string]string{"mylistId": mylistID}, pageQuery(opts))
	if err != nil {
		return nil, err
	}
	return &data.Mylist, nil
}

// OwnSeries calls GET /v1/users/me/series.
func (c *HTTPClient) OwnSeries(ctx context.Context) (Items[UserSeriesItem], error) {
	data, err := get[struct {
		Items Items[UserSeriesItem] `json:"items"`
	}](ctx, c.nvapi, "/v1/users/me/series", nil, nil)
	if err != nil {
		return nil, err
	}
	return data.Items, nil
}

// UserSeries calls GET /v1/users/{userId}/series.
func (c *HTTPClient) UserSeries(ctx context.Context, userID string, opts PageOpts) (Items[UserSeriesItem], error) {
	data, err := get[struct {
		Items Items[UserSeriesItem] `json:"items"`
	}](ctx, c.nvapi, "/v1/users/{userId}/series", map[string]string{"userId": userID}, pageQuery(opts))
	if err != nil {
		return nil, err
	}
	return data.Items, nil
}

// Series calls GET /v2/series/{seriesId}.
func (c *HTTPClient) Series(ctx context.Context, seriesID string, opts PageOpts) (*SeriesData, error) {
	return get[SeriesData](ctx, c.nvapi, "/v2/series/{seriesId}", map[string]string{"seriesId": seriesID}, pageQuery(opts))
}

// FollowingUsers calls GET /v1/users/me/following/users.
func (c *HTTPClient) FollowingUsers(ctx context.Context, opts PageOpts) (*RelationshipUsersData, error) {
	return get[RelationshipUsersData](ctx, c.nvapi, "/v1/users/me/following/users", nil, pageQuery(opts))
}

// User calls GET /v1/users/{userId}.
func (c *HTTPClient) User(ctx context.Context, userID string) (*NicoUser, error) {
	data, err := get[struct {
		User NicoUser `json:"user"`
	}](ctx, c.nvapi, "/v1/users/{userId}", map[string]string{"userId": userID}, nil)
	if err != nil {
		return nil, err
	}
	return &data.User, nil
}

// SearchVideosByKeyword calls GET /v2/search/video?keyword=.
func (c *HTTPClient) SearchVideosByKeyword(ctx context.Context, keyword string, opts SearchOpts) (*VideoSearchData, error) {
	q := searchQuery(opts)
	q.Set("keyword", keyword)
	return get[VideoSearchData](ctx, c.nvapi, "/v2/search/video", nil, q)
}

// SearchVideosByTag calls GET /v2/search/video?tag=.
func (c *HTTPClient) SearchVideosByTag(ctx context.Context, tag string, opts SearchOpts) (*VideoSearchData, error) {
	q := searchQuery(opts)
	q.Set("tag", tag)
	return get[VideoSearchData](ctx, c.nvapi, "/v2/search/video", nil, q)
}

// SearchLists calls GET /v1/search/list.
func (c *HTTPClient) SearchLists(ctx context.Context, keyword string, opts SearchOpts) (*ListSearchData, error) {
	q := searchQuery(opts)
	q.Set("keyword", keyword)
	return get[ListSearchData](ctx, c.nvapi, "/v1/search/list", nil, q)
}

// History calls GET /v1/users/me/watch/history.
func (c *HTTPClient) History(ctx context.Context, opts PageOpts) (*HistoryData, error) {
	return get[HistoryData](ctx, c.nvapi, "/v1/users/me/watch/history", nil, pageQuery(opts))
}

// LikeHistory calls GET /v1/users/me/likes/items.
func (c *HTTPClient) LikeHistory(ctx context.Context, opts PageOpts) (*LikeHistoryData, error) {
	return get[LikeHistoryData](ctx, c.nvapi, "/v1/users/me/likes/items", nil, pageQuery(opts))
}
