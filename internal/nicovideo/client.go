package nicovideo

import (
	"context"
)

// Client defines the niconico operations a capture run can invoke.
//
// Every method performs exactly one HTTP request.
type Client interface {
	// Login verifies the session and returns the authenticated user.
	Login(ctx context.Context) (*NicoUser, error)

	// OwnVideos lists videos uploaded by the authenticated user.
	OwnVideos(ctx context.Context, opts PageOpts) (*OwnVideosData, error)

	// WatchData retrieves the watch page payload for a video ID (e.g. "sm9").
	WatchData(ctx context.Context, videoID string) (*WatchData, error)

	// UserVideos lists videos uploaded by a user.
	UserVideos(ctx context.Context, userID string, opts PageOpts) (*UserVideosData, error)

	// OwnMylists lists the authenticated user's mylists.
	OwnMylists(ctx context.Context) (Items[UserMylistItem], error)

	// FollowingMylists lists mylists the authenticated user follows.
	FollowingMylists(ctx context.Context) (*FollowingMylistsData, error)

	// Mylist retrieves one page of a mylist.
	Mylist(ctx context.Context, mylistID string, opts PageOpts) (*Mylist, error)

	// OwnSeries lists the authenticated user's series.
	OwnSeries(ctx context.Context) (Items[UserSeriesItem], error)

	// UserSeries lists a user's series.
	UserSeries(ctx context.Context, userID string, opts PageOpts) (Items[UserSeriesItem], error)

	// Series retrieves one page of a series.
	Series(ctx context.Context, seriesID string, opts PageOpts) (*SeriesData, error)

	// FollowingUsers lists users the authenticated user follows.
	FollowingUsers(ctx context.Context, opts PageOpts) (*RelationshipUsersData, error)

	// User retrieves a user profile.
	User(ctx context.Context, userID string) (*NicoUser, error)

	// SearchVideosByKeyword searches videos by free-text keyword.
	SearchVideosByKeyword(ctx context.Context, keyword string, opts SearchOpts) (*VideoSearchData, error)

	// SearchVideosByTag searches videos by exact tag.
	SearchVideosByTag(ctx context.Context, tag string, opts SearchOpts) (*VideoSearchData, error)

	// SearchLists searches mylists and/or series, filtered by opts.Types.
	SearchLists(ctx context.Context, keyword string, opts SearchOpts) (*ListSearchData, error)

	// History retrieves the authenticated user's watch history.
	History(ctx context.Context, opts PageOpts) (*HistoryData, error)

	// LikeHistory retrieves videos liked by the authenticated user.
	LikeHistory(ctx context.Context, opts PageOpts) (*LikeHistoryData, error)
}

// PageOpts selects a page of a paginated listing. Zero values are omitted from the request.
type PageOpts struct {
	Page     int
	PageSize int
}

// SearchOpts controls ordering and paging of search requests.
type SearchOpts struct {
	SortKey   string
	SortOrder string
	Page      int
	PageSize  int
	Types     []string // list search only: "mylist", "series"
}
