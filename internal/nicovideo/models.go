package nicovideo

// Owner identifies the user or channel owning a video, mylist or series.
type Owner struct {
	OwnerType  string `json:"ownerType,omitempty"`
	Type       string `json:"type,omitempty"`
	Visibility string `json:"visibility,omitempty"`
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	IconURL    string `json:"iconUrl,omitempty"`
}

// Thumbnail holds the image URLs of a video at several sizes.
type Thumbnail struct {
	URL        string `json:"url"`
	MiddleURL  string `json:"middleUrl,omitempty"`
	LargeURL   string `json:"largeUrl,omitempty"`
	ListingURL string `json:"listingUrl,omitempty"`
	NHdURL     string `json:"nHdUrl,omitempty"`
}

// VideoCount holds the engagement counters of a video.
type VideoCount struct {
	View    int `json:"view"`
	Comment int `json:"comment"`
	Mylist  int `json:"mylist"`
	Like    int `json:"like"`
}

// EssentialVideo is the compact video representation shared by list endpoints.
type EssentialVideo struct {
	Type                    string     `json:"type"`
	ID                      string     `json:"id"`
	Title                   string     `json:"title"`
	RegisteredAt            string     `json:"registeredAt"`
	Count                   VideoCount `json:"count"`
	Thumbnail               Thumbnail  `json:"thumbnail"`
	Duration                int        `json:"duration"`
	ShortDescription        string     `json:"shortDescription"`
	LatestCommentSummary    string     `json:"latestCommentSummary"`
	IsChannelVideo          bool       `json:"isChannelVideo"`
	IsPaymentRequired       bool       `json:"isPaymentRequired"`
	PlaybackPosition        *float64   `json:"playbackPosition"`
	Owner                   Owner      `json:"owner"`
	RequireSensitiveMasking bool       `json:"requireSensitiveMasking"`
	IsMuted                 bool       `json:"isMuted"`
}

// SeriesRef is the series a video belongs to, as embedded in video lists.
type SeriesRef struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Order int    `json:"order"`
}

// VideoItem is one entry of an uploaded-videos listing.
type VideoItem struct {
	Series    *SeriesRef     `json:"series"`
	Essential EssentialVideo `json:"essential"`
}

// OwnVideosData is the authenticated user's uploaded videos.
type OwnVideosData struct {
	TotalCount int         `json:"totalCount"`
	Items      []VideoItem `json:"items"`
}

// UserVideosData is another user's uploaded videos.
type UserVideosData struct {
	TotalCount int         `json:"totalCount"`
	Items      []VideoItem `json:"items"`
}

// WatchVideo is the video section of the watch page data.
type WatchVideo struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Count        VideoCount `json:"count"`
	Duration     int        `json:"duration"`
	Thumbnail    Thumbnail  `json:"thumbnail"`
	RegisteredAt string     `json:"registeredAt"`
	IsPrivate    bool       `json:"isPrivate"`
	IsDeleted    bool       `json:"isDeleted"`
}

// WatchOwner is the uploader section of the watch page data.
type WatchOwner struct {
	ID       int    `json:"id"`
	Nickname string `json:"nickname"`
	IconURL  string `json:"iconUrl"`
}

// Loudness is one loudness measurement of an audio stream.
type Loudness struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

// WatchMediaDomandAudio describes one DMS (domand) audio stream.
type WatchMediaDomandAudio struct {
	ID                 string     `json:"id"`
	IsAvailable        bool       `json:"isAvailable"`
	BitRate            int        `json:"bitRate"`
	SamplingRate       int        `json:"samplingRate"`
	IntegratedLoudness float64    `json:"integratedLoudness"`
	TruePeak           float64    `json:"truePeak"`
	QualityLevel       int        `json:"qualityLevel"`
	LoudnessCollection []Loudness `json:"loudnessCollection"`
}

// WatchMediaDomandVideo describes one DMS (domand) video stream.
type WatchMediaDomandVideo struct {
	ID           string `json:"id"`
	IsAvailable  bool   `json:"isAvailable"`
	Label        string `json:"label"`
	BitRate      int    `json:"bitRate"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	QualityLevel int    `json:"qualityLevel"`
}

// WatchMediaDomand is the DMS media section used to request HLS streams.
type WatchMediaDomand struct {
	Videos                []WatchMediaDomandVideo `json:"videos"`
	Audios                []WatchMediaDomandAudio `json:"audios"`
	IsStoryboardAvailable bool                    `json:"isStoryboardAvailable"`
	AccessRightKey        string                  `json:"accessRightKey"`
}

// WatchMedia is the media section of the watch page data.
type WatchMedia struct {
	Domand *WatchMediaDomand `json:"domand"`
}

// WatchClient carries tracking identifiers issued for the watch session.
type WatchClient struct {
	Nicosid      string `json:"nicosid"`
	WatchID      string `json:"watchId"`
	WatchTrackID string `json:"watchTrackId"`
}

// WatchTag is one tag attached to a video.
type WatchTag struct {
	Name                   string `json:"name"`
	IsCategory             bool   `json:"isCategory"`
	IsLocked               bool   `json:"isLocked"`
	IsNicodicArticleExists bool   `json:"isNicodicArticleExists"`
}

// WatchTags is the tag section of the watch page data.
type WatchTags struct {
	Items     []WatchTag `json:"items"`
	HasR18Tag bool       `json:"hasR18Tag"`
	Edit      struct {
		IsEditable bool   `json:"isEditable"`
		EditKey    string `json:"editKey"`
	} `json:"edit"`
}

// WatchData is the full watch page payload of a single video.
type WatchData struct {
	Client WatchClient `json:"client"`
	Media  WatchMedia  `json:"media"`
	Owner  *WatchOwner `json:"owner"`
	Tag    WatchTags   `json:"tag"`
	Video  WatchVideo  `json:"video"`
}

// MylistItem is one video registered in a mylist.
type MylistItem struct {
	ItemID      int            `json:"itemId"`
	WatchID     string         `json:"watchId"`
	Description string         `json:"description"`
	AddedAt     string         `json:"addedAt"`
	Status      string         `json:"status"`
	Video       EssentialVideo `json:"video"`
}

// UserMylistItem is a mylist as it appears in a user's mylist listing.
type UserMylistItem struct {
	ID               int          `json:"id"`
	IsPublic         bool         `json:"isPublic"`
	Name             string       `json:"name"`
	Description      string       `json:"description"`
	DefaultSortKey   string       `json:"defaultSortKey"`
	DefaultSortOrder string       `json:"defaultSortOrder"`
	ItemsCount       int          `json:"itemsCount"`
	Owner            Owner        `json:"owner"`
	SampleItems      []MylistItem `json:"sampleItems"`
	FollowerCount    int          `json:"followerCount"`
	CreatedAt        string       `json:"createdAt"`
	IsFollowing      bool         `json:"isFollowing"`
}

// FollowingMylist is one mylist followed by the authenticated user.
type FollowingMylist struct {
	ID     int            `json:"id"`
	Status string         `json:"status"`
	Detail UserMylistItem `json:"detail"`
}

// FollowingMylistsData lists the mylists followed by the authenticated user.
type FollowingMylistsData struct {
	FollowLimit int               `json:"followLimit"`
	Mylists     []FollowingMylist `json:"mylists"`
}

// Mylist is a single mylist with a page of its items.
type Mylist struct {
	ID                int          `json:"id"`
	Name              string       `json:"name"`
	Description       string       `json:"description"`
	DefaultSortKey    string       `json:"defaultSortKey"`
	DefaultSortOrder  string       `json:"defaultSortOrder"`
	Items             []MylistItem `json:"items"`
	TotalItemCount    int          `json:"totalItemCount"`
	HasNext           bool         `json:"hasNext"`
	IsPublic          bool         `json:"isPublic"`
	Owner             Owner        `json:"owner"`
	HasInvisibleItems bool         `json:"hasInvisibleItems"`
	FollowerCount     int          `json:"followerCount"`
	IsFollowing       bool         `json:"isFollowing"`
}

// UserSeriesItem is a series as it appears in a user's series listing.
type UserSeriesItem struct {
	ID           int    `json:"id"`
	Owner        Owner  `json:"owner"`
	Title        string `json:"title"`
	IsListed     bool   `json:"isListed"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnailUrl"`
	ItemsCount   int    `json:"itemsCount"`
}

// SeriesDetail is the header of a single series.
type SeriesDetail struct {
	ID           int    `json:"id"`
	Owner        Owner  `json:"owner"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnailUrl"`
	IsListed     bool   `json:"isListed"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

// SeriesItemMeta positions a video inside a series.
type SeriesItemMeta struct {
	ID        string `json:"id"`
	Order     int    `json:"order"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// SeriesItem is one video of a series.
type SeriesItem struct {
	Meta  SeriesItemMeta `json:"meta"`
	Video EssentialVideo `json:"video"`
}

// SeriesData is a single series with a page of its videos.
type SeriesData struct {
	Detail     SeriesDetail `json:"detail"`
	TotalCount int          `json:"totalCount"`
	Items      []SeriesItem `json:"items"`
}

// UserIcons holds a user's avatar URLs.
type UserIcons struct {
	Small string `json:"small"`
	Large string `json:"large"`
}

// RelationshipUser is a user followed by the authenticated user.
type RelationshipUser struct {
	Type                string    `json:"type"`
	ID                  int       `json:"id"`
	Nickname            string    `json:"nickname"`
	Icons               UserIcons `json:"icons"`
	IsPremium           bool      `json:"isPremium"`
	Description         string    `json:"description"`
	StrippedDescription string    `json:"strippedDescription"`
	ShortDescription    string    `json:"shortDescription"`
	Relationships       struct {
		SessionUser struct {
			IsFollowing bool `json:"isFollowing"`
		} `json:"sessionUser"`
		IsMe bool `json:"isMe"`
	} `json:"relationships"`
}

// RelationshipSummary pages through a relationship listing.
type RelationshipSummary struct {
	Followees int    `json:"followees"`
	Followers int    `json:"followers"`
	HasNext   bool   `json:"hasNext"`
	Cursor    string `json:"cursor"`
}

// RelationshipUsersData lists the users followed by the authenticated user.
type RelationshipUsersData struct {
	Items   []RelationshipUser  `json:"items"`
	Summary RelationshipSummary `json:"summary"`
}

// UserLevel is a user's niconico level.
type UserLevel struct {
	CurrentLevel                 int `json:"currentLevel"`
	NextLevelThresholdExperience int `json:"nextLevelThresholdExperience"`
	NextLevelExperience          int `json:"nextLevelExperience"`
	CurrentLevelExperience       int `json:"currentLevelExperience"`
}

// NicoUser is a user profile.
type NicoUser struct {
	ID                       int       `json:"id"`
	Nickname                 string    `json:"nickname"`
	Icons                    UserIcons `json:"icons"`
	Description              string    `json:"description"`
	DecoratedDescriptionHTML string    `json:"decoratedDescriptionHtml"`
	StrippedDescription      string    `json:"strippedDescription"`
	IsPremium                bool      `json:"isPremium"`
	RegisteredVersion        string    `json:"registeredVersion"`
	FolloweeCount            int       `json:"followeeCount"`
	FollowerCount            int       `json:"followerCount"`
	UserLevel                UserLevel `json:"userLevel"`
	IsNicorepoReadable       bool      `json:"isNicorepoReadable"`
}

// VideoSearchData is a page of video search results.
type VideoSearchData struct {
	SearchID   string           `json:"searchId"`
	TotalCount int              `json:"totalCount"`
	HasNext    bool             `json:"hasNext"`
	Keyword    *string          `json:"keyword"`
	Tag        *string          `json:"tag"`
	Items      []EssentialVideo `json:"items"`
}

// ListSearchItem is a mylist or series found by a list search.
type ListSearchItem struct {
	Type          string `json:"type"`
	ID            int    `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	ThumbnailURL  string `json:"thumbnailUrl"`
	VideoCount    int    `json:"videoCount"`
	Owner         Owner  `json:"owner"`
	IsMuted       bool   `json:"isMuted"`
	IsFollowing   bool   `json:"isFollowing"`
	FollowerCount int    `json:"followerCount"`
}

// ListSearchData is a page of mylist or series search results.
type ListSearchData struct {
	SearchID   string           `json:"searchId"`
	TotalCount int              `json:"totalCount"`
	HasNext    bool             `json:"hasNext"`
	Items      []ListSearchItem `json:"items"`
}

// HistoryItem is one entry of the watch history.
type HistoryItem struct {
	FrontendID       int            `json:"frontendId"`
	LastViewedAt     string         `json:"lastViewedAt"`
	PlaybackPosition *float64       `json:"playbackPosition"`
	Video            EssentialVideo `json:"video"`
	WatchID          string         `json:"watchId"`
	Views            int            `json:"views"`
}

// HistoryData is a page of the authenticated user's watch history.
type HistoryData struct {
	Items      []HistoryItem `json:"items"`
	TotalCount int           `json:"totalCount"`
}

// LikeItem is one liked video.
type LikeItem struct {
	LikedAt       string         `json:"likedAt"`
	ThanksMessage *string        `json:"thanksMessage"`
	Video         EssentialVideo `json:"video"`
	Status        string         `json:"status"`
}

// LikeHistoryData is a page of the authenticated user's liked videos.
type LikeHistoryData struct {
	Items   []LikeItem `json:"items"`
	Summary struct {
		HasNext    bool `json:"hasNext"`
		CanGetMore bool `json:"canGetMore"`
	} `json:"summary"`
}

// StreamFixtureData pairs watch data with the audio stream the provider would play.
//
// Unstable stream fields (HLS URL, domand_bid cookie, playlist text) are not stored;
// the consuming test suite fills them with stubs.
type StreamFixtureData struct {
	WatchData     WatchData             `json:"watch_data"`
	SelectedAudio WatchMediaDomandAudio `json:"selected_audio"`
}
