package capture

import (
	"context"
	"fmt"
	"sort"

	"github.com/desertthunder/nicofix/internal/nicovideo"
	"github.com/desertthunder/nicofix/internal/shared"
)

// Operation names usable in a [Target].
const (
	OpOwnVideos             = "own_videos"
	OpWatchData             = "watch_data"
	OpUserVideos            = "user_videos"
	OpOwnMylists            = "own_mylists"
	OpFollowingMylists      = "following_mylists"
	OpMylist                = "mylist"
	OpOwnSeries             = "own_series"
	OpUserSeries            = "user_series"
	OpSeries                = "series"
	OpFollowingUsers        = "following_users"
	OpUser                  = "user"
	OpSearchVideosByKeyword = "search_videos_by_keyword"
	OpSearchVideosByTag     = "search_videos_by_tag"
	OpSearchLists           = "search_lists"
	OpHistory               = "history"
	OpLikeHistory           = "like_history"
	OpStreamData            = "stream_data"
)

// CallFunc invokes the client for one target.
type CallFunc func(ctx context.Context, c nicovideo.Client, p Params) (nicovideo.Response, error)

// Operation binds a name to a client call and the parameters it accepts.
type Operation struct {
	Name     string
	Required []string
	Accepts  []string
	Call     CallFunc
}

var (
	pageParams   = []string{ParamPage, ParamPageSize}
	searchParams = []string{ParamPage, ParamPageSize, ParamSortKey, ParamSortOrder, ParamTypes}
)

var operations = map[string]Operation{}

func register(op Operation) {
	operations[op.Name] = op
}

// Lookup returns the operation registered under name.
func Lookup(name string) (Operation, bool) {
	op, ok := operations[name]
	return op, ok
}

// OperationNames returns the registered operation names in sorted order.
func OperationNames() []string {
	names := make([]string, 0, len(operations))
	for name := range operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// check validates params without calling the client.
func (op Operation) check(p Params) error {
	allowed := make(map[string]bool, len(op.Required)+len(op.Accepts))
	for _, k := range op.Required {
		if _, err := p.Require(k); err != nil {
			return err
		}
		allowed[k] = true
	}
	for _, k := range op.Accepts {
		allowed[k] = true
	}
	for k := range p {
		if !allowed[k] {
			return fmt.Errorf("%w: operation %s does not accept %q", shared.ErrInvalidArgument, op.Name, k)
		}
	}

	if _, err := p.SearchOpts(); err != nil {
		return err
	}
	return nil
}

func respond[T nicovideo.Response](v T, err error) (nicovideo.Response, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}

func init() {
	register(Operation{Name: OpOwnVideos, Accepts: pageParams,
		Call: func(ctx context.Context, c nicovideo.Client, p Params) (nicovideo.Response, error) {
			opts, err := p.PageOpts()
			if err != nil {
				return nil, err
			}
			return respond(c.OwnVideos(ctx, opts))
		}})

	register(Operation{Name: OpWatchData, Required: []string{ParamID},
		Call: func(ctx context.Context, c nicovideo.Client, p Params) (nicovideo.Response, error) {
			id, err := p.Require(ParamID)
			if err != nil {
				return nil, err
			}
			return respond(c.WatchData(ctx, id))
		}})

	register(Operation{Name: OpUserVideos, Required: []string{ParamID}, Accepts: pageParams,
		Call: withIDPage(func(ctx context.Context, c nicovideo.Client, id string, opts nicovideo.PageOpts) (nicovideo.Response, error) {
			return respond(c.UserVideos(ctx, id, opts))
		})})

	register(Operation{Name: OpOwnMylists,
		Call: func(ctx context.Context, c nicovideo.Client, _ Params) (nicovideo.Response, error) {
			return respond(c.OwnMylists(ctx))
		}})

	register(Operation{Name: OpFollowingMylists,
		Call: func(ctx context.Context, c nicovideo.Client, _ Params) (nicovideo.Response, error) {
			return respond(c.FollowingMylists(ctx))
		}})

	register(Operation{Name: OpMylist, Required: []string{ParamID}, Accepts: pageParams,
		Call: withIDPage(func(ctx context.Context, c nicovideo.Client, id string, opts nicovideo.PageOpts) (nicovideo.Response, error) {
			return respond(c.Mylist(ctx, id, opts))
		})})

	register(Operation{Name: OpOwnSeries,
		Call: func(ctx context.Context, c nicovideo.Client, _ Params) (nicovideo.Response, error) {
			return respond(c.OwnSeries(ctx))
		}})

	register(Operation{Name: OpUserSeries, Required: []string{ParamID}, Accepts: pageParams,
		Call: withIDPage(func(ctx context.Context, c nicovideo.Client, id string, opts nicovideo.PageOpts) (nicovideo.Response, error) {
			return respond(c.UserSeries(ctx, id, opts))
		})})

	register(Operation{Name: OpSeries, Required: []string{ParamID}, Accepts: pageParams,
		Call: withIDPage(func(ctx context.Context, c nicovideo.Client, id string, opts nicovideo.PageOpts) (nicovideo.Response, error) {
			return respond(c.Series(ctx, id, opts))
		})})

	register(Operation{Name: OpFollowingUsers, Accepts: pageParams,
		Call: func(ctx context.Context, c nicovideo.Client, p Params) (nicovideo.Response, error) {
			opts, err := p.PageOpts()
			if err != nil {
				return nil, err
			}
			return respond(c.FollowingUsers(ctx, opts))
		}})

	register(Operation{Name: OpUser, Required: []string{ParamID},
		Call: func(ctx context.Context, c nicovideo.Client, p Params) (nicovideo.Response, error) {
			id, err := p.Require(ParamID)
			if err != nil {
				return nil, err
			}
			return respond(c.User(ctx, id))
		}})

	register(Operation{Name: OpSearchVideosByKeyword, Required: []string{ParamQuery}, Accepts: searchParams,
		Call: withQuery(func(ctx context.Context, c nicovideo.Client, q string, opts nicovideo.SearchOpts) (nicovideo.Response, error) {
			return respond(c.SearchVideosByKeyword(ctx, q, opts))
		})})

	register(Operation{Name: OpSearchVideosByTag, Required: []string{ParamQuery}, Accepts: searchParams,
		Call: withQuery(func(ctx context.Context, c nicovideo.Client, q string, opts nicovideo.SearchOpts) (nicovideo.Response, error) {
			return respond(c.SearchVideosByTag(ctx, q, opts))
		})})

	register(Operation{Name: OpSearchLists, Required: []string{ParamQuery}, Accepts: searchParams,
		Call: withQuery(func(ctx context.Context, c nicovideo.Client, q string, opts nicovideo.SearchOpts) (nicovideo.Response, error) {
			return respond(c.SearchLists(ctx, q, opts))
		})})

	register(Operation{Name: OpHistory, Accepts: pageParams,
		Call: func(ctx context.Context, c nicovideo.Client, p Params) (nicovideo.Response, error) {
			opts, err := p.PageOpts()
			if err != nil {
				return nil, err
			}
			return respond(c.History(ctx, opts))
		}})

	register(Operation{Name: OpLikeHistory, Accepts: pageParams,
		Call: func(ctx context.Context, c nicovideo.Client, p Params) (nicovideo.Response, error) {
			opts, err := p.PageOpts()
			if err != nil {
				return nil, err
			}
			return respond(c.LikeHistory(ctx, opts))
		}})

	// Watch data reduced to what the provider needs to open an HLS stream.
	register(Operation{Name: OpStreamData, Required: []string{ParamID},
		Call: func(ctx context.Context, c nicovideo.Client, p Params) (nicovideo.Response, error) {
			id, err := p.Require(ParamID)
			if err != nil {
				return nil, err
			}
			watch, err := c.WatchData(ctx, id)
			if err != nil {
				return nil, err
			}
			return respond(nicovideo.NewStreamFixtureData(watch))
		}})
}

func withIDPage(fn func(context.Context, nicovideo.Client, string, nicovideo.PageOpts) (nicovideo.Response, error)) CallFunc {
	return func(ctx context.Context, c nicovideo.Client, p Params) (nicovideo.Response, error) {
		id, err := p.Require(ParamID)
		if err != nil {
			return nil, err
		}
		opts, err := p.PageOpts()
		if err != nil {
			return nil, err
		}
		return fn(ctx, c, id, opts)
	}
}

func withQuery(fn func(context.Context, nicovideo.Client, string, nicovideo.SearchOpts) (nicovideo.Response, error)) CallFunc {
	return func(ctx context.Context, c nicovideo.Client, p Params) (nicovideo.Response, error) {
		q, err := p.Require(ParamQuery)
		if err != nil {
			return nil, err
		}
		opts, err := p.SearchOpts()
		if err != nil {
			return nil, err
		}
		return fn(ctx, c, q, opts)
	}
}
