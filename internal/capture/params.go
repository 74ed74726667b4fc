package capture

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/desertthunder/nicofix/internal/nicovideo"
	"github.com/desertthunder/nicofix/internal/shared"
)

// Parameter names understood by operations.
const (
	ParamID        = "id"
	ParamQuery     = "query"
	ParamPage      = "page"
	ParamPageSize  = "page_size"
	ParamSortKey   = "sort_key"
	ParamSortOrder = "sort_order"
	ParamTypes     = "types"
)

// Params are the arguments of a target, usually decoded from TOML.
type Params map[string]any

// String returns a string parameter, or "" when absent.
func (p Params) String(key string) (string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", nil
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case int, int64, json.Number:
		return fmt.Sprint(s), nil
	default:
		return "", fmt.Errorf("%w: %s must be a string, got %T", shared.ErrInvalidArgument, key, v)
	}
}

// Int returns an integer parameter, or 0 when absent.
func (p Params) Int(key string) (int, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return 0, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%w: %s must be a whole number, got %v", shared.ErrInvalidArgument, key, n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", shared.ErrInvalidArgument, key, err)
		}
		return int(i), nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", shared.ErrInvalidArgument, key, err)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%w: %s must be an integer, got %T", shared.ErrInvalidArgument, key, v)
	}
}

// Strings returns a list parameter. A single string is split on commas.
func (p Params) Strings(key string) ([]string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch l := v.(type) {
	case []string:
		return l, nil
	case string:
		var out []string
		for _, s := range strings.Split(l, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	case []any:
		out := make([]string, 0, len(l))
		for i, item := range l {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s[%d] must be a string, got %T", shared.ErrInvalidArgument, key, i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s must be a list of strings, got %T", shared.ErrInvalidArgument, key, v)
	}
}

// Require returns a non-empty string parameter.
func (p Params) Require(key string) (string, error) {
	s, err := p.String(key)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", fmt.Errorf("%w: missing %s", shared.ErrInvalidArgument, key)
	}
	return s, nil
}

// PageOpts reads page and page_size.
func (p Params) PageOpts() (nicovideo.PageOpts, error) {
	page, err := p.Int(ParamPage)
	if err != nil {
		return nicovideo.PageOpts{}, err
	}
	size, err := p.Int(ParamPageSize)
	if err != nil {
		return nicovideo.PageOpts{}, err
	}
	if page < 0 || size < 0 {
		return nicovideo.PageOpts{}, fmt.Errorf("%w: page and page_size must not be negative", shared.ErrInvalidArgument)
	}
	return nicovideo.PageOpts{Page: page, PageSize: size}, nil
}

// SearchOpts reads the paging, sort and types parameters.
func (p Params) SearchOpts() (nicovideo.SearchOpts, error) {
	page, err := p.PageOpts()
	if err != nil {
		return nicovideo.SearchOpts{}, err
	}
	key, err := p.String(ParamSortKey)
	if err != nil {
		return nicovideo.SearchOpts{}, err
	}
	order, err := p.String(ParamSortOrder)
	if err != nil {
		return nicovideo.SearchOpts{}, err
	}
	if order != "" && order != "asc" && order != "desc" {
		return nicovideo.SearchOpts{}, fmt.Errorf("%w: sort_order must be asc or desc, got %q", shared.ErrInvalidArgument, order)
	}
	types, err := p.Strings(ParamTypes)
	if err != nil {
		return nicovideo.SearchOpts{}, err
	}
	return nicovideo.SearchOpts{
		SortKey:   key,
		SortOrder: order,
		Page:      page.Page,
		PageSize:  page.PageSize,
		Types:     types,
	}, nil
}
