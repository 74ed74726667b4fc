package nicovideo

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"github.com/desertthunder/nicofix/internal/shared"
)

// Response is the closed set of values a capture can produce.
//
// Every API result type in this package implements it; nothing outside the package can.
type Response interface {
	response()
}

func (*OwnVideosData) response()         {}
func (*UserVideosData) response()        {}
func (*WatchData) response()             {}
func (*FollowingMylistsData) response()  {}
func (*Mylist) response()                {}
func (*SeriesData) response()            {}
func (*RelationshipUsersData) response() {}
func (*NicoUser) response()              {}
func (*VideoSearchData) response()       {}
func (*ListSearchData) response()        {}
func (*HistoryData) response()           {}
func (*LikeHistoryData) response()       {}
func (*StreamFixtureData) response()     {}

// Items is a list result. Fixtures of list results store the items as a JSON array.
type Items[T any] []T

func (Items[T]) response() {}

// Len returns the number of items.
func (it Items[T]) Len() int { return len(it) }

// Truncate returns at most n items. n <= 0 keeps everything.
//
// A nil list becomes an empty one so it encodes as [] rather than null.
func (it Items[T]) Truncate(n int) Response {
	if it == nil {
		return Items[T]{}
	}
	if n <= 0 || len(it) <= n {
		return it
	}
	return it[:n]
}

// Truncater is implemented by list results.
type Truncater interface {
	Response
	Len() int
	Truncate(n int) Response
}

// TypeRef names the Go type a fixture decodes into.
//
// List results record their item type with List set.
type TypeRef struct {
	Package string `json:"package"`
	Name    string `json:"type"`
	List    bool   `json:"list,omitempty"`
}

// String returns the type as it would be written in Go source, qualified by the package name.
func (r TypeRef) String() string {
	name := r.Name
	if pkg := packageName(r.Package); pkg != "" {
		name = pkg + "." + name
	}
	if r.List {
		return "[]" + name
	}
	return name
}

func (r TypeRef) key() string {
	if r.List {
		return "[]" + r.Name
	}
	return r.Name
}

func packageName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}

// TypeRefOf returns the [TypeRef] of a response value.
func TypeRefOf(resp Response) TypeRef {
	t := reflect.TypeOf(resp)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	var ref TypeRef
	if t.Kind() == reflect.Slice {
		ref.List = true
		t = t.Elem()
	}
	ref.Name = t.Name()
	ref.Package = t.PkgPath()
	return ref
}

var registry = newRegistry(
	(*OwnVideosData)(nil),
	(*UserVideosData)(nil),
	(*WatchData)(nil),
	Items[UserMylistItem](nil),
	(*FollowingMylistsData)(nil),
	(*Mylist)(nil),
	Items[UserSeriesItem](nil),
	(*SeriesData)(nil),
	(*RelationshipUsersData)(nil),
	(*NicoUser)(nil),
	(*VideoSearchData)(nil),
	(*ListSearchData)(nil),
	(*HistoryData)(nil),
	(*LikeHistoryData)(nil),
	(*StreamFixtureData)(nil),
)

func newRegistry(protos ...Response) map[string]reflect.Type {
	r := make(map[string]reflect.Type, len(protos))
	for _, p := range protos {
		r[TypeRefOf(p).key()] = reflect.TypeOf(p)
	}
	return r
}

// KnownTypes returns every registered response type, sorted by name.
func KnownTypes() []TypeRef {
	refs := make([]TypeRef, 0, len(registry))
	for _, t := range registry {
		refs = append(refs, TypeRefOf(reflect.Zero(t).Interface().(Response)))
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].key() < refs[j].key() })
	return refs
}

// Decode unmarshals JSON into a new value of the type named by ref.
func Decode(ref TypeRef, data []byte) (Response, error) {
	t, ok := registry[ref.key()]
	if !ok {
		return nil, fmt.Errorf("%w: unknown response type %s", shared.ErrSerialize, ref)
	}

	switch t.Kind() {
	case reflect.Pointer:
		v := reflect.New(t.Elem())
		if err := json.Unmarshal(data, v.Interface()); err != nil {
			return nil, fmt.Errorf("%w: decode %s: %v", shared.ErrSerialize, ref, err)
		}
		return v.Interface().(Response), nil
	default:
		v := reflect.New(t)
		if err := json.Unmarshal(data, v.Interface()); err != nil {
			return nil, fmt.Errorf("%w: decode %s: %v", shared.ErrSerialize, ref, err)
		}
		return v.Elem().Interface().(Response), nil
	}
}

// IsEmpty reports whether resp carries no value at all (nil interface or nil pointer).
func IsEmpty(resp Response) bool {
	if resp == nil {
		return true
	}
	v := reflect.ValueOf(resp)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
