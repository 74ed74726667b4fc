// Package nicovideo defines the [Client] interface for the niconico APIs and implements it over HTTP.
//
// # Client Interface
//
// Every capturable operation is one method on [Client]. Capture code depends on the
// interface only, so tests substitute a mock and count invocations.
//
// # HTTP Implementation
//
// [HTTPClient] talks to two hosts with resty:
//   - nvapi (https://nvapi.nicovideo.jp): users, mylists, series, search, history
//   - watch (https://www.nicovideo.jp): /api/watch/v3 watch page data
//
// Authentication is the user_session cookie built from the session token passed in
// [ClientOpts]. The token is never read from the environment here.
//
// # Responses
//
// Results form a closed set of tagged variants behind [Response]. [TypeRefOf] names
// the Go type of a result and [Decode] turns JSON back into that type, so a fixture
// and its recorded [TypeRef] always round-trip.
//
// # Error Handling
//
// Status codes map onto sentinel errors from the shared package:
//   - [shared.ErrAuthFailed] : 401 or 403, the session was rejected
//   - [shared.ErrRateLimited] : 429
//   - [shared.ErrAPIRequest] : transport failure or any other non-2xx status
//   - [shared.ErrSerialize] : [Decode] could not map JSON onto the named type
package nicovideo
