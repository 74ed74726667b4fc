package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingSession   = fmt.Errorf("missing session token")
	ErrInvalidConfig    = fmt.Errorf("invalid configuration")
	ErrUnknownCategory  = fmt.Errorf("unknown fixture category")
	ErrUnknownOperation = fmt.Errorf("unknown capture operation")
	ErrInvalidArgument  = fmt.Errorf("invalid argument")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")

	// API and service errors
	ErrAPIRequest  = fmt.Errorf("API request failed")
	ErrRateLimited = fmt.Errorf("rate limited by service")
	ErrNoData      = fmt.Errorf("no data returned")

	// Output errors
	ErrSerialize  = fmt.Errorf("failed to serialize response")
	ErrFilesystem = fmt.Errorf("filesystem error")

	// Run errors
	ErrCaptureIncomplete = fmt.Errorf("capture incomplete")
)
