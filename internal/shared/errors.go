package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrMissingToken     = fmt.Errorf("missing access token")
	ErrForbidden        = fmt.Errorf("forbidden")
	ErrSessionNotFound  = fmt.Errorf("session not found")
	ErrLoginFailed      = fmt.Errorf("login failed")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrSongNotFound       = fmt.Errorf("song not found")
	ErrAPIKeyNotFound     = fmt.Errorf("api key not found")
	ErrBatchRejected      = fmt.Errorf("batch rejected")
	ErrDuplicateSong      = fmt.Errorf("song hash already exists")
	ErrListNotFound       = fmt.Errorf("custom list not found")
	ErrEntryNotFound      = fmt.Errorf("custom list entry not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
