package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// Resolution errors; ErrNotFound covers missing series, albums the
	// catalog cannot resolve, discs with zero tracks, and absent overrides.
	ErrNotFound         = fmt.Errorf("not found")
	ErrSeriesNotFound   = fmt.Errorf("%w: series", ErrNotFound)
	ErrAlbumNotFound    = fmt.Errorf("%w: album not found on catalog", ErrNotFound)
	ErrOverrideNotFound = fmt.Errorf("%w: override", ErrNotFound)

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")

	// Upstream errors; ErrUpstreamUnavailable is retryable, distinct from
	// ErrNotFound which is a definitive answer.
	ErrUpstreamUnavailable = fmt.Errorf("upstream unavailable")
	ErrAPIRequest          = fmt.Errorf("API request failed")
	ErrServiceUnavailable  = fmt.Errorf("service unavailable")
	ErrTimeout             = fmt.Errorf("operation timed out")
)
