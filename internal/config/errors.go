package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoBaseURL is returned when the rendering service base URL is empty.
	ErrNoBaseURL = errors.New("no base URL: the rendering service URL must be set")

	// ErrInvalidMinValidSize is returned when the blank-render threshold is
	// negative. Zero is valid and disables blank detection entirely.
	ErrInvalidMinValidSize = errors.New("invalid min valid size: must be non-negative")

	// ErrInvalidPageSize is returned when the catalog page size is not
	// positive. A zero page size would make every page look like the last.
	ErrInvalidPageSize = errors.New("invalid page size: must be positive")

	// ErrInvalidTimeout is returned when a request timeout is not positive.
	// A zero timeout would cause immediate connection failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidDelay is returned when an inter-request delay is negative.
	// Use 0 for no delay between requests.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrInvalidFailureRateThreshold is returned when the failure-rate
	// threshold is outside [0, 1].
	ErrInvalidFailureRateThreshold = errors.New("invalid failure rate threshold: must be between 0 and 1")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidSampleSize is returned when the sample size is negative.
	// Use 0 to test the full catalog.
	ErrInvalidSampleSize = errors.New("invalid sample size: must be non-negative")
)
