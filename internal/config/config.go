package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values mirror the thresholds the rendering pipeline has been tuned
// against in production; each is overridable via the config file or flags.
const (
	// DefaultBaseURL is the rendering service that serves both the stamp
	// catalog and the preview endpoints.
	DefaultBaseURL = "https://stampchain.io"

	// DefaultMinValidSize is the smallest 200-response body, in bytes,
	// accepted as a real rendered preview. The renderer sometimes produces
	// an empty canvas with a successful status; 5000 bytes empirically
	// separates those blank renders from real content without inspecting
	// image structure.
	DefaultMinValidSize = 5_000

	// DefaultPageSize is the catalog page size. 100 is the API maximum.
	DefaultPageSize = 100

	// DefaultTimeout is the per-probe request timeout. The service renders
	// on demand and can take tens of seconds on a cold cache, so this is
	// deliberately generous.
	DefaultTimeout = 60 * time.Second

	// DefaultCatalogTimeout is the per-page timeout for catalog listing
	// requests. Listing is a plain indexed query, much faster than
	// rendering.
	DefaultCatalogTimeout = 30 * time.Second

	// DefaultProbeDelay is the politeness delay between preview requests.
	// Cached previews are cheap to serve, so 100ms is enough backpressure.
	DefaultProbeDelay = 100 * time.Millisecond

	// DefaultRefreshDelay is the delay between preview requests when every
	// probe forces a re-render. Re-rendering is expensive for the remote
	// service, so the run slows down to 500ms per request.
	DefaultRefreshDelay = 500 * time.Millisecond

	// DefaultRemediationDelay is the delay between forced re-renders in
	// the remediation loop. Remediation always re-renders, and runs after
	// the service has already served a full pass, so it is the most
	// conservative of the three delays.
	DefaultRemediationDelay = 1 * time.Second

	// DefaultFailureRateThreshold is the failure fraction above which the
	// process exits non-zero. Strictly greater than: a run at exactly the
	// threshold still passes.
	DefaultFailureRateThreshold = 0.05

	// DefaultMaxBodySize limits how much of a preview body is read.
	// Previews are rendered images of at most a few megabytes; 20MB leaves
	// headroom while protecting against a runaway response.
	DefaultMaxBodySize = 20 * 1024 * 1024 // 20MB

	// DefaultUserAgent identifies previewscan in HTTP requests so service
	// operators can recognize validation traffic in their logs.
	DefaultUserAgent = "previewscan/1.0 (+https://github.com/stampchain-io/previewscan)"

	// AppName is the application name used for XDG directory paths.
	AppName = "previewscan"
)

// Config holds all configuration options for a validation run.
// It is populated from defaults, then the optional config file, then CLI
// flags, and passed through the application by dependency injection rather
// than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CatalogConfig, ProbeConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant
// benefit.
type Config struct {
	// BaseURL is the rendering service base URL, without a trailing slash.
	BaseURL string

	// MinValidSize is the blank-render size threshold in bytes.
	// A 200 response smaller than this classifies as BLANK.
	MinValidSize int64

	// PageSize is the catalog listing page size. A page shorter than this
	// signals the last page.
	PageSize int

	// Timeout is the per-probe request timeout.
	Timeout time.Duration

	// CatalogTimeout is the per-page catalog request timeout.
	CatalogTimeout time.Duration

	// ProbeDelay is the politeness delay between preview requests.
	ProbeDelay time.Duration

	// RefreshDelay replaces ProbeDelay when Refresh is set.
	RefreshDelay time.Duration

	// RemediationDelay is the delay between forced re-renders in the
	// remediation loop.
	RemediationDelay time.Duration

	// FailureRateThreshold is the failure fraction above which the run
	// exits non-zero.
	FailureRateThreshold float64

	// MaxBodySize is the maximum preview body size in bytes to read.
	MaxBodySize int64

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// Sample caps the run to a uniform random subset of this size.
	// 0 disables sampling; a value at or above the catalog size also
	// leaves the catalog unmodified.
	Sample int

	// Refresh forces a re-render on every probe in the main pass.
	Refresh bool

	// RefreshFailed re-probes every failing stamp with a forced re-render
	// after the main pass.
	RefreshFailed bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file. If empty, the
	// tool searches for .previewscan in the current directory, the user's
	// home directory, and the XDG config directory.
	ConfigFilePath string

	// MarkdownReport enables writing a Markdown report after the run.
	MarkdownReport bool

	// ReportFile is the Markdown report destination. When empty the
	// report is written to stdout. Setting it implies MarkdownReport.
	ReportFile string
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use
// cases; users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because most defaults are non-zero (timeouts, delays, the
// size threshold). This also serves as documentation of what the defaults
// are.
func NewConfig() *Config {
	return &Config{
		BaseURL:              DefaultBaseURL,
		MinValidSize:         DefaultMinValidSize,
		PageSize:             DefaultPageSize,
		Timeout:              DefaultTimeout,
		CatalogTimeout:       DefaultCatalogTimeout,
		ProbeDelay:           DefaultProbeDelay,
		RefreshDelay:         DefaultRefreshDelay,
		RemediationDelay:     DefaultRemediationDelay,
		FailureRateThreshold: DefaultFailureRateThreshold,
		MaxBodySize:          DefaultMaxBodySize,
		UserAgent:            DefaultUserAgent,
	}
}

// XDGConfigDir returns the XDG config directory for previewscan.
// On Linux: ~/.config/previewscan
// On macOS: ~/Library/Application Support/previewscan
// On Windows: %APPDATA%\previewscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any network traffic.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrNoBaseURL
	}
	if c.MinValidSize < 0 {
		return ErrInvalidMinValidSize
	}
	if c.PageSize <= 0 {
		return ErrInvalidPageSize
	}
	if c.Timeout <= 0 || c.CatalogTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.ProbeDelay < 0 || c.RefreshDelay < 0 || c.RemediationDelay < 0 {
		return ErrInvalidDelay
	}
	if c.FailureRateThreshold < 0 || c.FailureRateThreshold > 1 {
		return ErrInvalidFailureRateThreshold
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.Sample < 0 {
		return ErrInvalidSampleSize
	}
	return nil
}

// Delay returns the inter-request delay for the main pass: RefreshDelay
// when every probe forces a re-render, ProbeDelay otherwise.
func (c *Config) Delay() time.Duration {
	if c.Refresh {
		return c.RefreshDelay
	}
	return c.ProbeDelay
}
