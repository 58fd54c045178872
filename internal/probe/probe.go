package probe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/stampchain-io/previewscan/internal/model"
)

// Prober issues preview requests with redirect-following disabled.
//
// A redirect is a first-class outcome for a preview: the service answers
// 302 both for fallback placeholders and for externally hosted artifacts,
// and the classifier needs to see the raw status and Location target.
// Following the redirect would silently destroy that signal, so the
// prober's client returns the redirect response as-is.
type Prober struct {
	// client is the HTTP client. Its CheckRedirect policy is pinned to
	// http.ErrUseLastResponse and must not be replaced.
	client *http.Client

	// baseURL is the rendering service base URL, without a trailing slash.
	baseURL string

	// maxBodySize limits how many preview body bytes are read.
	maxBodySize int64

	// userAgent is the User-Agent header to send.
	userAgent string

	// logger receives debug diagnostics.
	logger *slog.Logger
}

// Option configures a Prober.
type Option func(*Prober)

// WithTimeout sets the per-request timeout.
// The service renders on demand, so this should be generous; see
// config.DefaultTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(p *Prober) {
		p.client.Timeout = timeout
	}
}

// WithMaxBodySize sets the maximum preview body size to read.
func WithMaxBodySize(size int64) Option {
	return func(p *Prober) {
		p.maxBodySize = size
	}
}

// WithUserAgent sets the User-Agent header for preview requests.
func WithUserAgent(ua string) Option {
	return func(p *Prober) {
		p.userAgent = ua
	}
}

// WithLogger sets the logger for debug diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Prober) {
		p.logger = logger
	}
}

// NewProber creates a Prober for the given rendering service.
//
// Design decision: Unlike the catalog fetcher, the prober builds its own
// http.Client because the redirect policy is an invariant of the type, not
// a caller choice. Accepting an external client would invite one configured
// to follow redirects, which silently breaks classification.
func NewProber(baseURL string, opts ...Option) *Prober {
	p := &Prober{
		client: &http.Client{
			Timeout: 60 * time.Second,
			CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		baseURL:     baseURL,
		maxBodySize: 20 * 1024 * 1024,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Probe requests the preview for one stamp and normalizes the outcome.
// It never returns an error: any transport-level failure (name resolution,
// connection reset, timeout) yields a result with HTTPStatus 0.
//
// When refresh is true the request instructs the rendering service to
// bypass its cache and re-render from source.
func (p *Prober) Probe(ctx context.Context, id int64, refresh bool) model.ProbeResult {
	url := fmt.Sprintf("%s/api/v2/stamp/%d/preview", p.baseURL, id)
	if refresh {
		url += "?refresh=true"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		p.logger.Debug("failed to build preview request", "stamp", id, "error", err)
		return model.ProbeResult{}
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug("preview request failed", "stamp", id, "error", err)
		return model.ProbeResult{}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return p.successResult(resp, id)
	case resp.StatusCode >= 300 && resp.StatusCode < 400:
		// The redirect response itself is the data: status code, target,
		// and the cache header the service still sets on this path.
		return model.ProbeResult{
			HTTPStatus:       resp.StatusCode,
			CacheHeader:      resp.Header.Get("X-Cache"),
			RedirectLocation: resp.Header.Get("Location"),
		}
	default:
		return model.ProbeResult{HTTPStatus: resp.StatusCode}
	}
}

// successResult reads the preview body and captures the rendering headers
// of a 2xx response. All headers are optional and default to empty.
func (p *Prober) successResult(resp *http.Response, id int64) model.ProbeResult {
	result := model.ProbeResult{
		HTTPStatus:      resp.StatusCode,
		ContentType:     resp.Header.Get("Content-Type"),
		CacheHeader:     resp.Header.Get("X-Cache"),
		RecursiveHeader: resp.Header.Get("X-Recursive"),
		EngineHeader:    resp.Header.Get("X-Rendering-Engine"),
		MethodHeader:    resp.Header.Get("X-Conversion-Method"),
	}

	n, err := io.Copy(io.Discard, io.LimitReader(resp.Body, p.maxBodySize))
	if err != nil {
		// A body that dies mid-read is as good as no response.
		p.logger.Debug("preview body read failed", "stamp", id, "error", err)
		return model.ProbeResult{}
	}
	result.BodySize = n

	return result
}
