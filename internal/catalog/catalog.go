package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/stampchain-io/previewscan/internal/model"
)

// Fetcher pages through the stamp listing endpoint and collects a StampRef
// for every HTML stamp.
//
// Design decision: We use a struct with the http.Client rather than passing
// the client on each call because:
//  1. Client configuration (timeouts) should be consistent across pages
//  2. Connection pooling works better with a shared client
//  3. Easier to test with httptest servers
type Fetcher struct {
	// client is the HTTP client used for listing requests.
	client *http.Client

	// baseURL is the rendering service base URL, without a trailing slash.
	baseURL string

	// pageSize is the listing page size. A page shorter than this signals
	// the last page.
	pageSize int

	// userAgent is the User-Agent header to send.
	userAgent string

	// output receives the per-page progress lines.
	output io.Writer

	// logger receives debug diagnostics.
	logger *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithPageSize sets the listing page size.
func WithPageSize(size int) Option {
	return func(f *Fetcher) {
		f.pageSize = size
	}
}

// WithUserAgent sets the User-Agent header for listing requests.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithOutput sets the destination for per-page progress lines.
func WithOutput(w io.Writer) Option {
	return func(f *Fetcher) {
		f.output = w
	}
}

// WithLogger sets the logger for debug diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a Fetcher for the given rendering service.
// The client should carry the catalog request timeout.
func NewFetcher(client *http.Client, baseURL string, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:   client,
		baseURL:  baseURL,
		pageSize: 100,
		output:   io.Discard,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// page is the JSON shape of one listing response.
type page struct {
	Data []model.StampRef `json:"data"`
}

// FetchAll collects every HTML stamp from the listing endpoint.
//
// Paging starts at page 1 and stops when a page returns zero elements or
// fewer than the page size; the short page still contributes its elements.
// There is no other bound on the page count: a service that kept returning
// full pages forever would keep us fetching, which we accept as a trust
// boundary with the API rather than defend against.
//
// Any transport, HTTP-status, or decode error aborts the fetch and
// propagates to the caller; the catalog endpoint is assumed reliable and a
// failure here leaves nothing to validate.
func (f *Fetcher) FetchAll(ctx context.Context) ([]model.StampRef, error) {
	var stamps []model.StampRef

	for pageNum := 1; ; pageNum++ {
		batch, err := f.fetchPage(ctx, pageNum)
		if err != nil {
			return nil, err
		}

		if len(batch) == 0 {
			break
		}

		stamps = append(stamps, batch...)
		fmt.Fprintf(f.output, "  Page %d: %d stamps\n", pageNum, len(batch))
		f.logger.Debug("fetched catalog page", "page", pageNum, "stamps", len(batch))

		if len(batch) < f.pageSize {
			break
		}
	}

	return stamps, nil
}

// fetchPage fetches and decodes a single listing page.
func (f *Fetcher) fetchPage(ctx context.Context, pageNum int) ([]model.StampRef, error) {
	url := fmt.Sprintf("%s/api/v2/stamps?filetype=html&limit=%d&page=%d&sortBy=ASC",
		f.baseURL, f.pageSize, pageNum)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog page %d: %w", pageNum, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog page %d: unexpected status %d", pageNum, resp.StatusCode)
	}

	var p page
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("catalog page %d: decoding response: %w", pageNum, err)
	}

	return p.Data, nil
}
