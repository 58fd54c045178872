package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stampchain-io/previewscan/internal/model"
)

// stampPage builds a listing page of n stamps starting at the given id.
func stampPage(start int64, n int) []model.StampRef {
	stamps := make([]model.StampRef, n)
	for i := range stamps {
		id := start + int64(i)
		stamps[i] = model.StampRef{
			ID:       id,
			TxHash:   fmt.Sprintf("hash%08d", id),
			StampURL: fmt.Sprintf("https://stampchain.io/stamp/%d", id),
		}
	}
	return stamps
}

// TestFetcherFetchAll tests catalog pagination.
func TestFetcherFetchAll(t *testing.T) {
	t.Parallel()

	t.Run("collects a full page plus a short last page", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			page, _ := strconv.Atoi(r.URL.Query().Get("page"))
			var data []model.StampRef
			switch page {
			case 1:
				data = stampPage(1, 100)
			case 2:
				data = stampPage(101, 20)
			default:
				t.Errorf("unexpected page request %d: short page must stop pagination", page)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"data": data}) //nolint:errcheck
		}))
		defer server.Close()

		var out bytes.Buffer
		fetcher := NewFetcher(server.Client(), server.URL, WithOutput(&out))

		stamps, err := fetcher.FetchAll(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(stamps) != 120 {
			t.Fatalf("expected 120 stamps, got %d", len(stamps))
		}
		if stamps[0].ID != 1 || stamps[119].ID != 120 {
			t.Errorf("expected ids 1..120 in order, got first=%d last=%d", stamps[0].ID, stamps[119].ID)
		}
		if !strings.Contains(out.String(), "Page 1: 100 stamps") {
			t.Errorf("expected page 1 progress line, got %q", out.String())
		}
		if !strings.Contains(out.String(), "Page 2: 20 stamps") {
			t.Errorf("expected page 2 progress line, got %q", out.String())
		}
	})

	t.Run("stops on an empty page", func(t *testing.T) {
		t.Parallel()

		requests := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			page, _ := strconv.Atoi(r.URL.Query().Get("page"))
			var data []model.StampRef
			if page == 1 {
				data = stampPage(1, 100)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"data": data}) //nolint:errcheck
		}))
		defer server.Close()

		fetcher := NewFetcher(server.Client(), server.URL)

		stamps, err := fetcher.FetchAll(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(stamps) != 100 {
			t.Errorf("expected 100 stamps, got %d", len(stamps))
		}
		if requests != 2 {
			t.Errorf("expected exactly 2 page requests, got %d", requests)
		}
	})

	t.Run("empty catalog yields no stamps", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"data": []}`)) //nolint:errcheck
		}))
		defer server.Close()

		fetcher := NewFetcher(server.Client(), server.URL)

		stamps, err := fetcher.FetchAll(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(stamps) != 0 {
			t.Errorf("expected empty catalog, got %d stamps", len(stamps))
		}
	})

	t.Run("sends the documented query parameters", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("filetype") != "html" {
				t.Errorf("expected filetype=html, got %q", q.Get("filetype"))
			}
			if q.Get("limit") != "100" {
				t.Errorf("expected limit=100, got %q", q.Get("limit"))
			}
			if q.Get("sortBy") != "ASC" {
				t.Errorf("expected sortBy=ASC, got %q", q.Get("sortBy"))
			}
			if r.URL.Path != "/api/v2/stamps" {
				t.Errorf("unexpected path %q", r.URL.Path)
			}
			_, _ = w.Write([]byte(`{"data": []}`)) //nolint:errcheck
		}))
		defer server.Close()

		fetcher := NewFetcher(server.Client(), server.URL)
		if _, err := fetcher.FetchAll(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("missing stamp_url defaults to empty", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"data": [{"stamp": 42, "tx_hash": "abc123"}]}`)) //nolint:errcheck
		}))
		defer server.Close()

		fetcher := NewFetcher(server.Client(), server.URL)

		stamps, err := fetcher.FetchAll(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(stamps) != 1 {
			t.Fatalf("expected 1 stamp, got %d", len(stamps))
		}
		if stamps[0].ID != 42 || stamps[0].TxHash != "abc123" {
			t.Errorf("unexpected stamp %+v", stamps[0])
		}
		if stamps[0].StampURL != "" {
			t.Errorf("expected empty stamp_url, got %q", stamps[0].StampURL)
		}
	})

	t.Run("HTTP error status propagates", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		fetcher := NewFetcher(server.Client(), server.URL)

		if _, err := fetcher.FetchAll(context.Background()); err == nil {
			t.Fatal("expected error for 500 response")
		}
	})

	t.Run("malformed JSON propagates", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"data": [`)) //nolint:errcheck
		}))
		defer server.Close()

		fetcher := NewFetcher(server.Client(), server.URL)

		if _, err := fetcher.FetchAll(context.Background()); err == nil {
			t.Fatal("expected error for malformed JSON")
		}
	})

	t.Run("transport failure propagates", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
		url := server.URL
		server.Close()

		fetcher := NewFetcher(&http.Client{}, url)

		if _, err := fetcher.FetchAll(context.Background()); err == nil {
			t.Fatal("expected error for unreachable server")
		}
	})

	t.Run("custom page size controls the short-page condition", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("limit") != "10" {
				t.Errorf("expected limit=10, got %q", r.URL.Query().Get("limit"))
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"data": stampPage(1, 7)}) //nolint:errcheck
		}))
		defer server.Close()

		fetcher := NewFetcher(server.Client(), server.URL, WithPageSize(10))

		stamps, err := fetcher.FetchAll(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(stamps) != 7 {
			t.Errorf("expected 7 stamps from one short page, got %d", len(stamps))
		}
	})
}
