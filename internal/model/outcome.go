package model

import (
	"fmt"
	"net/http"
	"strings"
)

// OutcomeKind enumerates the fixed categories a probe result can fall into.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and switch statements. The Outcome value
// carries the HTTP status alongside the kind so that HTTP_<code> labels can
// embed the exact numeric code without a per-code constant.
type OutcomeKind int

const (
	// OutcomeOK indicates a 200 response large enough to be a real
	// rendered preview.
	OutcomeOK OutcomeKind = iota

	// OutcomeBlank indicates a 200 response whose body is implausibly
	// small to represent real rendered content. The renderer is known to
	// occasionally produce an empty canvas with a successful status.
	OutcomeBlank

	// OutcomeFallback indicates a redirect to a generic placeholder image
	// (site logo or opengraph default) used when rendering is impossible
	// or not yet available.
	OutcomeFallback

	// OutcomeRedirect indicates a redirect to an externally hosted
	// rendered artifact (typically S3). This is a success path: the
	// preview exists, it just lives elsewhere.
	OutcomeRedirect

	// OutcomeTimeout indicates a transport-level failure: timeout, name
	// resolution failure, or connection reset. No HTTP response arrived.
	OutcomeTimeout

	// OutcomeHTTPError indicates any other HTTP status. The status code
	// is carried in Outcome.HTTPStatus.
	OutcomeHTTPError
)

// Outcome is the classification of a single ProbeResult.
// It is a pure function of the result fields and the size threshold; two
// identical results always classify identically regardless of run order.
type Outcome struct {
	// Kind is the outcome category.
	Kind OutcomeKind

	// HTTPStatus is the status code behind an OutcomeHTTPError.
	// Zero for all other kinds.
	HTTPStatus int
}

// String returns the category label: OK, BLANK, FALLBACK, REDIRECT,
// TIMEOUT, or HTTP_<code> with the exact numeric code embedded.
func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeOK:
		return "OK"
	case OutcomeBlank:
		return "BLANK"
	case OutcomeFallback:
		return "FALLBACK"
	case OutcomeRedirect:
		return "REDIRECT"
	case OutcomeTimeout:
		return "TIMEOUT"
	case OutcomeHTTPError:
		return fmt.Sprintf("HTTP_%d", o.HTTPStatus)
	default:
		return "UNKNOWN"
	}
}

// IsFailure reports whether the outcome counts toward the run's failure
// rate. OK and REDIRECT are both acceptable terminal states; REDIRECT means
// the rendered artifact is hosted externally, not that rendering failed.
//
// Note: we accept a REDIRECT without verifying that the target resolves to
// valid content. A stricter design would re-probe the redirect target; the
// upstream CDN has been reliable enough that this has not been worth the
// extra request per stamp.
func (o Outcome) IsFailure() bool {
	return o.Kind != OutcomeOK && o.Kind != OutcomeRedirect
}

// Classify maps a ProbeResult to exactly one Outcome.
// The rules are evaluated in order and the first match wins:
//
//  1. 200 with a body of at least minValidSize bytes -> OK
//  2. 200 with a smaller body                        -> BLANK
//  3. 302 to a "logo" or "opengraph" target          -> FALLBACK
//  4. any other 302                                  -> REDIRECT
//  5. status 0 (transport failure)                   -> TIMEOUT
//  6. anything else                                  -> HTTP_<code>
//
// The redirect target match is a case-sensitive substring check. Rationale
// for the size threshold: very small successful-status bodies are a known
// failure mode of the renderer producing an empty canvas, and the threshold
// separates blank renders from real content without inspecting image
// structure.
func Classify(result ProbeResult, minValidSize int64) Outcome {
	switch {
	case result.HTTPStatus == http.StatusOK && result.BodySize >= minValidSize:
		return Outcome{Kind: OutcomeOK}
	case result.HTTPStatus == http.StatusOK:
		return Outcome{Kind: OutcomeBlank}
	case result.HTTPStatus == http.StatusFound:
		if strings.Contains(result.RedirectLocation, "logo") ||
			strings.Contains(result.RedirectLocation, "opengraph") {
			return Outcome{Kind: OutcomeFallback}
		}
		return Outcome{Kind: OutcomeRedirect}
	case result.HTTPStatus == 0:
		return Outcome{Kind: OutcomeTimeout}
	default:
		return Outcome{Kind: OutcomeHTTPError, HTTPStatus: result.HTTPStatus}
	}
}
