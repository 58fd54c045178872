package model

// ProbeResult is the normalized outcome of a single preview request.
// Every failure mode is encoded into the fields rather than surfaced as an
// error: probing a stamp always yields exactly one ProbeResult.
//
// Design decision: We fold transport-level failures (DNS, connection reset,
// timeout) into HTTPStatus == 0 instead of carrying a separate error field
// because:
//  1. Classification becomes a total function over one value
//  2. The run can never be interrupted by a single slow or broken stamp
//  3. It matches the 0-means-no-response convention of HTTP probing tools
type ProbeResult struct {
	// HTTPStatus is the response status code, or 0 for any transport
	// failure (name resolution, connection, timeout).
	HTTPStatus int `json:"http_status"`

	// BodySize is the response body length in bytes. Only populated for
	// 2xx responses; 0 otherwise.
	BodySize int64 `json:"body_size"`

	// ContentType is the Content-Type response header. Empty when absent
	// or when the response was not a 2xx.
	ContentType string `json:"content_type"`

	// CacheHeader is the X-Cache response header (HIT/MISS from the
	// rendering pipeline's cache). Captured on 2xx and redirect responses.
	CacheHeader string `json:"cache"`

	// RecursiveHeader is the X-Recursive response header, "true" when the
	// stamp pulls in other on-chain resources during rendering.
	RecursiveHeader string `json:"recursive"`

	// EngineHeader is the X-Rendering-Engine response header naming the
	// engine that produced the preview.
	EngineHeader string `json:"engine"`

	// MethodHeader is the X-Conversion-Method response header.
	MethodHeader string `json:"method"`

	// RedirectLocation is the Location header target of a redirect
	// response. Empty for non-redirect responses.
	RedirectLocation string `json:"location"`
}
