package tracing

// Span attribute keys for API calls.
const (
	AttrHTTPMethod    = "http.method"
	AttrHTTPPath      = "http.path"
	AttrHTTPStatus    = "http.status_code"
	AttrRequestID     = "http.request_id"
	AttrResource      = "resource.name"
	AttrRefKind       = "refcache.kind"
	AttrErrorType     = "error.type"
	AttrErrorMessage  = "error.message"
	SpanPrefixHTTP    = "http."
	SpanPrefixRefLoad = "refcache.load."
)
