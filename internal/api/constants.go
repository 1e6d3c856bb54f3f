package api

// Cache-Control header values.
const (
	CacheOneDay  = "public, max-age=86400"
	CacheNoStore = "no-cache"
)

// requestIDHeader carries the request ID in both directions.
const requestIDHeader = "X-Request-Id"
