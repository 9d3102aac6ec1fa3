package resilient

import (
	"net/url"
	"strings"
	"time"
)

const keySep = "|"

// CacheKey derives the cache key for a logical request. url.Values.Encode sorts
// by parameter name, so the key does not depend on insertion order.
func CacheKey(service, endpoint string, params url.Values) string {
	var b strings.Builder
	b.WriteString(service)
	b.WriteString(keySep)
	b.WriteString(endpoint)
	b.WriteString(keySep)
	b.WriteString(params.Encode())
	return b.String()
}

const (
	maxBackoffShift = 30
	maxDuration     = time.Duration(1<<63 - 1)
)

// Backoff returns the delay before the attempt following the zero-based attempt index:
// base * 2^attempt. There is no jitter.
func Backoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	if attempt < 0 {
		attempt = 0
	}
	if attempt > maxBackoffShift {
		attempt = maxBackoffShift
	}
	if base > maxDuration>>uint(attempt) {
		return maxDuration
	}
	return base << uint(attempt)
}
