package http

import (
	"net/http"
	"strings"
)

// Unknown is substituted when no identifying header is present.
const Unknown = "unknown"

// clientIPHeaders are consulted in order; the first non-empty value wins.
var clientIPHeaders = []string{
	"X-Real-IP",
	"CF-Connecting-IP",
	"X-Client-IP",
}

// ResolveIdentity derives a best-effort caller identity from request headers.
// X-Forwarded-For contributes only its first (client) entry. Neither value is
// ever empty. Header values are caller-controlled and are not validated.
func ResolveIdentity(h http.Header) (ip, userAgent string) {
	return ClientIP(h), UserAgent(h)
}

// ClientIP returns the caller address following the proxy header precedence.
func ClientIP(h http.Header) string {
	if xff := h.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	for _, header := range clientIPHeaders {
		if ip := strings.TrimSpace(h.Get(header)); ip != "" {
			return ip
		}
	}

	return Unknown
}

// UserAgent returns the User-Agent header or "unknown".
func UserAgent(h http.Header) string {
	if ua := strings.TrimSpace(h.Get("User-Agent")); ua != "" {
		return ua
	}
	return Unknown
}

// DescribeUserAgent buckets a user agent into a device class and browser family
// for the admin attempt listing.
func DescribeUserAgent(ua string) (device, browser string) {
	lower := strings.ToLower(ua)

	switch {
	case strings.Contains(lower, "ipad") || strings.Contains(lower, "tablet"):
		device = "Tablet"
	case strings.Contains(lower, "mobile") || strings.Contains(lower, "iphone") || strings.Contains(lower, "android"):
		device = "Mobile"
	default:
		device = "Desktop"
	}

	switch {
	case strings.Contains(lower, "edg/") || strings.Contains(lower, "edge"):
		browser = "Edge"
	case strings.Contains(lower, "firefox") || strings.Contains(lower, "fxios"):
		browser = "Firefox"
	case strings.Contains(lower, "chrome") || strings.Contains(lower, "crios"):
		browser = "Chrome"
	case strings.Contains(lower, "safari"):
		browser = "Safari"
	default:
		browser = "Unknown"
	}

	return device, browser
}
