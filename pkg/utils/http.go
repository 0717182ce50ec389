package utils

import (
	"net/http"
	"net/url"
)

// DefaultUserAgent identifies the harvester to upstream servers.
const DefaultUserAgent = "Congressional-Meetings-Fetcher/1.0"

// IsValidURL reports whether raw is an absolute http(s) URL.
func IsValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// BuildHeaders creates HTTP headers with defaults.
func BuildHeaders(userAgent string, customHeaders map[string]string) http.Header {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	headers := http.Header{}
	headers.Set("User-Agent", userAgent)
	headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	for key, value := range customHeaders {
		headers.Set(key, value)
	}

	return headers
}

// ResolveURL resolves ref against base, returning ref unchanged on parse errors.
func ResolveURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}

	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}

	return b.ResolveReference(r).String()
}
