package httputil

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

// ValidateURL checks that a URL is well-formed and uses HTTP or HTTPS.
// The CDN and metadata endpoints are still served over plain HTTP.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("malformed URL: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("only HTTP(S) URLs are allowed, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host")
	}
	return nil
}

// ValidateSlug checks that a display id taken from a URL path is safe to log
// and store. Percent-encoded and '+' slugs are kept as they appear in the URL.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("slug cannot be empty")
	}
	if len(slug) > 256 {
		return fmt.Errorf("slug too long: %d characters", len(slug))
	}
	if strings.ContainsAny(slug, "/?#&") || strings.ContainsFunc(slug, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	}) {
		return fmt.Errorf("slug contains invalid characters: %q", slug)
	}
	if strings.Contains(slug, "..") {
		return fmt.Errorf("slug contains path traversal: %q", slug)
	}
	return nil
}
