// Package canon normalizes LinkedIn profile and company URLs.
package canon

import (
	"regexp"
	"strings"
)

const defaultScheme = "https://"

var (
	schemeRe  = regexp.MustCompile(`(?i)^https?://`)
	urlLikeRe = regexp.MustCompile(`(?i)(https?://)|(^www\.)|(^|\b)linkedin\.`)
)

// Profile returns the profile URL in the form the profile API expects.
// Only the scheme is added when missing, everything else is kept as is.
func Profile(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return ""
	}

	return withScheme(u)
}

// Company returns the de-duplication key for a company URL: lower-cased scheme,
// host and path, no query or fragment, exactly one trailing slash.
func Company(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return ""
	}

	u = withScheme(u)

	idx := strings.Index(u, "://")
	scheme := strings.ToLower(u[:idx])
	rest := u[idx+3:]

	// Fragment first, then query, the same order a URL parser splits them.
	rest, _, _ = strings.Cut(rest, "#")
	rest, _, _ = strings.Cut(rest, "?")

	host, path := rest, ""
	if i := strings.Index(rest, "/"); i != -1 {
		host, path = rest[:i], rest[i:]
	}

	path = strings.TrimRight(path, "/")

	return scheme + "://" + strings.ToLower(host) + strings.ToLower(path) + "/"
}

// LooksLikeURL reports whether s resembles a URL or a bare LinkedIn address.
func LooksLikeURL(s string) bool {
	return urlLikeRe.MatchString(strings.TrimSpace(s))
}

func withScheme(u string) string {
	if schemeRe.MatchString(u) {
		return u
	}

	return defaultScheme + strings.TrimLeft(u, "/")
}
