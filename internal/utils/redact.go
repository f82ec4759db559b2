package utils

import (
	"regexp"
	"strings"
)

var (
	// Matches "Bearer <token>" as it may appear in transport errors.
	bearerTokenRe = regexp.MustCompile(`(?i)\bBearer\s+[^\s"']+`)

	apiKeyKVRe = regexp.MustCompile(`(?i)\b(api[_-]?key|key|token)\b\s*[:=]\s*[^\s"'&]+`)
)

// RedactSecrets removes obvious secret-bearing substrings from error strings
// before they end up in logs or output files.
func RedactSecrets(s string) string {
	if s == "" {
		return ""
	}
	out := bearerTokenRe.ReplaceAllString(s, "Bearer <redacted>")
	out = apiKeyKVRe.ReplaceAllString(out, "$1=<redacted>")
	return strings.TrimSpace(out)
}
