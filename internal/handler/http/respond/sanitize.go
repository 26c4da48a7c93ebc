package respond

import (
	"regexp"
)

var (
	// Storefront webhook API keys must never reach a client error body.
	apiKeyPattern = regexp.MustCompile(`(?i)(api[_-]?key[=:]\s*)\S+`)

	// Database passwords inside DSNs.
	dbPasswordPattern = regexp.MustCompile(`://([^:]+):([^@]+)@`)

	// Bearer tokens in echoed headers.
	bearerPattern = regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._-]+`)
)

// SanitizeError returns the error message with credentials masked.
// Order matters: the most specific patterns run first.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	msg = apiKeyPattern.ReplaceAllString(msg, "${1}****")
	msg = bearerPattern.ReplaceAllString(msg, "Bearer ****")
	msg = dbPasswordPattern.ReplaceAllString(msg, "://$1:****@")
	return msg
}
