package http

import (
	"errors"
	"net/http"

	"commerce-bridge/internal/handler/http/respond"
)

// Request input ceilings. The bridge's RPC surface carries short
// ID-bearing paths and a service JWT well under a kilobyte; anything
// near these limits is not a storefront client.
const (
	maxAuthHeaderBytes = 8 << 10
	maxPathBytes       = 2 << 10
)

// InputValidation rejects requests with an oversized authorization
// header or path before any routing happens. The body ceiling is
// enforced separately by LimitRequestBody, which knows the configured
// value.
func InputValidation() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.Header.Get("Authorization")) > maxAuthHeaderBytes {
				respond.Error(w, http.StatusBadRequest, errors.New("authorization header too large"))
				return
			}
			if len(r.URL.Path) > maxPathBytes {
				respond.Error(w, http.StatusRequestURITooLong, errors.New("request path too long"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
