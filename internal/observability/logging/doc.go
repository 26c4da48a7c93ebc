// Package logging configures structured logging for both bridge
// binaries. It wraps log/slog with the handler setup and the request-ID
// and context propagation helpers used across the HTTP and webhook
// paths.
package logging
