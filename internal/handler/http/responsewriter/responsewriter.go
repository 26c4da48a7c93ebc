// Package responsewriter wraps http.ResponseWriter so the bridge's
// logging, SLO and tracing middlewares can read the status code and
// body size after a handler ran.
package responsewriter

import "net/http"

// ResponseWriter records the status code and byte count of a response
// as it is written.
type ResponseWriter struct {
	http.ResponseWriter
	status     int
	bytes      int
	headerSent bool
}

// Wrap returns a recording wrapper around w. The status defaults to
// 200 for handlers that never call WriteHeader.
func Wrap(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{ResponseWriter: w, status: http.StatusOK}
}

// WriteHeader records the status code; duplicate calls are dropped.
func (w *ResponseWriter) WriteHeader(statusCode int) {
	if w.headerSent {
		return
	}
	w.status = statusCode
	w.headerSent = true
	w.ResponseWriter.WriteHeader(statusCode)
}

// Write sends body bytes, implying a 200 when no header went out yet.
func (w *ResponseWriter) Write(b []byte) (int, error) {
	if !w.headerSent {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// StatusCode returns the status the handler sent, or 200.
func (w *ResponseWriter) StatusCode() int { return w.status }

// BytesWritten returns the response body size so far.
func (w *ResponseWriter) BytesWritten() int { return w.bytes }

// Unwrap exposes the underlying writer for http.ResponseController.
func (w *ResponseWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
