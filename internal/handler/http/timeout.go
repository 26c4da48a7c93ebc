package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"commerce-bridge/internal/handler/http/respond"
)

// Timeout caps how long a bridge RPC may run. When the budget expires
// the client gets a 504 and the request context is cancelled so the
// usecase layer stops its unit of work. A shared mutex arbitrates
// between the handler goroutine and the timeout path so exactly one of
// them writes the response.
func Timeout(budget time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), budget)
			defer cancel()
			r = r.WithContext(ctx)

			done := make(chan struct{})
			var mu sync.Mutex
			expired := false

			dw := &deadlineWriter{ResponseWriter: w, mu: &mu, expired: &expired}

			go func() {
				next.ServeHTTP(dw, r)
				close(done)
			}()

			select {
			case <-done:
			case <-ctx.Done():
				mu.Lock()
				expired = true
				if !dw.wrote {
					respond.Error(w, http.StatusGatewayTimeout, errors.New("request timeout"))
				}
				mu.Unlock()
			}
		})
	}
}

// deadlineWriter drops handler writes that land after the timeout
// response has gone out.
type deadlineWriter struct {
	http.ResponseWriter
	mu      *sync.Mutex
	expired *bool
	wrote   bool
}

func (w *deadlineWriter) WriteHeader(statusCode int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if *w.expired || w.wrote {
		return
	}
	w.wrote = true
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *deadlineWriter) Write(data []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if *w.expired {
		return 0, http.ErrHandlerTimeout
	}
	if !w.wrote {
		w.wrote = true
		w.ResponseWriter.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(data)
}
