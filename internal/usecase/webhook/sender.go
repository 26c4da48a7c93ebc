package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"commerce-bridge/internal/resilience/circuitbreaker"
	"commerce-bridge/internal/resilience/retry"
)

// senderTimeout is the per-request timeout for outbound webhook calls.
const senderTimeout = 10 * time.Second

// Sender delivers a notification body to a webhook endpoint.
//
// Send returns true on a 2xx response and false once all retry
// attempts are exhausted. It never returns an error and never panics:
// dispatch failures are contained here and only ever logged. Send runs
// on the dispatcher's background pool, so its retry sleeps block no
// request-facing goroutine.
type Sender interface {
	Send(ctx context.Context, url string, body any) bool
}

// HTTPSender is the production Sender: HTTP POST with JSON body,
// exponential-backoff retry, an outbound rate limiter, and a circuit
// breaker guarding the storefront endpoint.
type HTTPSender struct {
	client   *http.Client
	retryCfg retry.Config
	breaker  *circuitbreaker.CircuitBreaker
	limiter  *rate.Limiter
}

// NewHTTPSender creates a sender with the webhook retry profile
// (3 attempts, 1s/2s backoff), a 10-second request timeout and an
// outbound limit of 5 requests per second with a burst of 10.
func NewHTTPSender() *HTTPSender {
	return &HTTPSender{
		client:   &http.Client{Timeout: senderTimeout},
		retryCfg: retry.WebhookConfig(),
		breaker:  circuitbreaker.New(circuitbreaker.WebhookConfig()),
		limiter:  rate.NewLimiter(5, 10),
	}
}

// NewHTTPSenderWithConfig creates a sender with a custom retry
// profile. Tests use this to shrink backoff delays.
func NewHTTPSenderWithConfig(cfg retry.Config, client *http.Client) *HTTPSender {
	if client == nil {
		client = &http.Client{Timeout: senderTimeout}
	}
	return &HTTPSender{
		client:   client,
		retryCfg: cfg,
		breaker:  circuitbreaker.New(circuitbreaker.WebhookConfig()),
		limiter:  rate.NewLimiter(5, 10),
	}
}

// Send implements Sender.
func (s *HTTPSender) Send(ctx context.Context, url string, body any) bool {
	data, err := json.Marshal(body)
	if err != nil {
		slog.Error("marshal webhook payload",
			slog.String("url", url),
			slog.Any("error", err))
		return false
	}

	if err := s.limiter.Wait(ctx); err != nil {
		slog.Error("webhook rate limiter wait",
			slog.String("url", url),
			slog.Any("error", err))
		return false
	}

	attempts := 0
	err = retry.WithBackoff(ctx, s.retryCfg, func() error {
		attempts++
		_, execErr := s.breaker.Execute(func() (interface{}, error) {
			return nil, s.post(ctx, url, data)
		})
		return execErr
	})
	if err != nil {
		slog.Error("webhook delivery failed after all attempts",
			slog.String("url", url),
			slog.Int("attempts", attempts),
			slog.Int("max_attempts", s.retryCfg.MaxAttempts),
			slog.Any("error", err))
		return false
	}

	slog.Info("webhook delivered",
		slog.String("url", url),
		slog.Int("attempt", attempts))
	return true
}

// post performs one delivery attempt, classifying non-2xx responses
// into retry.HTTPError so the backoff engine retries them.
func (s *HTTPSender) post(ctx context.Context, url string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute webhook request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return &retry.HTTPError{
		StatusCode: resp.StatusCode,
		Message:    string(respBody),
	}
}
