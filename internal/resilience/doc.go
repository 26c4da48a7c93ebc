// Package resilience provides reliability and fault tolerance patterns
// for the bridge. It includes circuit breakers and retry logic used by
// the webhook delivery path and the database health probes.
//
// The package supports:
//   - Circuit breakers around the storefront webhook endpoint
//   - Retry logic with exponential backoff and optional jitter
//
// Usage Example:
//
//	cb := circuitbreaker.NewCircuitBreaker("storefront-webhook", circuitbreaker.WebhookConfig())
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return postWebhook()
//	})
//
//	err := retry.WithBackoff(ctx, retry.WebhookConfig(), func() error {
//	    return performOperation()
//	})
package resilience
