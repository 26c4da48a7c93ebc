package webhook

import "errors"

// Sentinel errors for webhook payload construction.
var (
	// ErrConfigMissing indicates that a required setting (API key) is
	// unset. The build aborts and nothing is sent.
	ErrConfigMissing = errors.New("webhook api key is not configured")

	// ErrNoEligibleData indicates that after filtering (missing SKU,
	// non-positive processed quantity) no products remain. The build
	// fails rather than sending an empty payload.
	ErrNoEligibleData = errors.New("no eligible products for webhook payload")
)
