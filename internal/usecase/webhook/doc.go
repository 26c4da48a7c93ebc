// Package webhook implements the outbound notification core of the
// bridge: deduplicating bursts of stock-affecting events inside one
// unit of work, deferring delivery until after commit, and retrying
// failed sends with exponential backoff. Delivery failures are logged
// and never propagate into the business operation that triggered them.
package webhook
