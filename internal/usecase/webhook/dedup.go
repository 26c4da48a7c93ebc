package webhook

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultDedupWindow is how long a pending registration suppresses
// duplicate schedule requests. The window only needs to outlive the
// events of a single transaction, so it is seconds, not minutes.
const DefaultDedupWindow = 5 * time.Second

// Registry tracks which (product set, operation) combinations already
// have a notification pending. A single business action can fire
// several lower-level stock events against overlapping product sets
// inside one transaction; without this the storefront would receive N
// redundant notifications for one logical change.
//
// Implementations are shared across concurrent requests and must be
// safe for concurrent use. A rare race costs at most one duplicate or
// merged notification, never business-data correctness.
type Registry interface {
	// IsScheduled reports whether an unexpired registration with the
	// same derived key exists.
	IsScheduled(productIDs []int64, op Operation) bool

	// MarkScheduled records a registration stamped with the current
	// time and returns the dedup key for logging.
	MarkScheduled(productIDs []int64, op Operation) string

	// Release removes a registration once the deferred send has fired,
	// re-arming the key without waiting for window expiry.
	Release(key string)
}

// DedupKey derives the registry key from the sorted product IDs and
// the operation. The derivation is deterministic so that two schedule
// requests for the same business change collapse to one entry.
//
// The key deliberately carries no time component: expiry is handled by
// the registered-at timestamp, and the entry is released when the send
// fires. Keying purely on (products, operation) means two genuinely
// distinct events against the same products inside one window merge
// into one notification; that is acceptable because payloads are
// snapshots, not deltas.
func DedupKey(productIDs []int64, op Operation) string {
	ids := make([]int64, len(productIDs))
	copy(ids, productIDs)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("webhook_%s_%s", strings.Join(parts, ","), op)
}

// MemoryRegistry is the in-process Registry used by a single-instance
// deployment. Entries older than the window are evicted lazily on
// every call, which bounds memory without a background timer.
type MemoryRegistry struct {
	mu      sync.Mutex
	entries map[string]time.Time
	window  time.Duration
	now     func() time.Time
}

// NewMemoryRegistry creates a registry with the given dedup window.
// A non-positive window falls back to DefaultDedupWindow.
func NewMemoryRegistry(window time.Duration) *MemoryRegistry {
	if window <= 0 {
		window = DefaultDedupWindow
	}
	return &MemoryRegistry{
		entries: make(map[string]time.Time),
		window:  window,
		now:     time.Now,
	}
}

// IsScheduled implements Registry.
func (r *MemoryRegistry) IsScheduled(productIDs []int64, op Operation) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()

	_, ok := r.entries[DedupKey(productIDs, op)]
	return ok
}

// MarkScheduled implements Registry.
func (r *MemoryRegistry) MarkScheduled(productIDs []int64, op Operation) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()

	key := DedupKey(productIDs, op)
	r.entries[key] = r.now()
	return key
}

// Release implements Registry.
func (r *MemoryRegistry) Release(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
}

// sweepLocked evicts entries older than the window. Callers hold r.mu.
func (r *MemoryRegistry) sweepLocked() {
	cutoff := r.now().Add(-r.window)
	for key, registeredAt := range r.entries {
		if registeredAt.Before(cutoff) {
			delete(r.entries, key)
		}
	}
}
