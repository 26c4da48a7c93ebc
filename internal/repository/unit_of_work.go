package repository

import "context"

// UnitOfWork is one atomic sequence of data changes. Repositories
// obtained from it share a single transaction; queued commit hooks run
// only after Commit succeeds and never when the work is rolled back.
type UnitOfWork interface {
	Products() ProductRepository
	Orders() OrderRepository
	Deliveries() DeliveryRepository
	Invoices() InvoiceRepository
	Settings() SettingsRepository

	// OnCommit queues fn to run after a successful Commit. Hooks must
	// not run inline with the committing request; implementations hand
	// them to a background executor. A rolled-back unit of work drops
	// its hooks without running them.
	OnCommit(fn func(ctx context.Context))

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UnitOfWorkFactory opens new units of work. The webhook dispatcher
// uses it to re-read entities in a fresh context after the triggering
// transaction has ended.
type UnitOfWorkFactory interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}

// Reader provides non-transactional read access for post-commit work
// that only needs a consistent snapshot, not a transaction.
type Reader interface {
	Products() ProductRepository
	Settings() SettingsRepository
}
