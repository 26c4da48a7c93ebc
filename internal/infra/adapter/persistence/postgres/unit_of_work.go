package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"commerce-bridge/internal/repository"
	"commerce-bridge/internal/resilience/circuitbreaker"
)

// UnitOfWork runs all repository writes of one business operation in a
// single transaction. Commit hooks registered during the transaction
// run in the background after COMMIT returns, never inline with the
// committing request, and are dropped on rollback.
type UnitOfWork struct {
	tx *sql.Tx

	mu    sync.Mutex
	hooks []func(ctx context.Context)
	done  bool
}

func (u *UnitOfWork) Products() repository.ProductRepository    { return NewProductRepo(u.tx) }
func (u *UnitOfWork) Orders() repository.OrderRepository        { return NewOrderRepo(u.tx) }
func (u *UnitOfWork) Deliveries() repository.DeliveryRepository { return NewDeliveryRepo(u.tx) }
func (u *UnitOfWork) Invoices() repository.InvoiceRepository    { return NewInvoiceRepo(u.tx) }
func (u *UnitOfWork) Settings() repository.SettingsRepository   { return NewSettingsRepo(u.tx) }

func (u *UnitOfWork) OnCommit(fn func(ctx context.Context)) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.hooks = append(u.hooks, fn)
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	u.mu.Lock()
	if u.done {
		u.mu.Unlock()
		return fmt.Errorf("unit of work already finished")
	}
	u.done = true
	hooks := u.hooks
	u.hooks = nil
	u.mu.Unlock()

	if err := u.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	// Hooks observe the committed state; they run on a detached context
	// so a cancelled request cannot kill post-commit work.
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("panic in commit hook", slog.Any("panic", r))
			}
		}()
		for _, fn := range hooks {
			fn(context.WithoutCancel(ctx))
		}
	}()
	return nil
}

func (u *UnitOfWork) Rollback(context.Context) error {
	u.mu.Lock()
	if u.done {
		u.mu.Unlock()
		return nil
	}
	u.done = true
	u.hooks = nil
	u.mu.Unlock()

	if err := u.tx.Rollback(); err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

// Factory opens units of work and non-transactional readers on a
// shared connection pool.
type Factory struct{ db *sql.DB }

func NewFactory(db *sql.DB) *Factory { return &Factory{db: db} }

func (f *Factory) Begin(ctx context.Context) (repository.UnitOfWork, error) {
	tx, err := f.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	return &UnitOfWork{tx: tx}, nil
}

// Reader returns the non-transactional read scope the webhook
// dispatcher uses for its fresh post-commit reads. Reads go through a
// circuit breaker: when the database dies, queued webhook builds fail
// fast instead of stacking blocked reads onto the pool.
func (f *Factory) Reader() repository.Reader {
	return &reader{q: circuitbreaker.NewDBCircuitBreaker(f.db)}
}

type reader struct{ q querier }

func (r *reader) Products() repository.ProductRepository  { return NewProductRepo(r.q) }
func (r *reader) Settings() repository.SettingsRepository { return NewSettingsRepo(r.q) }
