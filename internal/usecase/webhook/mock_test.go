package webhook

import (
	"context"
	"sync"
	"time"

	"commerce-bridge/internal/domain/entity"
	"commerce-bridge/internal/repository"
)

// fakeSettings is an in-memory SettingsRepository.
type fakeSettings struct {
	mu     sync.Mutex
	values map[string]string
}

func newFakeSettings(values map[string]string) *fakeSettings {
	if values == nil {
		values = map[string]string{}
	}
	return &fakeSettings{values: values}
}

func (s *fakeSettings) Get(_ context.Context, key, fallback string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.values[key]; ok {
		return v, nil
	}
	return fallback, nil
}

func (s *fakeSettings) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// fakeProducts is an in-memory ProductRepository.
type fakeProducts struct {
	byID map[int64]*entity.Product
}

func newFakeProducts(products ...*entity.Product) *fakeProducts {
	byID := make(map[int64]*entity.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &fakeProducts{byID: byID}
}

func (f *fakeProducts) Get(_ context.Context, id int64) (*entity.Product, error) {
	if p, ok := f.byID[id]; ok {
		return p, nil
	}
	return nil, entity.ErrNotFound
}

func (f *fakeProducts) GetMany(_ context.Context, ids []int64) ([]*entity.Product, error) {
	out := make([]*entity.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := f.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProducts) ListStorable(_ context.Context) ([]*entity.Product, error) {
	out := make([]*entity.Product, 0, len(f.byID))
	for _, p := range f.byID {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProducts) UpdateQuantities(_ context.Context, _ *entity.Product) error {
	return nil
}

// fakeReader bundles products and settings for post-commit reads.
type fakeReader struct {
	products *fakeProducts
	settings *fakeSettings
}

func (r *fakeReader) Products() repository.ProductRepository  { return r.products }
func (r *fakeReader) Settings() repository.SettingsRepository { return r.settings }

// fakeUnitOfWork collects commit hooks and runs them on Commit, or
// drops them on Rollback, mirroring the postgres implementation.
type fakeUnitOfWork struct {
	mu    sync.Mutex
	hooks []func(ctx context.Context)
}

func (u *fakeUnitOfWork) Products() repository.ProductRepository    { return nil }
func (u *fakeUnitOfWork) Orders() repository.OrderRepository        { return nil }
func (u *fakeUnitOfWork) Deliveries() repository.DeliveryRepository { return nil }
func (u *fakeUnitOfWork) Invoices() repository.InvoiceRepository    { return nil }
func (u *fakeUnitOfWork) Settings() repository.SettingsRepository   { return nil }

func (u *fakeUnitOfWork) OnCommit(fn func(ctx context.Context)) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.hooks = append(u.hooks, fn)
}

func (u *fakeUnitOfWork) Commit(ctx context.Context) error {
	u.mu.Lock()
	hooks := u.hooks
	u.hooks = nil
	u.mu.Unlock()
	for _, fn := range hooks {
		fn(ctx)
	}
	return nil
}

func (u *fakeUnitOfWork) Rollback(context.Context) error {
	u.mu.Lock()
	u.hooks = nil
	u.mu.Unlock()
	return nil
}

// recordingSender records every Send call.
type recordingSender struct {
	mu      sync.Mutex
	calls   []sentCall
	succeed bool
}

type sentCall struct {
	url  string
	body any
}

func (s *recordingSender) Send(_ context.Context, url string, body any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, sentCall{url: url, body: body})
	return s.succeed
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *recordingSender) call(i int) sentCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[i]
}

func waitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
