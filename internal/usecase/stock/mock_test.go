package stock

import (
	"context"
	"sync"
	"time"

	"commerce-bridge/internal/domain/entity"
	"commerce-bridge/internal/repository"
)

type store struct {
	mu         sync.Mutex
	products   map[int64]*entity.Product
	orders     map[int64]*entity.SaleOrder
	deliveries map[int64]*entity.Delivery
	invoices   map[int64]*entity.Invoice
	settings   map[string]string
}

func newStore() *store {
	return &store{
		products:   make(map[int64]*entity.Product),
		orders:     make(map[int64]*entity.SaleOrder),
		deliveries: make(map[int64]*entity.Delivery),
		invoices:   make(map[int64]*entity.Invoice),
		settings:   make(map[string]string),
	}
}

type fakeProducts struct{ s *store }

func (f *fakeProducts) Get(_ context.Context, id int64) (*entity.Product, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p, ok := f.s.products[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) GetMany(_ context.Context, ids []int64) ([]*entity.Product, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := make([]*entity.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := f.s.products[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeProducts) ListStorable(_ context.Context) ([]*entity.Product, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*entity.Product
	for _, p := range f.s.products {
		if p.Storable {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeProducts) UpdateQuantities(_ context.Context, p *entity.Product) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	cp := *p
	f.s.products[p.ID] = &cp
	return nil
}

type fakeDeliveries struct{ s *store }

func (f *fakeDeliveries) Get(_ context.Context, id int64) (*entity.Delivery, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	d, ok := f.s.deliveries[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDeliveries) ListByOrigin(_ context.Context, origin string, states []entity.DeliveryState) ([]*entity.Delivery, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*entity.Delivery
	for _, d := range f.s.deliveries {
		if d.Origin != origin {
			continue
		}
		if len(states) > 0 {
			match := false
			for _, st := range states {
				if d.State == st {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeDeliveries) ListByStorefrontOrder(_ context.Context, storefrontID string) ([]*entity.Delivery, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*entity.Delivery
	for _, d := range f.s.deliveries {
		if d.StorefrontOrderID == storefrontID && d.Type == entity.DeliveryOutgoing {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeDeliveries) SetState(_ context.Context, id int64, state entity.DeliveryState) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	d, ok := f.s.deliveries[id]
	if !ok {
		return entity.ErrNotFound
	}
	d.State = state
	return nil
}

func (f *fakeDeliveries) MarkWebhookSent(_ context.Context, storefrontID string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, d := range f.s.deliveries {
		if d.StorefrontOrderID == storefrontID {
			d.WebhookSent = true
		}
	}
	return nil
}

type fakeSettings struct{ s *store }

func (f *fakeSettings) Get(_ context.Context, key, fallback string) (string, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if v, ok := f.s.settings[key]; ok {
		return v, nil
	}
	return fallback, nil
}

func (f *fakeSettings) Set(_ context.Context, key, value string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.settings[key] = value
	return nil
}

type fakeOrders struct{ s *store }

func (f *fakeOrders) Get(_ context.Context, id int64) (*entity.SaleOrder, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	o, ok := f.s.orders[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) GetByStorefrontID(_ context.Context, storefrontID string) (*entity.SaleOrder, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, o := range f.s.orders {
		if o.StorefrontOrderID == storefrontID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (f *fakeOrders) ListPaidContaining(_ context.Context, productIDs []int64) ([]*entity.SaleOrder, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*entity.SaleOrder
	for _, o := range f.s.orders {
		if o.InvoiceStatus != entity.InvoiceStatusInvoiced {
			continue
		}
		if !linesContainAny(o, productIDs) {
			continue
		}
		invoiced, paid := false, true
		for _, inv := range f.s.invoices {
			if inv.OrderID != o.ID {
				continue
			}
			invoiced = true
			if inv.PaymentState != entity.PaymentPaid {
				paid = false
			}
		}
		if !invoiced || !paid {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func linesContainAny(o *entity.SaleOrder, productIDs []int64) bool {
	for _, l := range o.Lines {
		for _, id := range productIDs {
			if l.ProductID == id {
				return true
			}
		}
	}
	return false
}

func (f *fakeOrders) SetState(_ context.Context, id int64, state entity.OrderState) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	o, ok := f.s.orders[id]
	if !ok {
		return entity.ErrNotFound
	}
	o.State = state
	return nil
}

func (f *fakeOrders) SetInvoiceStatus(_ context.Context, id int64, status string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	o, ok := f.s.orders[id]
	if !ok {
		return entity.ErrNotFound
	}
	o.InvoiceStatus = status
	return nil
}

func (f *fakeOrders) SetDateOrder(_ context.Context, id int64, t time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	o, ok := f.s.orders[id]
	if !ok {
		return entity.ErrNotFound
	}
	o.DateOrder = t
	return nil
}

type unsupportedInvoices struct{}

func (unsupportedInvoices) Get(context.Context, int64) (*entity.Invoice, error) {
	return nil, entity.ErrNotFound
}
func (unsupportedInvoices) ListByOrder(context.Context, int64) ([]*entity.Invoice, error) {
	return nil, nil
}
func (unsupportedInvoices) CreateFromOrder(context.Context, *entity.SaleOrder) (*entity.Invoice, error) {
	return nil, entity.ErrNotFound
}
func (unsupportedInvoices) CreateReversal(context.Context, *entity.Invoice, string) (*entity.Invoice, error) {
	return nil, entity.ErrNotFound
}
func (unsupportedInvoices) Post(context.Context, int64) error { return entity.ErrNotFound }
func (unsupportedInvoices) SetPaymentState(context.Context, int64, string) error {
	return entity.ErrNotFound
}
func (unsupportedInvoices) GetJournal(context.Context, int64) (*entity.Journal, error) {
	return nil, entity.ErrNotFound
}
func (unsupportedInvoices) RegisterPayment(context.Context, int64, int64, string) (*entity.Payment, error) {
	return nil, entity.ErrNotFound
}

type fakeUOW struct {
	s *store

	mu        sync.Mutex
	hooks     []func(context.Context)
	committed bool
}

func (u *fakeUOW) Products() repository.ProductRepository    { return &fakeProducts{s: u.s} }
func (u *fakeUOW) Orders() repository.OrderRepository        { return &fakeOrders{s: u.s} }
func (u *fakeUOW) Deliveries() repository.DeliveryRepository { return &fakeDeliveries{s: u.s} }
func (u *fakeUOW) Invoices() repository.InvoiceRepository    { return unsupportedInvoices{} }
func (u *fakeUOW) Settings() repository.SettingsRepository   { return &fakeSettings{s: u.s} }

func (u *fakeUOW) OnCommit(fn func(ctx context.Context)) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.hooks = append(u.hooks, fn)
}

func (u *fakeUOW) Commit(ctx context.Context) error {
	u.mu.Lock()
	u.committed = true
	hooks := u.hooks
	u.hooks = nil
	u.mu.Unlock()
	for _, fn := range hooks {
		fn(ctx)
	}
	return nil
}

func (u *fakeUOW) Rollback(context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.committed {
		u.hooks = nil
	}
	return nil
}

type fakeUOWFactory struct{ s *store }

func (f *fakeUOWFactory) Begin(context.Context) (repository.UnitOfWork, error) {
	return &fakeUOW{s: f.s}, nil
}

type fakeReader struct{ s *store }

func (f *fakeReader) Products() repository.ProductRepository  { return &fakeProducts{s: f.s} }
func (f *fakeReader) Settings() repository.SettingsRepository { return &fakeSettings{s: f.s} }

type recordingSender struct {
	mu      sync.Mutex
	succeed bool
	calls   []sentCall
}

type sentCall struct {
	url  string
	body any
}

func (r *recordingSender) Send(_ context.Context, url string, body any) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, sentCall{url: url, body: body})
	return r.succeed
}

func (r *recordingSender) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *recordingSender) call(i int) sentCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[i]
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
