package repository

import (
	"context"
	"time"

	"commerce-bridge/internal/domain/entity"
)

type OrderRepository interface {
	Get(ctx context.Context, id int64) (*entity.SaleOrder, error)
	// GetByStorefrontID returns the order linked to the given
	// e-commerce platform order, or entity.ErrNotFound.
	GetByStorefrontID(ctx context.Context, storefrontID string) (*entity.SaleOrder, error)
	// ListPaidContaining returns invoiced, fully paid orders with at
	// least one line for any of the given products. Feeds the release
	// of held deliveries when a receipt restocks those products.
	ListPaidContaining(ctx context.Context, productIDs []int64) ([]*entity.SaleOrder, error)
	SetState(ctx context.Context, id int64, state entity.OrderState) error
	SetInvoiceStatus(ctx context.Context, id int64, status string) error
	SetDateOrder(ctx context.Context, id int64, t time.Time) error
}

type DeliveryRepository interface {
	Get(ctx context.Context, id int64) (*entity.Delivery, error)
	// ListByOrigin returns deliveries created from the given source
	// document (order name), optionally filtered by state.
	ListByOrigin(ctx context.Context, origin string, states []entity.DeliveryState) ([]*entity.Delivery, error)
	// ListByStorefrontOrder returns all outgoing deliveries linked to a
	// storefront order, used to decide order completion.
	ListByStorefrontOrder(ctx context.Context, storefrontID string) ([]*entity.Delivery, error)
	SetState(ctx context.Context, id int64, state entity.DeliveryState) error
	// MarkWebhookSent flips the webhook_sent flag on every delivery of
	// the storefront order so the completion notification fires once.
	MarkWebhookSent(ctx context.Context, storefrontID string) error
}

type InvoiceRepository interface {
	Get(ctx context.Context, id int64) (*entity.Invoice, error)
	ListByOrder(ctx context.Context, orderID int64) ([]*entity.Invoice, error)
	// CreateFromOrder builds a draft invoice covering the order lines
	// and returns it. The storefront order ID is copied from the order.
	CreateFromOrder(ctx context.Context, order *entity.SaleOrder) (*entity.Invoice, error)
	// CreateReversal builds a draft credit note reversing the given
	// posted invoice.
	CreateReversal(ctx context.Context, inv *entity.Invoice, reason string) (*entity.Invoice, error)
	Post(ctx context.Context, id int64) error
	SetPaymentState(ctx context.Context, id int64, state string) error
	GetJournal(ctx context.Context, id int64) (*entity.Journal, error)
	// RegisterPayment creates a payment against the invoice and returns it.
	RegisterPayment(ctx context.Context, invoiceID, journalID int64, ref string) (*entity.Payment, error)
}
