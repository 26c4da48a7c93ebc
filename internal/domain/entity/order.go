package entity

import "time"

// OrderState is the lifecycle state of a sale order.
type OrderState string

// Sale order lifecycle states. The names follow the ERP's state
// machine so that values round-trip unchanged through the database.
const (
	OrderDraft     OrderState = "draft"
	OrderSent      OrderState = "sent"
	OrderConfirmed OrderState = "sale"
	OrderDone      OrderState = "done"
	OrderCancelled OrderState = "cancel"
)

// InvoiceStatus values for a sale order.
const (
	InvoiceStatusNo        = "no"
	InvoiceStatusToInvoice = "to invoice"
	InvoiceStatusInvoiced  = "invoiced"
)

// SaleOrder represents a sales order placed on the storefront and
// managed by the ERP.
type SaleOrder struct {
	ID                int64
	Name              string
	StorefrontOrderID string // order identifier on the e-commerce platform
	State             OrderState
	InvoiceStatus     string
	DateOrder         time.Time
	Lines             []OrderLine
}

// OrderLine is a single product line of a sale order.
type OrderLine struct {
	ID        int64
	ProductID int64
	Quantity  float64
}

// IsConfirmed reports whether the order has been confirmed (stock
// reserved, ready to deliver/invoice).
func (o *SaleOrder) IsConfirmed() bool {
	return o.State == OrderConfirmed || o.State == OrderDone
}

// Cancellable reports whether the order is in a state that permits
// cancellation.
func (o *SaleOrder) Cancellable() bool {
	switch o.State {
	case OrderDraft, OrderSent, OrderConfirmed:
		return true
	}
	return false
}

// ProductIDs returns the distinct product identifiers referenced by
// the order lines, in line order.
func (o *SaleOrder) ProductIDs() []int64 {
	seen := make(map[int64]bool, len(o.Lines))
	ids := make([]int64, 0, len(o.Lines))
	for _, line := range o.Lines {
		if seen[line.ProductID] {
			continue
		}
		seen[line.ProductID] = true
		ids = append(ids, line.ProductID)
	}
	return ids
}
