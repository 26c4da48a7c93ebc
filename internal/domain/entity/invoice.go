package entity

import "time"

// MoveType distinguishes customer invoices from credit notes.
type MoveType string

// Accounting document types handled by the bridge.
const (
	MoveInvoice    MoveType = "out_invoice"
	MoveCreditNote MoveType = "out_refund"
)

// Invoice states.
const (
	InvoiceDraft     = "draft"
	InvoicePosted    = "posted"
	InvoiceCancelled = "cancel"
)

// Payment states of an invoice.
const (
	PaymentNotPaid   = "not_paid"
	PaymentInPayment = "in_payment"
	PaymentPaid      = "paid"
)

// Invoice represents a customer invoice or credit note created from a
// sale order.
type Invoice struct {
	ID                int64
	Name              string
	MoveType          MoveType
	State             string
	PaymentState      string
	OrderID           int64 // originating sale order, 0 when unknown
	StorefrontOrderID string
	ReversedID        int64 // invoice this credit note reverses, 0 otherwise
	Date              time.Time
}

// DocumentLabel returns the human label used in RPC result messages.
func (i *Invoice) DocumentLabel() string {
	if i.MoveType == MoveCreditNote {
		return "Credit Note"
	}
	return "Invoice"
}

// Journal is the payment journal a payment is registered against.
type Journal struct {
	ID   int64
	Name string
}

// Payment is a registered payment against an invoice or credit note.
type Payment struct {
	ID         int64
	InvoiceID  int64
	JournalID  int64
	Ref        string // optional external payment reference
	RegisterID int64  // payment register entry that created this payment
}
