package order

// Result is the uniform shape returned by every order lifecycle RPC.
// Callers always receive a Result; failures are reported through
// Success/Message instead of transport errors, so a storefront-side
// integration can treat every response the same way.
type Result struct {
	Success           bool    `json:"success"`
	Message           string  `json:"message"`
	LogMessage        string  `json:"log_message"`
	StorefrontOrderID string  `json:"woocommerce_order_id"`
	SaleOrderID       int64   `json:"sale_order_id,omitempty"`
	InvoiceIDs        []int64 `json:"invoice_ids,omitempty"`
	InvoiceRef        string  `json:"invoice_ref,omitempty"`
	CreditNoteID      int64   `json:"credit_note_id,omitempty"`
	PaymentRegisterID int64   `json:"payment_register_id,omitempty"`
	MoveType          string  `json:"move_type,omitempty"`
}

// failure builds an error Result carrying the same text in message and
// log_message, which is what the storefront plugin displays and what
// it writes to its own log respectively.
func failure(msg string) Result {
	return Result{Success: false, Message: msg, LogMessage: msg}
}
