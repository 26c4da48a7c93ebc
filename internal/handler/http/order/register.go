// Package order exposes the order lifecycle operations as RPC-style
// HTTP endpoints for the storefront plugin. Every endpoint answers
// 200 with a uniform result body; business failures travel inside the
// result, not as HTTP errors.
package order

import (
	"net/http"

	"commerce-bridge/internal/handler/http/auth"
	orderUC "commerce-bridge/internal/usecase/order"
)

// Register registers the order lifecycle RPC handlers with the given
// mux. All routes require a service JWT.
func Register(mux *http.ServeMux, svc orderUC.Service) {
	mux.Handle("POST /orders/{id}/confirm", auth.Authz(ConfirmHandler{svc}))
	mux.Handle("POST /orders/{id}/cancel", auth.Authz(CancelHandler{svc}))
	mux.Handle("POST /orders/{id}/reset", auth.Authz(ResetHandler{svc}))
	mux.Handle("POST /orders/{id}/reset-deliveries", auth.Authz(ResetDeliveriesHandler{svc}))
	mux.Handle("POST /orders/{id}/set-to-invoice", auth.Authz(SetToInvoiceHandler{svc}))
	mux.Handle("POST /orders/{id}/invoices", auth.Authz(CreateInvoiceHandler{svc}))
	mux.Handle("POST /invoices/{id}/credit-note", auth.Authz(CreditNoteHandler{svc}))
	mux.Handle("POST /invoices/{id}/payments", auth.Authz(RegisterPaymentHandler{svc}))
}
