package order

import (
	"net/http"

	orderUC "commerce-bridge/internal/usecase/order"
)

type SetToInvoiceHandler struct{ Svc orderUC.Service }

func (h SetToInvoiceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}
	writeResult(w, "set_to_invoice", h.Svc.SetToInvoice(r.Context(), id))
}

type CreateInvoiceHandler struct{ Svc orderUC.Service }

func (h CreateInvoiceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}
	writeResult(w, "create_invoice", h.Svc.CreateInvoice(r.Context(), id))
}
