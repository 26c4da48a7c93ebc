package order

import (
	"net/http"

	orderUC "commerce-bridge/internal/usecase/order"
)

type CreditNoteHandler struct{ Svc orderUC.Service }

func (h CreditNoteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}
	var req creditNoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeResult(w, "create_credit_note", h.Svc.CreateCreditNote(r.Context(), id, req.Reason))
}
