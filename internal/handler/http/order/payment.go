package order

import (
	"errors"
	"net/http"

	"commerce-bridge/internal/handler/http/respond"
	orderUC "commerce-bridge/internal/usecase/order"
)

type RegisterPaymentHandler struct{ Svc orderUC.Service }

func (h RegisterPaymentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}
	var req paymentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.JournalID <= 0 {
		respond.SafeError(w, http.StatusBadRequest, errors.New("journal_id required"))
		return
	}
	writeResult(w, "register_payment", h.Svc.RegisterPayment(r.Context(), id, req.JournalID, req.PaymentRef))
}
