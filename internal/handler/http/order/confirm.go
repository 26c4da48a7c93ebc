package order

import (
	"net/http"

	orderUC "commerce-bridge/internal/usecase/order"
)

type ConfirmHandler struct{ Svc orderUC.Service }

func (h ConfirmHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}
	var req confirmRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeResult(w, "confirm", h.Svc.Confirm(r.Context(), id, req.OrderDate))
}
