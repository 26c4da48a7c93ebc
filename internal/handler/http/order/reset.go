package order

import (
	"net/http"

	orderUC "commerce-bridge/internal/usecase/order"
)

type ResetHandler struct{ Svc orderUC.Service }

func (h ResetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}
	writeResult(w, "reset", h.Svc.Reset(r.Context(), id))
}

type ResetDeliveriesHandler struct{ Svc orderUC.Service }

func (h ResetDeliveriesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}
	writeResult(w, "reset_deliveries", h.Svc.ResetDeliveriesToWaiting(r.Context(), id))
}
