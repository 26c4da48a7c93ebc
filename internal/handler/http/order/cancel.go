package order

import (
	"errors"
	"net/http"

	"commerce-bridge/internal/handler/http/respond"
	orderUC "commerce-bridge/internal/usecase/order"
)

// CancelHandler cancels the order linked to a storefront order. The
// {id} segment is the storefront's own order ID, which is the only
// identifier the plugin knows at cancellation time.
type CancelHandler struct{ Svc orderUC.Service }

func (h CancelHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	storefrontID := r.PathValue("id")
	if storefrontID == "" {
		respond.SafeError(w, http.StatusBadRequest, errors.New("order id required"))
		return
	}
	writeResult(w, "cancel", h.Svc.Cancel(r.Context(), storefrontID))
}
