package stock

import (
	"encoding/json"
	"errors"
	"net/http"

	"commerce-bridge/internal/domain/entity"
	"commerce-bridge/internal/handler/http/pathutil"
	"commerce-bridge/internal/handler/http/respond"
	stockUC "commerce-bridge/internal/usecase/stock"
)

type deliveryAction string

const (
	actionValidate deliveryAction = "validate"
	actionReserve  deliveryAction = "reserve"
	actionCancel   deliveryAction = "cancel"
)

type adjustmentRequest struct {
	ProductID int64   `json:"product_id"`
	NewOnHand float64 `json:"new_on_hand"`
}

type buildRequest struct {
	ProductID int64   `json:"product_id"`
	Qty       float64 `json:"qty"`
}

type directSaleRequest struct {
	// Quantities maps product ID to quantity sold.
	Quantities map[int64]float64 `json:"quantities"`
}

// writeOutcome maps service errors onto HTTP statuses: business rule
// violations are 409, missing entities 404, everything else 500.
func writeOutcome(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case errors.Is(err, entity.ErrNotFound):
		respond.SafeError(w, http.StatusNotFound, err)
	case errors.Is(err, entity.ErrBusinessRule):
		respond.SafeError(w, http.StatusConflict, err)
	default:
		respond.SafeError(w, http.StatusInternalServerError, err)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return false
	}
	return true
}

// DeliveryHandler drives a single delivery through one of its state
// transitions.
type DeliveryHandler struct {
	Svc    stockUC.Service
	Action deliveryAction
}

func (h DeliveryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	switch h.Action {
	case actionValidate:
		writeOutcome(w, h.Svc.ValidateDelivery(r.Context(), id))
	case actionReserve:
		writeOutcome(w, h.Svc.ReserveDelivery(r.Context(), id))
	case actionCancel:
		writeOutcome(w, h.Svc.CancelDelivery(r.Context(), id))
	}
}

// AdjustmentHandler applies a manual inventory quantity edit.
type AdjustmentHandler struct{ Svc stockUC.Service }

func (h AdjustmentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req adjustmentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ProductID <= 0 {
		respond.SafeError(w, http.StatusBadRequest, errors.New("product_id is required"))
		return
	}
	writeOutcome(w, h.Svc.AdjustQuantity(r.Context(), req.ProductID, req.NewOnHand))
}

// BuildHandler records a manufacturing order completion. With Unbuild
// set it records the reverse operation.
type BuildHandler struct {
	Svc     stockUC.Service
	Unbuild bool
}

func (h BuildHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req buildRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ProductID <= 0 || req.Qty <= 0 {
		respond.SafeError(w, http.StatusBadRequest, errors.New("product_id and qty are required"))
		return
	}
	if h.Unbuild {
		writeOutcome(w, h.Svc.CompleteUnbuild(r.Context(), req.ProductID, req.Qty))
		return
	}
	writeOutcome(w, h.Svc.CompleteBuild(r.Context(), req.ProductID, req.Qty))
}

// DirectSaleHandler records an over-the-counter sale.
type DirectSaleHandler struct{ Svc stockUC.Service }

func (h DirectSaleHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req directSaleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Quantities) == 0 {
		respond.SafeError(w, http.StatusBadRequest, errors.New("quantities are required"))
		return
	}
	writeOutcome(w, h.Svc.RegisterDirectSale(r.Context(), req.Quantities))
}
