// Package stock exposes the warehouse trigger points over HTTP so
// internal tooling can drive deliveries, adjustments and manufacturing
// completions through the bridge. Unlike the order RPC, these endpoints
// report failures with HTTP status codes: the callers are scripts, not
// the storefront plugin.
package stock

import (
	"net/http"

	"commerce-bridge/internal/handler/http/auth"
	stockUC "commerce-bridge/internal/usecase/stock"
)

// Register registers the stock trigger handlers with the given mux.
// All routes require a service JWT.
func Register(mux *http.ServeMux, svc stockUC.Service) {
	mux.Handle("POST /deliveries/{id}/validate", auth.Authz(DeliveryHandler{svc, actionValidate}))
	mux.Handle("POST /deliveries/{id}/reserve", auth.Authz(DeliveryHandler{svc, actionReserve}))
	mux.Handle("POST /deliveries/{id}/cancel", auth.Authz(DeliveryHandler{svc, actionCancel}))
	mux.Handle("POST /stock/adjustments", auth.Authz(AdjustmentHandler{svc}))
	mux.Handle("POST /stock/builds", auth.Authz(BuildHandler{Svc: svc}))
	mux.Handle("POST /stock/unbuilds", auth.Authz(BuildHandler{Svc: svc, Unbuild: true}))
	mux.Handle("POST /stock/sales", auth.Authz(DirectSaleHandler{svc}))
}
