package pathutil

import (
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"order confirm", "/orders/123/confirm", "/orders/:id/confirm"},
		{"order cancel numeric", "/orders/456/cancel", "/orders/:id/cancel"},
		{"order cancel storefront id", "/orders/wc-456/cancel", "/orders/:id/cancel"},
		{"order reset", "/orders/7/reset", "/orders/:id/reset"},
		{"order invoices", "/orders/7/invoices", "/orders/:id/invoices"},
		{"order set to invoice", "/orders/7/set-to-invoice", "/orders/:id/set-to-invoice"},
		{"order lookup", "/orders/7", "/orders/:id"},
		{"credit note", "/invoices/200/credit-note", "/invoices/:id/credit-note"},
		{"payments", "/invoices/200/payments", "/invoices/:id/payments"},
		{"invoice lookup", "/invoices/200", "/invoices/:id"},
		{"health untouched", "/health", "/health"},
		{"metrics untouched", "/metrics", "/metrics"},
		{"auth token untouched", "/auth/token", "/auth/token"},
		{"query stripped", "/orders/123/confirm?force=1", "/orders/:id/confirm"},
		{"trailing slash stripped", "/invoices/200/payments/", "/invoices/:id/payments"},
		{"unknown passthrough", "/orders/123/unknown", "/orders/123/unknown"},
		{"root untouched", "/", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePath(tt.path); got != tt.want {
				t.Fatalf("NormalizePath(%q)=%q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
