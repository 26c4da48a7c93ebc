package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern pairs a route regex with its normalized template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

// pathPatterns lists the dynamic routes of the bridge API, most
// specific first. Pre-compiled at init.
var pathPatterns = []*PathPattern{
	{Pattern: regexp.MustCompile(`^/orders/\d+/confirm$`), Template: "/orders/:id/confirm"},
	// Cancel is addressed by storefront order ID, which is not numeric.
	{Pattern: regexp.MustCompile(`^/orders/[^/]+/cancel$`), Template: "/orders/:id/cancel"},
	{Pattern: regexp.MustCompile(`^/orders/\d+/reset$`), Template: "/orders/:id/reset"},
	{Pattern: regexp.MustCompile(`^/orders/\d+/reset-deliveries$`), Template: "/orders/:id/reset-deliveries"},
	{Pattern: regexp.MustCompile(`^/orders/\d+/invoices$`), Template: "/orders/:id/invoices"},
	{Pattern: regexp.MustCompile(`^/orders/\d+/set-to-invoice$`), Template: "/orders/:id/set-to-invoice"},
	{Pattern: regexp.MustCompile(`^/orders/\d+$`), Template: "/orders/:id"},
	{Pattern: regexp.MustCompile(`^/invoices/\d+/credit-note$`), Template: "/invoices/:id/credit-note"},
	{Pattern: regexp.MustCompile(`^/invoices/\d+/payments$`), Template: "/invoices/:id/payments"},
	{Pattern: regexp.MustCompile(`^/invoices/\d+$`), Template: "/invoices/:id"},
	{Pattern: regexp.MustCompile(`^/deliveries/\d+/validate$`), Template: "/deliveries/:id/validate"},
	{Pattern: regexp.MustCompile(`^/deliveries/\d+/reserve$`), Template: "/deliveries/:id/reserve"},
	{Pattern: regexp.MustCompile(`^/deliveries/\d+/cancel$`), Template: "/deliveries/:id/cancel"},
}

// NormalizePath converts ID-carrying paths to template form so that
// metric labels stay bounded. Static paths pass through unchanged, as
// do unknown paths.
//
// Examples:
//
//	NormalizePath("/orders/123/confirm")  // "/orders/:id/confirm"
//	NormalizePath("/invoices/9/payments") // "/invoices/:id/payments"
//	NormalizePath("/healthz")             // "/healthz" (unchanged)
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}
	return path
}
