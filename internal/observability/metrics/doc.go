// Package metrics provides the business-level Prometheus metrics of
// the bridge: order lifecycle outcomes, invoice and payment volume,
// delivery validation and the periodic stock snapshot. Transport-level
// HTTP metrics live with the HTTP handlers; webhook pipeline metrics
// live with the dispatcher.
package metrics
