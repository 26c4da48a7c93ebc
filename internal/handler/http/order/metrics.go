package order

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var rpcResultsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "order_rpc_results_total",
		Help: "Order lifecycle RPC outcomes by operation and result",
	},
	[]string{"operation", "result"}, // result: success | failure
)

func recordRPCResult(operation string, success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	rpcResultsTotal.WithLabelValues(operation, result).Inc()
}
