package webhook

// Operation tags why a notification fires. The value is sent verbatim
// in the payload's "operation" field, so the set is closed and the
// strings are part of the wire contract with the storefront.
type Operation string

const (
	// OpDone fires when stock moves complete.
	OpDone Operation = "done"
	// OpAssign fires when stock is reserved for a shipment.
	OpAssign Operation = "assign"
	// OpCancel fires when stock moves are cancelled (unreserved).
	OpCancel Operation = "cancel"
	// OpOrderConfirm fires when a sale order is confirmed.
	OpOrderConfirm Operation = "so_confirm"
	// OpOrderCancel fires when a confirmed sale order is cancelled.
	OpOrderCancel Operation = "so_cancel"
	// OpPurchase fires when a purchase receipt is validated.
	OpPurchase Operation = "purchase"
	// OpReturn fires when a customer return is validated.
	OpReturn Operation = "return"
	// OpManual fires on manual inventory adjustments.
	OpManual Operation = "manual"
	// OpUnbuild fires when a manufacturing order is unbuilt.
	OpUnbuild Operation = "unbuild"
	// OpBuild fires when a manufacturing order completes.
	OpBuild Operation = "build"
	// OpStockUpdate is the full stock snapshot (periodic sync).
	OpStockUpdate Operation = "stock_update"
	// OpSale fires on direct (point-of-sale style) sales.
	OpSale Operation = "sale"
)

var validOperations = map[Operation]bool{
	OpDone: true, OpAssign: true, OpCancel: true,
	OpOrderConfirm: true, OpOrderCancel: true,
	OpPurchase: true, OpReturn: true, OpManual: true,
	OpUnbuild: true, OpBuild: true, OpStockUpdate: true, OpSale: true,
}

// Valid reports whether o is one of the closed operation set.
func (o Operation) Valid() bool {
	return validOperations[o]
}

// QuantityDriven reports whether the operation carries per-product
// processed quantities. For these operations the payload builder drops
// products whose processed quantity is zero or negative.
func (o Operation) QuantityDriven() bool {
	switch o {
	case OpDone, OpAssign, OpCancel, OpPurchase, OpReturn, OpBuild, OpUnbuild, OpSale:
		return true
	}
	return false
}

// StockEvent reports whether the operation is a low-level stock event
// that a higher-level hook (order confirm/cancel) may suppress via the
// context flag.
func (o Operation) StockEvent() bool {
	switch o {
	case OpDone, OpAssign, OpCancel:
		return true
	}
	return false
}
