package entity

import "time"

// DeliveryType classifies a delivery order by direction.
type DeliveryType string

// Delivery direction codes.
const (
	DeliveryIncoming DeliveryType = "incoming"
	DeliveryOutgoing DeliveryType = "outgoing"
	DeliveryInternal DeliveryType = "internal"
)

// DeliveryState is the lifecycle state of a delivery order.
type DeliveryState string

// Delivery lifecycle states.
const (
	DeliveryDraft     DeliveryState = "draft"
	DeliveryWaiting   DeliveryState = "waiting"
	DeliveryConfirmed DeliveryState = "confirmed"
	DeliveryAssigned  DeliveryState = "assigned"
	DeliveryDone      DeliveryState = "done"
	DeliveryCancelled DeliveryState = "cancel"
)

// Delivery represents a stock transfer (receipt, shipment or internal
// move) generated for a sale or purchase order.
type Delivery struct {
	ID                int64
	Name              string
	Origin            string // document that created the transfer, e.g. the order name
	Type              DeliveryType
	State             DeliveryState
	StorefrontOrderID string
	WebhookSent       bool // order-status webhook already emitted for this storefront order
	DateDone          *time.Time
	Moves             []StockMove
}

// Open reports whether the delivery can still be cancelled.
func (d *Delivery) Open() bool {
	return d.State != DeliveryDone && d.State != DeliveryCancelled
}

// StockMove is a single product movement inside a delivery.
type StockMove struct {
	ID             int64
	ProductID      int64
	State          string
	Demand         float64 // requested quantity
	DoneQuantity   float64 // quantity actually processed
	ReturnOfMoveID int64   // original move when this one is a customer return, 0 otherwise
}

// IsReturn reports whether the move reverses an earlier outgoing move.
func (m *StockMove) IsReturn() bool {
	return m.ReturnOfMoveID != 0
}

// MoveProductIDs returns the distinct product IDs touched by the given
// moves, preserving first-seen order.
func MoveProductIDs(moves []StockMove) []int64 {
	seen := make(map[int64]bool, len(moves))
	ids := make([]int64, 0, len(moves))
	for _, m := range moves {
		if seen[m.ProductID] {
			continue
		}
		seen[m.ProductID] = true
		ids = append(ids, m.ProductID)
	}
	return ids
}
