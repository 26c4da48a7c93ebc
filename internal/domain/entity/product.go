package entity

// Product represents a storable product tracked by the ERP side of the
// bridge and mirrored on the storefront. Quantity figures are the
// ERP-computed stock numbers at read time; the bridge never derives
// them itself.
type Product struct {
	ID       int64
	SKU      string // storefront product code; empty means the product is not mirrored
	Name     string
	Storable bool // physically stocked, as opposed to a service or consumable
	Sellable bool

	OnHand   float64 // quantity currently on hand
	Forecast float64 // projected (virtual) available quantity
	Outgoing float64 // quantity reserved for outgoing shipments
}

// Available returns the quantity free for new sales: on hand minus
// what is already reserved for shipment.
func (p *Product) Available() float64 {
	return p.OnHand - p.Outgoing
}

// Mirrored reports whether the product can be referenced on the
// storefront at all. Products without a SKU are skipped by every
// webhook payload.
func (p *Product) Mirrored() bool {
	return p.SKU != ""
}
