package product

import "time"

// SoldOutEvent is emitted when a purchase drives a product's stock to zero
// and the product is deactivated as a consequence.
type SoldOutEvent struct {
	ProductID  string
	Name       string
	OccurredAt time.Time
}

func (SoldOutEvent) EventName() string { return "product.sold_out" }

func NewSoldOutEvent(p *Product) SoldOutEvent {
	return SoldOutEvent{
		ProductID:  p.ID(),
		Name:       p.Name(),
		OccurredAt: time.Now().UTC(),
	}
}
