package store

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderPlacedEvent is emitted after every line of an order was bought.
type OrderPlacedEvent struct {
	ReceiptID  string
	Lines      int
	Units      int
	Total      decimal.Decimal
	OccurredAt time.Time
}

func (OrderPlacedEvent) EventName() string { return "order.placed" }

func NewOrderPlacedEvent(receiptID string, lines []OrderLine, total decimal.Decimal) OrderPlacedEvent {
	units := 0
	for _, l := range lines {
		units += l.Quantity
	}
	return OrderPlacedEvent{
		ReceiptID:  receiptID,
		Lines:      len(lines),
		Units:      units,
		Total:      total,
		OccurredAt: time.Now().UTC(),
	}
}
