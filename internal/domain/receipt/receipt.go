package receipt

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound   = errors.New("receipt: not found")
	ErrConflict   = errors.New("receipt: already exists")
	ErrEmptyOrder = errors.New("receipt: order has no lines")
)

// Line is a priced snapshot of one purchased order line.
type Line struct {
	ProductID string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// Receipt records a fully placed order.
type Receipt struct {
	ID       string
	Lines    []Line
	Total    decimal.Decimal
	PlacedAt time.Time
}

func New(id string, lines []Line) (*Receipt, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}

	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal)
	}

	return &Receipt{
		ID:       id,
		Lines:    append([]Line(nil), lines...),
		Total:    total,
		PlacedAt: time.Now().UTC(),
	}, nil
}

func (r *Receipt) Clone() *Receipt {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Lines = append([]Line(nil), r.Lines...)
	return &clone
}
