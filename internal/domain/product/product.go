package product

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrValidation        = errors.New("product: invalid argument")
	ErrInactiveProduct   = errors.New("product: product is not active")
	ErrInvalidQuantity   = errors.New("product: purchase quantity must be greater than zero")
	ErrInsufficientStock = errors.New("product: insufficient quantity in stock")
)

// Product is a single stock-keeping unit. It owns its quantity and active flag
// and is only mutated through SetQuantity, Buy and the explicit (de)activation calls.
type Product struct {
	id       string
	name     string
	price    decimal.Decimal
	quantity int
	active   bool
}

func New(name string, price decimal.Decimal, quantity int) (*Product, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	if quantity < 0 {
		return nil, fmt.Errorf("%w: quantity cannot be negative", ErrValidation)
	}

	return &Product{
		id:       uuid.NewString(),
		name:     name,
		price:    price,
		quantity: quantity,
		active:   true,
	}, nil
}

// MustNew is like New but panics on invalid arguments. Intended for seed data and tests.
func MustNew(name string, price decimal.Decimal, quantity int) *Product {
	p, err := New(name, price, quantity)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Product) ID() string             { return p.id }
func (p *Product) Name() string           { return p.name }
func (p *Product) Price() decimal.Decimal { return p.price }
func (p *Product) Quantity() int          { return p.quantity }
func (p *Product) IsActive() bool         { return p.active }

// SetQuantity replaces the stock level. Reaching zero deactivates the product;
// a positive value does not reactivate it.
func (p *Product) SetQuantity(quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("%w: quantity cannot be negative", ErrValidation)
	}
	p.quantity = quantity
	if p.quantity == 0 {
		p.Deactivate()
	}
	return nil
}

func (p *Product) Activate()   { p.active = true }
func (p *Product) Deactivate() { p.active = false }

// Buy purchases quantity units and returns price * quantity.
// All checks run before any mutation; the order of checks is significant
// for which error is reported.
func (p *Product) Buy(quantity int) (decimal.Decimal, error) {
	if !p.active {
		return decimal.Zero, ErrInactiveProduct
	}
	if quantity > p.quantity {
		return decimal.Zero, ErrInsufficientStock
	}
	if quantity <= 0 {
		return decimal.Zero, ErrInvalidQuantity
	}

	total := p.price.Mul(decimal.NewFromInt(int64(quantity)))
	if err := p.SetQuantity(p.quantity - quantity); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
