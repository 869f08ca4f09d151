package store

import (
	"errors"
	"fmt"

	"github.com/Zhima-Mochi/minishop-inventory/app/internal/domain/product"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("store: product not found")

// OrderLine is one (product, quantity) pair of an order request.
type OrderLine struct {
	Product  *product.Product
	Quantity int
}

// Store owns an ordered product collection. The order is display order only.
// A Store is not safe for concurrent use.
type Store struct {
	products []*product.Product
}

func New(products []*product.Product) *Store {
	owned := make([]*product.Product, len(products))
	copy(owned, products)
	return &Store{products: owned}
}

// AddProduct appends p. Duplicates are not detected.
func (s *Store) AddProduct(p *product.Product) {
	s.products = append(s.products, p)
}

// RemoveProduct removes the first element that is p.
func (s *Store) RemoveProduct(p *product.Product) error {
	for i, candidate := range s.products {
		if candidate == p {
			s.products = append(s.products[:i], s.products[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// TotalQuantity sums the stock of every product, active or not.
func (s *Store) TotalQuantity() int {
	total := 0
	for _, p := range s.products {
		total += p.Quantity()
	}
	return total
}

// Products returns the active products, preserving their relative order.
func (s *Store) Products() []*product.Product {
	active := make([]*product.Product, 0, len(s.products))
	for _, p := range s.products {
		if p.IsActive() {
			active = append(active, p)
		}
	}
	return active
}

// Order buys every line in sequence and returns the summed price.
//
// The first failing line aborts the order and its error is returned as is.
// Lines processed before the failure keep their stock reductions.
func (s *Store) Order(lines []OrderLine) (decimal.Decimal, error) {
	total := decimal.Zero
	for i, line := range lines {
		if line.Product == nil {
			return decimal.Zero, fmt.Errorf("%w: order line %d has no product", ErrNotFound, i)
		}
		price, err := line.Product.Buy(line.Quantity)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(price)
	}
	return total, nil
}
