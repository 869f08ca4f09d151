package store

import (
	"testing"

	"github.com/Zhima-Mochi/minishop-inventory/app/internal/domain/product"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func seed() (*Store, []*product.Product) {
	ps := []*product.Product{
		product.MustNew("MacBook Air M2", decimal.NewFromInt(1450), 100),
		product.MustNew("Bose QuietComfort Earbuds", decimal.NewFromInt(250), 500),
		product.MustNew("Google Pixel 7", decimal.NewFromInt(500), 250),
	}
	return New(ps), ps
}

func TestNew_CopiesInput(t *testing.T) {
	ps := []*product.Product{product.MustNew("A", decimal.NewFromInt(1), 1)}
	s := New(ps)
	ps[0] = product.MustNew("B", decimal.NewFromInt(1), 1)

	require.Len(t, s.Products(), 1)
	assert.Equal(t, "A", s.Products()[0].Name())
}

func TestNew_Empty(t *testing.T) {
	s := New(nil)
	assert.Equal(t, 0, s.TotalQuantity())
	assert.Empty(t, s.Products())

	total, err := s.Order(nil)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestTotalQuantity(t *testing.T) {
	s, ps := seed()
	assert.Equal(t, 850, s.TotalQuantity())

	ps[0].Deactivate()
	assert.Equal(t, 850, s.TotalQuantity(), "inactive stock still counts")
}

func TestAddAndRemove(t *testing.T) {
	s, ps := seed()
	extra := product.MustNew("Extra", decimal.NewFromInt(5), 10)

	s.AddProduct(extra)
	assert.Equal(t, 860, s.TotalQuantity())
	assert.Equal(t, extra, s.Products()[3])

	require.NoError(t, s.RemoveProduct(ps[1]))
	assert.Equal(t, []*product.Product{ps[0], ps[2], extra}, s.Products())

	err := s.RemoveProduct(ps[1])
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveProduct_IdentityNotName(t *testing.T) {
	s, _ := seed()
	lookalike := product.MustNew("MacBook Air M2", decimal.NewFromInt(1450), 100)

	assert.ErrorIs(t, s.RemoveProduct(lookalike), ErrNotFound)
	assert.Len(t, s.Products(), 3)
}

func TestProducts_FiltersInactiveInOrder(t *testing.T) {
	s, ps := seed()
	ps[1].Deactivate()

	assert.Equal(t, []*product.Product{ps[0], ps[2]}, s.Products())

	ps[1].Activate()
	assert.Equal(t, ps, s.Products())
}

func TestOrder_SumsLines(t *testing.T) {
	s, ps := seed()

	total, err := s.Order([]OrderLine{{Product: ps[0], Quantity: 1}, {Product: ps[2], Quantity: 2}})
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(2450)), total.String())
	assert.Equal(t, 99, ps[0].Quantity())
	assert.Equal(t, 248, ps[2].Quantity())
}

func TestOrder_SameProductTwice(t *testing.T) {
	s, ps := seed()

	total, err := s.Order([]OrderLine{{Product: ps[2], Quantity: 200}, {Product: ps[2], Quantity: 50}})
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(125000)))
	assert.False(t, ps[2].IsActive())

	_, err = s.Order([]OrderLine{{Product: ps[2], Quantity: 1}})
	assert.ErrorIs(t, err, product.ErrInactiveProduct)
}

func TestOrder_FailureKeepsEarlierLines(t *testing.T) {
	s, ps := seed()

	total, err := s.Order([]OrderLine{
		{Product: ps[0], Quantity: 1},
		{Product: ps[1], Quantity: 2},
		{Product: ps[2], Quantity: 251},
	})
	require.ErrorIs(t, err, product.ErrInsufficientStock)
	assert.True(t, total.IsZero())
	assert.Equal(t, 99, ps[0].Quantity())
	assert.Equal(t, 498, ps[1].Quantity())
	assert.Equal(t, 250, ps[2].Quantity())
}

func TestOrder_NilProduct(t *testing.T) {
	s, ps := seed()

	_, err := s.Order([]OrderLine{{Product: ps[0], Quantity: 1}, {Quantity: 1}})
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "order line 1")
	assert.Equal(t, 99, ps[0].Quantity())
}

func TestOrderPlacedEvent(t *testing.T) {
	_, ps := seed()
	e := NewOrderPlacedEvent("r-1", []OrderLine{{Product: ps[0], Quantity: 2}, {Product: ps[1], Quantity: 3}}, decimal.NewFromInt(3650))

	assert.Equal(t, "order.placed", e.EventName())
	assert.Equal(t, 2, e.Lines)
	assert.Equal(t, 5, e.Units)
	assert.True(t, e.Total.Equal(decimal.NewFromInt(3650)))
}

func TestOrder_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 5).Draw(t, "products")
		ps := make([]*product.Product, n)
		for i := range ps {
			ps[i] = product.MustNew("P", decimal.NewFromInt(rapid.Int64Range(0, 2000).Draw(t, "price")), rapid.IntRange(0, 100).Draw(t, "stock"))
		}
		s := New(ps)
		before := s.TotalQuantity()

		lines := rapid.SliceOfN(rapid.Custom(func(t *rapid.T) OrderLine {
			return OrderLine{
				Product:  ps[rapid.IntRange(0, n-1).Draw(t, "idx")],
				Quantity: rapid.IntRange(-2, 60).Draw(t, "qty"),
			}
		}), 0, 6).Draw(t, "lines")

		total, err := s.Order(lines)
		after := s.TotalQuantity()

		if after > before {
			t.Fatalf("stock grew from %d to %d", before, after)
		}
		if err != nil {
			if !total.IsZero() {
				t.Fatalf("failed order returned total %s", total)
			}
			return
		}

		want := decimal.Zero
		units := 0
		for _, l := range lines {
			want = want.Add(l.Product.Price().Mul(decimal.NewFromInt(int64(l.Quantity))))
			units += l.Quantity
		}
		if !total.Equal(want) {
			t.Fatalf("total %s, want %s", total, want)
		}
		if before-after != units {
			t.Fatalf("stock dropped by %d, want %d", before-after, units)
		}
		for _, p := range s.Products() {
			if p.Quantity() == 0 && !untouched(lines, p) {
				t.Fatalf("sold-out product still listed")
			}
		}
	})
}

// untouched reports whether no line referenced p.
func untouched(lines []OrderLine, p *product.Product) bool {
	for _, l := range lines {
		if l.Product == p {
			return false
		}
	}
	return true
}
