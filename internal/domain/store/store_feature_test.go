package store_test

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/Zhima-Mochi/minishop-inventory/app/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-inventory/app/internal/domain/store"
	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"
)

type storeTestContext struct {
	store  *store.Store
	byName map[string]*product.Product
	total  decimal.Decimal
	err    error
}

func (c *storeTestContext) reset() {
	c.store = nil
	c.byName = make(map[string]*product.Product)
	c.total = decimal.Zero
	c.err = nil
}

func (c *storeTestContext) product(name string) (*product.Product, error) {
	p, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("unknown product %q", name)
	}
	return p, nil
}

func (c *storeTestContext) aStoreWithProducts(table *godog.Table) error {
	var products []*product.Product
	for _, row := range table.Rows[1:] {
		price, err := decimal.NewFromString(row.Cells[1].Value)
		if err != nil {
			return err
		}
		qty, err := strconv.Atoi(row.Cells[2].Value)
		if err != nil {
			return err
		}
		p, err := product.New(row.Cells[0].Value, price, qty)
		if err != nil {
			return err
		}
		c.byName[p.Name()] = p
		products = append(products, p)
	}
	c.store = store.New(products)
	return nil
}

func (c *storeTestContext) productIsDeactivated(name string) error {
	p, err := c.product(name)
	if err != nil {
		return err
	}
	p.Deactivate()
	return nil
}

func (c *storeTestContext) iBuyOf(qty int, name string) error {
	p, err := c.product(name)
	if err != nil {
		return err
	}
	c.total, c.err = p.Buy(qty)
	return nil
}

func (c *storeTestContext) iOrder(table *godog.Table) error {
	var lines []store.OrderLine
	for _, row := range table.Rows[1:] {
		p, err := c.product(row.Cells[0].Value)
		if err != nil {
			return err
		}
		qty, err := strconv.Atoi(row.Cells[1].Value)
		if err != nil {
			return err
		}
		lines = append(lines, store.OrderLine{Product: p, Quantity: qty})
	}
	c.total, c.err = c.store.Order(lines)
	return nil
}

func (c *storeTestContext) costs(expected string) error {
	if c.err != nil {
		return fmt.Errorf("expected success, got %v", c.err)
	}
	want, err := decimal.NewFromString(expected)
	if err != nil {
		return err
	}
	if !c.total.Equal(want) {
		return fmt.Errorf("expected total %s, got %s", want, c.total)
	}
	return nil
}

func (c *storeTestContext) failsWith(msg string) error {
	if c.err == nil {
		return fmt.Errorf("expected failure containing %q", msg)
	}
	if !strings.Contains(c.err.Error(), msg) {
		return fmt.Errorf("expected error containing %q, got %q", msg, c.err.Error())
	}
	return nil
}

func (c *storeTestContext) hasInStock(name string, qty int) error {
	p, err := c.product(name)
	if err != nil {
		return err
	}
	if p.Quantity() != qty {
		return fmt.Errorf("%s: expected quantity %d, got %d", name, qty, p.Quantity())
	}
	return nil
}

func (c *storeTestContext) isActive(name string) error {
	p, err := c.product(name)
	if err != nil {
		return err
	}
	if !p.IsActive() {
		return fmt.Errorf("%s: expected active", name)
	}
	return nil
}

func (c *storeTestContext) isNotActive(name string) error {
	p, err := c.product(name)
	if err != nil {
		return err
	}
	if p.IsActive() {
		return fmt.Errorf("%s: expected inactive", name)
	}
	return nil
}

func (c *storeTestContext) storeHolds(n int) error {
	if got := c.store.TotalQuantity(); got != n {
		return fmt.Errorf("expected %d items, got %d", n, got)
	}
	return nil
}

func (c *storeTestContext) storeLists(n int) error {
	if got := len(c.store.Products()); got != n {
		return fmt.Errorf("expected %d active products, got %d", n, got)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &storeTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a store with products:$`, tc.aStoreWithProducts)
	ctx.Step(`^"([^"]*)" is deactivated$`, tc.productIsDeactivated)

	// When steps
	ctx.Step(`^I buy (-?\d+) of "([^"]*)"$`, tc.iBuyOf)
	ctx.Step(`^I order:$`, tc.iOrder)

	// Then steps
	ctx.Step(`^the (?:purchase|order) costs (\d+(?:\.\d+)?)$`, tc.costs)
	ctx.Step(`^the (?:purchase|order) fails with "([^"]*)"$`, tc.failsWith)
	ctx.Step(`^"([^"]*)" has (\d+) in stock$`, tc.hasInStock)
	ctx.Step(`^"([^"]*)" is active$`, tc.isActive)
	ctx.Step(`^"([^"]*)" is not active$`, tc.isNotActive)
	ctx.Step(`^the store holds (\d+) items$`, tc.storeHolds)
	ctx.Step(`^the store lists (\d+) products$`, tc.storeLists)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../../../features/store.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
