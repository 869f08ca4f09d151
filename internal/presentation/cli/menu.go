package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Zhima-Mochi/minishop-inventory/app/internal/application/catalog"
	"github.com/Zhima-Mochi/minishop-inventory/app/internal/application/ordering"
	"github.com/Zhima-Mochi/minishop-inventory/app/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-inventory/app/internal/domain/store"
	"github.com/Zhima-Mochi/minishop-inventory/app/internal/observability"
	"github.com/Zhima-Mochi/minishop-inventory/app/internal/observability/logctx"
)

type ListProducts interface {
	Execute(ctx context.Context, q catalog.ListProductsQuery) ([]*product.Product, error)
}

type TotalQuantity interface {
	Execute(ctx context.Context, q catalog.TotalQuantityQuery) (int, error)
}

type PlaceOrder interface {
	Execute(ctx context.Context, cmd ordering.PlaceOrderInput) (*ordering.PlaceOrderResult, error)
}

// Menu is the interactive text shell over the store use cases.
type Menu struct {
	list      ListProducts
	total     TotalQuantity
	order     PlaceOrder
	storeName string

	in  *bufio.Scanner
	out io.Writer
	log observability.Logger
}

func NewMenu(list ListProducts, total TotalQuantity, order PlaceOrder, storeName string, in io.Reader, out io.Writer, logger observability.Logger) *Menu {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Menu{
		list:      list,
		total:     total,
		order:     order,
		storeName: storeName,
		in:        bufio.NewScanner(in),
		out:       out,
		log:       logger.With(observability.F("component", "cli")),
	}
}

// Run loops over the menu until the user quits, input ends or ctx is done.
func (m *Menu) Run(ctx context.Context) error {
	ctx = logctx.With(ctx, m.log)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		m.println("\nStore Menu")
		m.println("----------")
		m.println("1. List all products in store")
		m.println("2. Show total amount in store")
		m.println("3. Make an order")
		m.println("4. Quit")

		choice, ok := m.prompt("Please choose a number: ")
		if !ok {
			return m.in.Err()
		}

		var err error
		switch strings.TrimSpace(choice) {
		case "1":
			err = m.listProducts(ctx)
		case "2":
			err = m.showTotal(ctx)
		case "3":
			err = m.makeOrder(ctx)
		case "4":
			m.printf("\nThank you for visiting %s!\n", m.storeName)
			return nil
		default:
			m.println("\nInvalid choice! Please enter 1-4.")
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return m.in.Err()
			}
			return err
		}
	}
}

func (m *Menu) listProducts(ctx context.Context) error {
	products, err := m.list.Execute(ctx, catalog.ListProductsQuery{})
	if err != nil {
		return err
	}
	m.println("\n------")
	for _, p := range products {
		m.println(Show(p))
	}
	m.println("------")
	return nil
}

func (m *Menu) showTotal(ctx context.Context) error {
	total, err := m.total.Execute(ctx, catalog.TotalQuantityQuery{})
	if err != nil {
		return err
	}
	m.printf("\nTotal of %d items in store\n", total)
	return nil
}

func (m *Menu) makeOrder(ctx context.Context) error {
	products, err := m.list.Execute(ctx, catalog.ListProductsQuery{})
	if err != nil {
		return err
	}

	m.println("\n------")
	for i, p := range products {
		m.printf("%d. %s\n", i+1, Show(p))
	}
	m.println("------")
	m.println("When you want to finish order, enter empty text.")

	var lines []store.OrderLine
	for {
		raw, ok := m.prompt("Which product # do you want? ")
		if !ok {
			return io.EOF
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			break
		}

		n, err := strconv.Atoi(raw)
		if err != nil {
			m.println("Please enter a valid number!")
			continue
		}
		if n < 1 || n > len(products) {
			m.println("Invalid product number!")
			continue
		}

		rawQty, ok := m.prompt("What amount do you want? ")
		if !ok {
			return io.EOF
		}
		qty, err := strconv.Atoi(strings.TrimSpace(rawQty))
		if err != nil {
			m.println("Please enter a valid number!")
			continue
		}
		if qty <= 0 {
			m.println("Amount must be positive!")
			continue
		}

		lines = append(lines, store.OrderLine{Product: products[n-1], Quantity: qty})
		m.println("Product added to list!")
	}

	if len(lines) == 0 {
		m.println("\nNo items ordered.")
		return nil
	}

	res, err := m.order.Execute(ctx, ordering.PlaceOrderInput{Lines: lines})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		m.printf("\nError while making order: %v\n", err)
		return nil
	}
	m.printf("\nOrder made! Total payment: $%s\n", res.Total.String())
	return nil
}

// Show renders a product the way the menu lists it.
func Show(p *product.Product) string {
	return fmt.Sprintf("%s, Price: %s, Quantity: %d", p.Name(), p.Price().String(), p.Quantity())
}

// prompt writes label and reads one line. It reports false once input is exhausted.
func (m *Menu) prompt(label string) (string, bool) {
	fmt.Fprint(m.out, label)
	if !m.in.Scan() {
		return "", false
	}
	return m.in.Text(), true
}

func (m *Menu) println(s string) { fmt.Fprintln(m.out, s) }

func (m *Menu) printf(format string, args ...any) { fmt.Fprintf(m.out, format, args...) }
