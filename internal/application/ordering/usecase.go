package ordering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/minishop-inventory/app/internal/application"
	domoutbox "github.com/Zhima-Mochi/minishop-inventory/app/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-inventory/app/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-inventory/app/internal/domain/receipt"
	"github.com/Zhima-Mochi/minishop-inventory/app/internal/domain/store"
	"github.com/Zhima-Mochi/minishop-inventory/app/internal/observability"
	"github.com/Zhima-Mochi/minishop-inventory/app/internal/observability/logctx"
	"github.com/shopspring/decimal"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	orderingService  = "ordering"
	useCasePlace     = "order.place"
	placeSpanName    = "PlaceOrder"
	publishTimeout   = 300 * time.Millisecond
	statusOK         = "OK"
	statusPublishErr = "EVENT_PUBLISH_FAILED"
)

var ErrEmptyOrder = errors.New("ordering: order has no lines")

var _ application.UseCase[PlaceOrderInput, *PlaceOrderResult] = (*PlaceOrderUseCase)(nil)

type PlaceOrderInput struct {
	Lines []store.OrderLine
}

type PlaceOrderResult struct {
	ReceiptID string
	Total     decimal.Decimal
	// SoldOut lists the IDs of products this order deactivated.
	SoldOut []string
}

// PlaceOrderUseCase runs a multi-line order against the store, records a receipt
// and publishes the resulting domain events.
type PlaceOrderUseCase struct {
	orderer     Orderer
	receipts    receipt.Repository
	idGenerator IDGenerator
	publisher   domoutbox.Publisher

	log          observability.Logger
	tracer       observability.Tracer
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
	pubCounter   observability.Counter   // event_publish_total{event,outcome}
}

func NewPlaceOrderUseCase(
	orderer Orderer,
	receipts receipt.Repository,
	idGen IDGenerator,
	publisher domoutbox.Publisher,
	tel observability.Observability,
) *PlaceOrderUseCase {
	baseLog := observability.NopLogger()
	tracer := observability.NopTracer()
	metrics := observability.NopMetrics()
	if tel != nil {
		baseLog = tel.Logger()
		tracer = tel.Tracer()
		metrics = tel.Metrics()
	}

	return &PlaceOrderUseCase{
		orderer:      orderer,
		receipts:     receipts,
		idGenerator:  idGen,
		publisher:    publisher,
		log:          baseLog.With(observability.F("service", orderingService)),
		tracer:       tracer,
		reqCounter:   metrics.Counter(observability.MUsecaseRequests),
		durHistogram: metrics.Histogram(observability.MUsecaseDuration),
		pubCounter:   metrics.Counter(observability.MEventPublish),
	}
}

// Execute places the order. Store errors are returned unchanged so callers can match
// them with errors.Is; lines bought before a failing line stay bought.
func (uc *PlaceOrderUseCase) Execute(ctx context.Context, cmd PlaceOrderInput) (_ *PlaceOrderResult, err error) {
	logger := logctx.FromOr(ctx, uc.log).With(
		observability.F("use_case", useCasePlace),
		observability.F("lines", len(cmd.Lines)),
	)

	ctx, span := uc.tracer.Start(ctx, application.SpanPrefix+placeSpanName,
		attribute.String("use_case", useCasePlace),
		attribute.Int("order.lines", len(cmd.Lines)),
	)
	start := time.Now()
	outcome, statusText := application.OutcomeSuccess, statusOK
	var receiptID string
	var total decimal.Decimal
	var soldOut []string

	defer func() {
		lat := time.Since(start).Seconds()

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, statusText)
		} else {
			span.SetStatus(codes.Ok, statusText)
		}
		span.End()

		uc.reqCounter.Add(1,
			observability.L("use_case", useCasePlace),
			observability.L("outcome", outcome),
		)
		uc.durHistogram.Observe(lat,
			observability.L("use_case", useCasePlace),
		)

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", lat),
		}
		fields = append(fields, logctx.TraceFields(ctx)...)
		if receiptID != "" {
			fields = append(fields,
				observability.F("receipt_id", receiptID),
				observability.F("total", total.String()),
			)
		}
		if len(soldOut) > 0 {
			fields = append(fields, observability.F("sold_out", soldOut))
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}

		logger.Info("use_case_done", fields...)
	}()

	if len(cmd.Lines) == 0 {
		outcome, statusText = application.OutcomeError, "EMPTY_ORDER"
		return nil, ErrEmptyOrder
	}
	if err := ctx.Err(); err != nil {
		outcome, statusText = application.OutcomeError, "CONTEXT_CANCELED"
		return nil, err
	}

	wasActive := activeBefore(cmd.Lines)

	total, err = uc.orderer.Order(cmd.Lines)

	// Sold-out products are reported even when a later line failed: the earlier
	// lines already took their stock.
	for _, p := range newlySoldOut(cmd.Lines, wasActive) {
		soldOut = append(soldOut, p.ID())
		if pubErr := uc.publish(ctx, product.NewSoldOutEvent(p)); pubErr != nil {
			span.RecordError(pubErr)
		}
	}

	if err != nil {
		outcome, statusText = application.OutcomeError, statusFromError(err)
		return nil, err
	}

	receiptID = uc.idGenerator.NewID()
	rec, rerr := receipt.New(receiptID, receiptLines(cmd.Lines))
	if rerr != nil {
		outcome, statusText = application.OutcomeError, "RECEIPT_CONSTRUCTION_FAILED"
		return nil, fmt.Errorf("ordering: construct receipt: %w", rerr)
	}
	if ierr := uc.receipts.Insert(ctx, rec); ierr != nil {
		outcome, statusText = application.OutcomeError, "RECEIPT_INSERT_FAILED"
		return nil, fmt.Errorf("ordering: save receipt: %w", ierr)
	}

	span.AddEvent("order.placed",
		trace.WithAttributes(
			attribute.String("receipt.id", receiptID),
			attribute.String("order.total", total.String()),
		),
	)

	if pubErr := uc.publish(ctx, store.NewOrderPlacedEvent(receiptID, cmd.Lines, total)); pubErr != nil {
		// best-effort; the order itself succeeded
		span.RecordError(pubErr)
		statusText = statusPublishErr
		logger.Warn("event_publish_failed",
			observability.F("event", store.OrderPlacedEvent{}.EventName()),
			observability.F("error", pubErr.Error()),
		)
	}

	return &PlaceOrderResult{ReceiptID: receiptID, Total: total, SoldOut: soldOut}, nil
}

func (uc *PlaceOrderUseCase) publish(ctx context.Context, event domoutbox.Event) error {
	if uc.publisher == nil || event == nil {
		return nil
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err := uc.publisher.Publish(pubCtx, event)
	outcome := application.OutcomeSuccess
	if err != nil {
		outcome = application.OutcomeError
	}
	uc.pubCounter.Add(1,
		observability.L("event", event.EventName()),
		observability.L("outcome", outcome),
	)
	return err
}

func activeBefore(lines []store.OrderLine) map[*product.Product]bool {
	active := make(map[*product.Product]bool, len(lines))
	for _, l := range lines {
		if l.Product != nil {
			active[l.Product] = l.Product.IsActive()
		}
	}
	return active
}

// newlySoldOut returns, in line order and without duplicates, the products that were
// active before the order and are now inactive with no stock left.
func newlySoldOut(lines []store.OrderLine, wasActive map[*product.Product]bool) []*product.Product {
	var out []*product.Product
	seen := make(map[*product.Product]bool, len(lines))
	for _, l := range lines {
		p := l.Product
		if p == nil || seen[p] {
			continue
		}
		seen[p] = true
		if wasActive[p] && !p.IsActive() && p.Quantity() == 0 {
			out = append(out, p)
		}
	}
	return out
}

func receiptLines(lines []store.OrderLine) []receipt.Line {
	out := make([]receipt.Line, 0, len(lines))
	for _, l := range lines {
		out = append(out, receipt.Line{
			ProductID: l.Product.ID(),
			Name:      l.Product.Name(),
			Quantity:  l.Quantity,
			UnitPrice: l.Product.Price(),
			Subtotal:  l.Product.Price().Mul(decimal.NewFromInt(int64(l.Quantity))),
		})
	}
	return out
}

func statusFromError(err error) string {
	switch {
	case errors.Is(err, product.ErrInactiveProduct):
		return "PRODUCT_INACTIVE"
	case errors.Is(err, product.ErrInsufficientStock):
		return "INSUFFICIENT_STOCK"
	case errors.Is(err, product.ErrInvalidQuantity):
		return "QUANTITY_INVALID"
	case errors.Is(err, store.ErrNotFound):
		return "PRODUCT_NOT_FOUND"
	default:
		return "ORDER_FAILED"
	}
}
