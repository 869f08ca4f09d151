package worker

import (
	"context"

	domoutbox "github.com/Zhima-Mochi/minishop-inventory/app/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-inventory/app/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-inventory/app/internal/domain/store"
	"github.com/Zhima-Mochi/minishop-inventory/app/internal/observability"
	"github.com/Zhima-Mochi/minishop-inventory/app/internal/observability/logctx"
)

const componentStock = "stock_worker"

// Worker reacts to stock-related domain events. It only reads event payloads and
// never touches Product or Store state.
type Worker struct {
	subscriber domoutbox.Subscriber
	log        observability.Logger
	soldOut    observability.BoundCounter // stock_sold_out_total
}

func New(subscriber domoutbox.Subscriber, tel observability.Observability) *Worker {
	baseLog := observability.NopLogger()
	metrics := observability.NopMetrics()
	if tel != nil {
		baseLog = tel.Logger()
		metrics = tel.Metrics()
	}
	return &Worker{
		subscriber: subscriber,
		log:        baseLog,
		soldOut:    metrics.Counter(observability.MStockSoldOut).Bind(),
	}
}

func (w *Worker) Start() {
	w.subscriber.Subscribe(product.SoldOutEvent{}.EventName(), w.handleSoldOut)
	w.subscriber.Subscribe(store.OrderPlacedEvent{}.EventName(), w.handleOrderPlaced)
}

func (w *Worker) handleSoldOut(ctx context.Context, e domoutbox.Event) error {
	evt, ok := e.(product.SoldOutEvent)
	if !ok {
		return nil
	}
	logger := logctx.FromOr(ctx, w.log).With(observability.F("component", componentStock))

	w.soldOut.Add(1)
	logger.Warn("stock_sold_out",
		observability.F("product_id", evt.ProductID),
		observability.F("product_name", evt.Name),
		observability.F("occurred_at", evt.OccurredAt),
	)
	return nil
}

func (w *Worker) handleOrderPlaced(ctx context.Context, e domoutbox.Event) error {
	evt, ok := e.(store.OrderPlacedEvent)
	if !ok {
		return nil
	}
	logger := logctx.FromOr(ctx, w.log).With(observability.F("component", componentStock))

	logger.Info("order_placed",
		observability.F("receipt_id", evt.ReceiptID),
		observability.F("lines", evt.Lines),
		observability.F("units", evt.Units),
		observability.F("total", evt.Total.String()),
	)
	return nil
}
