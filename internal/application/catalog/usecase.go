package catalog

import (
	"context"
	"time"

	"github.com/Zhima-Mochi/minishop-inventory/app/internal/application"
	"github.com/Zhima-Mochi/minishop-inventory/app/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-inventory/app/internal/observability"
	"github.com/Zhima-Mochi/minishop-inventory/app/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	catalogService = "catalog"
	useCaseList    = "catalog.list"
	useCaseTotal   = "catalog.total_quantity"
)

// Catalog is the read side of the store.
type Catalog interface {
	Products() []*product.Product
	TotalQuantity() int
}

type ListProductsQuery struct{}

type TotalQuantityQuery struct{}

var (
	_ application.UseCase[ListProductsQuery, []*product.Product] = (*ListProductsUseCase)(nil)
	_ application.UseCase[TotalQuantityQuery, int]               = (*TotalQuantityUseCase)(nil)
)

// instrumented carries the telemetry shared by the catalog queries.
type instrumented struct {
	log          observability.Logger
	tracer       observability.Tracer
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
}

func newInstrumented(tel observability.Observability) instrumented {
	baseLog := observability.NopLogger()
	tracer := observability.NopTracer()
	metrics := observability.NopMetrics()
	if tel != nil {
		baseLog = tel.Logger()
		tracer = tel.Tracer()
		metrics = tel.Metrics()
	}
	return instrumented{
		log:          baseLog.With(observability.F("service", catalogService)),
		tracer:       tracer,
		reqCounter:   metrics.Counter(observability.MUsecaseRequests),
		durHistogram: metrics.Histogram(observability.MUsecaseDuration),
	}
}

// run wraps fn in a span, RED metrics and a single use_case_done log line.
func (in instrumented) run(ctx context.Context, useCase, spanName string, fn func(ctx context.Context, span trace.Span) []observability.Field) (err error) {
	logger := logctx.FromOr(ctx, in.log).With(observability.F("use_case", useCase))
	ctx, span := in.tracer.Start(ctx, application.SpanPrefix+spanName,
		attribute.String("use_case", useCase),
	)
	start := time.Now()
	outcome, statusText := application.OutcomeSuccess, "OK"
	var extra []observability.Field

	defer func() {
		lat := time.Since(start).Seconds()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, statusText)
		} else {
			span.SetStatus(codes.Ok, statusText)
		}
		span.End()

		in.reqCounter.Add(1,
			observability.L("use_case", useCase),
			observability.L("outcome", outcome),
		)
		in.durHistogram.Observe(lat, observability.L("use_case", useCase))

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", lat),
		}
		fields = append(fields, logctx.TraceFields(ctx)...)
		fields = append(fields, extra...)
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}()

	if err := ctx.Err(); err != nil {
		outcome, statusText = application.OutcomeError, "CONTEXT_CANCELED"
		return err
	}
	extra = fn(ctx, span)
	return nil
}

// ListProductsUseCase returns the active products in display order.
type ListProductsUseCase struct {
	catalog Catalog
	instrumented
}

func NewListProductsUseCase(c Catalog, tel observability.Observability) *ListProductsUseCase {
	return &ListProductsUseCase{catalog: c, instrumented: newInstrumented(tel)}
}

func (uc *ListProductsUseCase) Execute(ctx context.Context, _ ListProductsQuery) ([]*product.Product, error) {
	var products []*product.Product
	err := uc.run(ctx, useCaseList, "ListProducts", func(_ context.Context, span trace.Span) []observability.Field {
		products = uc.catalog.Products()
		span.SetAttributes(attribute.Int("catalog.active_products", len(products)))
		return []observability.Field{observability.F("active_products", len(products))}
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

// TotalQuantityUseCase returns the summed stock of every product, active or not.
type TotalQuantityUseCase struct {
	catalog Catalog
	instrumented
}

func NewTotalQuantityUseCase(c Catalog, tel observability.Observability) *TotalQuantityUseCase {
	return &TotalQuantityUseCase{catalog: c, instrumented: newInstrumented(tel)}
}

func (uc *TotalQuantityUseCase) Execute(ctx context.Context, _ TotalQuantityQuery) (int, error) {
	var total int
	err := uc.run(ctx, useCaseTotal, "TotalQuantity", func(_ context.Context, span trace.Span) []observability.Field {
		total = uc.catalog.TotalQuantity()
		span.SetAttributes(attribute.Int("catalog.total_quantity", total))
		return []observability.Field{observability.F("total_quantity", total)}
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
