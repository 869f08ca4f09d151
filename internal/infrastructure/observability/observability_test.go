package observability

import (
	"context"
	"testing"

	"github.com/Zhima-Mochi/minishop-inventory/app/internal/observability"
	"github.com/Zhima-Mochi/minishop-inventory/app/internal/observability/observabilitytest"
	"github.com/stretchr/testify/assert"
)

func TestNew_FallsBackToNop(t *testing.T) {
	p := Nop()

	assert.NotNil(t, p.Tracer())
	assert.NotNil(t, p.Logger())

	// unknown instruments must be safe to use
	p.Metrics().Counter("missing_total").Add(1, observability.L("k", "v"))
	p.Metrics().Histogram("missing_seconds").Bind().Observe(1)

	ctx, span := p.Tracer().Start(context.Background(), "UC.Test")
	span.End()
	assert.False(t, span.SpanContext().IsValid())
	assert.NotNil(t, ctx)
}

func TestNew_ServesRegisteredInstruments(t *testing.T) {
	rec := observabilitytest.NewRecorder()
	p := New(nil, rec.Logger(),
		map[observability.MetricKey]observability.Counter{
			observability.MStockSoldOut: rec.Metrics().Counter(observability.MStockSoldOut),
			"nil_total":                 nil,
		},
		map[observability.MetricKey]observability.Histogram{
			observability.MUsecaseDuration: rec.Metrics().Histogram(observability.MUsecaseDuration),
		},
	)

	p.Metrics().Counter(observability.MStockSoldOut).Add(2)
	p.Metrics().Counter("nil_total").Add(1)
	p.Metrics().Histogram(observability.MUsecaseDuration).Observe(0.5, observability.L("use_case", "x"))
	p.Logger().Info("hello")

	assert.Equal(t, 2.0, rec.Count(observability.MStockSoldOut))
	assert.Equal(t, []float64{0.5}, rec.Observations(observability.MUsecaseDuration, "use_case=x"))
	assert.Len(t, rec.Entries("hello"), 1)
}
