package httppresentation

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Zhima-Mochi/minishop-inventory/app/internal/observability"
	"github.com/Zhima-Mochi/minishop-inventory/app/internal/observability/logctx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const requestIDHeader = "X-Request-ID"

// ObservabilityMiddleware extracts W3C trace context, injects a request-scoped logger,
// echoes X-Request-ID and records http_requests_total / http_request_duration_seconds.
// route is the low-cardinality label for everything served by next.
func ObservabilityMiddleware(route string, tel observability.Observability) func(http.Handler) http.Handler {
	base := observability.NopLogger()
	metrics := observability.NopMetrics()
	if tel != nil {
		base = tel.Logger()
		metrics = tel.Metrics()
	}
	requests := metrics.Counter(observability.MHTTPRequests)
	durations := metrics.Histogram(observability.MHTTPDuration)
	prop := otel.GetTextMapPropagator()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := prop.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			rid := r.Header.Get(requestIDHeader)
			if rid == "" {
				rid = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, rid)

			fields := []observability.Field{
				observability.F("request_id", rid),
				observability.F("route", route),
			}
			fields = append(fields, logctx.TraceFields(ctx)...)
			reqLogger := base.With(fields...)
			ctx = logctx.With(ctx, reqLogger)

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(ctx))
			lat := time.Since(start).Seconds()

			status := strconv.Itoa(rec.status)
			requests.Add(1,
				observability.L("method", r.Method),
				observability.L("route", route),
				observability.L("status", status),
			)
			durations.Observe(lat,
				observability.L("method", r.Method),
				observability.L("route", route),
			)
			reqLogger.Debug("http_request_done",
				observability.F("method", r.Method),
				observability.F("status", rec.status),
				observability.F("latency_seconds", lat),
			)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
