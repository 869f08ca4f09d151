package workerpresentation

import (
	"context"

	domoutbox "github.com/Zhima-Mochi/minishop-inventory/app/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-inventory/app/internal/observability"
	"github.com/Zhima-Mochi/minishop-inventory/app/internal/observability/logctx"
	"github.com/google/uuid"
)

// EventContext returns a hook that injects a per-delivery logger for event handlers.
// Fields: event name, a generated event_id, and trace_id/span_id when the context carries
// a valid span.
func EventContext(base observability.Logger) func(ctx context.Context, e domoutbox.Event) context.Context {
	if base == nil {
		base = observability.NopLogger()
	}
	return func(ctx context.Context, e domoutbox.Event) context.Context {
		fields := make([]observability.Field, 0, 4)
		fields = append(fields,
			observability.F("event", e.EventName()),
			observability.F("event_id", uuid.NewString()),
		)
		fields = append(fields, logctx.TraceFields(ctx)...)

		return logctx.With(ctx, logctx.FromOr(ctx, base).With(fields...))
	}
}
