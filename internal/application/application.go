package application

import "context"

// UseCase is a single application operation taking a command or query and returning a result.
type UseCase[C any, R any] interface {
	Execute(ctx context.Context, cmd C) (R, error)
}

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeIgnored = "ignored"

	// SpanPrefix prefixes every use case span name.
	SpanPrefix = "UC."
)
