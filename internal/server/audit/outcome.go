package audit

import (
	"context"
	"sync/atomic"
)

type outcomeKey struct{}

type outcome struct {
	failed atomic.Bool
}

func withOutcome(ctx context.Context) context.Context {
	return context.WithValue(ctx, outcomeKey{}, &outcome{})
}

// MarkFailed flags the audited request as unsuccessful even when its HTTP
// status is a success, as with a rejected GraphQL mutation. Outside an
// audited request it does nothing.
func MarkFailed(ctx context.Context) {
	if o, ok := ctx.Value(outcomeKey{}).(*outcome); ok {
		o.failed.Store(true)
	}
}

func markedFailed(ctx context.Context) bool {
	o, ok := ctx.Value(outcomeKey{}).(*outcome)
	return ok && o.failed.Load()
}
