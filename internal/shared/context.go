package shared

import "context"

type ctxKey int

const actorKey ctxKey = iota

// WithActor stores the authenticated employee id on the context.
func WithActor(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, actorKey, id)
}

// ActorID returns the authenticated employee id, or 0 when anonymous.
func ActorID(ctx context.Context) int64 {
	id, _ := ctx.Value(actorKey).(int64)
	return id
}
