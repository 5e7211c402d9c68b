package middleware

import "context"

type contextKey string

const (
	ctxSessionID contextKey = "session_id"
	ctxTable     contextKey = "table"
)

func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}

func TableFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxTable).(string); ok {
		return v
	}
	return ""
}

// WithSessionID injects the device session identifier into the context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSessionID, sessionID)
}

// WithTable injects the table identifier into the context for downstream handlers.
func WithTable(ctx context.Context, table string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxTable, table)
}
