package logger

import (
	"context"

	"go.uber.org/zap"
)

type contextKey struct{}

// ToContext stores l in ctx.
func ToContext(ctx context.Context, l *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the logger stored in ctx, or the global logger.
func FromContext(ctx context.Context) *zap.SugaredLogger {
	if l, ok := ctx.Value(contextKey{}).(*zap.SugaredLogger); ok {
		return l
	}
	return Get()
}

// WithContext adds key/value pairs to the logger in ctx and returns both.
func WithContext(ctx context.Context, keysAndValues ...any) (*zap.SugaredLogger, context.Context) {
	l := FromContext(ctx).With(keysAndValues...)
	return l, ToContext(ctx, l)
}

type correlationKey struct{}

// WithCorrelationID tags ctx with the id of the update or request being
// handled and adds it to the context logger under key.
func WithCorrelationID(ctx context.Context, key, id string) (*zap.SugaredLogger, context.Context) {
	ctx = context.WithValue(ctx, correlationKey{}, id)
	return WithContext(ctx, key, id)
}

// CorrelationID returns the id set by WithCorrelationID, or "".
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}
