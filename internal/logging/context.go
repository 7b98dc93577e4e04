package logging

import (
	"context"
	"log/slog"
)

type contextKey int

const (
	operationIDKey contextKey = iota
	queryKey
)

// WithOperationID tags ctx with the poll operation identifier.
func WithOperationID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, operationIDKey, id)
}

// OperationIDFromContext returns the poll operation identifier, if any.
func OperationIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(operationIDKey).(string)
	return id, ok && id != ""
}

// WithQuery tags ctx with the widget query name.
func WithQuery(ctx context.Context, query string) context.Context {
	if query == "" {
		return ctx
	}
	return context.WithValue(ctx, queryKey, query)
}

// QueryFromContext returns the widget query name, if any.
func QueryFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	q, ok := ctx.Value(queryKey).(string)
	return q, ok && q != ""
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := OperationIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldOperationID, id))
	}
	if q, ok := QueryFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldQuery, q))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
