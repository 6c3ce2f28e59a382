package faults

import "context"

type contextKey string

const (
	recordIndexKey contextKey = "record_index"
	operationKey   contextKey = "operation"
	requestIDKey   contextKey = "request_id"
)

// WithRecordIndex annotates context with the record position being processed.
func WithRecordIndex(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, recordIndexKey, index)
}

// RecordIndexFromContext extracts the record position if present.
func RecordIndexFromContext(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(recordIndexKey).(int)
	return v, ok
}

// WithOperation annotates context with the operation name (generate, watch, ...).
func WithOperation(ctx context.Context, op string) context.Context {
	if op == "" {
		return ctx
	}
	return context.WithValue(ctx, operationKey, op)
}

// OperationFromContext returns the operation name if present.
func OperationFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(operationKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
