package logging

import (
	"context"
	"log/slog"

	"spritedeck/internal/faults"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventType classifies a log line for filtering (thumbnail_generated, load_failed, ...).
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to try next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldOperation names the engine operation being run.
	FieldOperation = "operation"
	// FieldRecordIndex is the 0-based position of the record in the catalog.
	FieldRecordIndex = "record_index"
	// FieldSourceID is the record's src value.
	FieldSourceID = "source_id"
	// FieldPath is the filesystem path involved.
	FieldPath = "path"
	// FieldCorrelationID ties together every log line of one batch run.
	FieldCorrelationID = "correlation_id"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if op, ok := faults.OperationFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldOperation, op))
	}
	if idx, ok := faults.RecordIndexFromContext(ctx); ok {
		fields = append(fields, slog.Int(FieldRecordIndex, idx))
	}
	if rid, ok := faults.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
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
