package log

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Canonical field names.
const (
	FieldComponent     = "component"
	FieldCorrelationID = "correlation_id"
	FieldExtractor     = "extractor"
	FieldVideoID       = "video_id"
	FieldStage         = "stage"
	FieldURL           = "url"
)

type ctxKey string

const correlationIDKey ctxKey = "correlation_id"

// ContextWithCorrelationID stores the provided correlation ID in the context.
// An empty id is replaced by a fresh random one.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if id == "" {
		id = uuid.NewString()
	}
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationIDFromContext extracts the correlation ID from context if present.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(correlationIDKey).(string); ok {
		return v
	}
	return ""
}

// WithContext enriches the supplied logger with correlation fields from context.
func WithContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	cid := CorrelationIDFromContext(ctx)
	if cid == "" {
		return logger
	}
	return logger.With().Str(FieldCorrelationID, cid).Logger()
}
