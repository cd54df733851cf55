package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldJobID is the standardized structured logging key for video job identifiers.
	FieldJobID = "job_id"
	// FieldRequestID is the standardized structured logging key for backend request identifiers.
	FieldRequestID = "request_id"
	// FieldEndpoint names the backend route a log line refers to.
	FieldEndpoint = "endpoint"
	// FieldStatusCode carries the HTTP status returned by the backend.
	FieldStatusCode = "status_code"
	// FieldEventType classifies a log line for filtering.
	FieldEventType = "event_type"
)

type contextKey int

const (
	requestIDKey contextKey = iota
	jobIDKey
)

// WithRequestID attaches a backend request identifier to ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// WithJobID attaches the video job being acted on to ctx.
func WithJobID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, jobIDKey, id)
}

// WithContext returns logger with the job and request identifiers stored in
// ctx attached.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if ctx == nil {
		return logger
	}
	var args []any
	if id, ok := ctx.Value(jobIDKey).(int64); ok {
		args = append(args, slog.Int64(FieldJobID, id))
	}
	if id, ok := ctx.Value(requestIDKey).(string); ok && id != "" {
		args = append(args, slog.String(FieldRequestID, id))
	}
	if len(args) == 0 {
		return logger
	}
	return logger.With(args...)
}
