// Package observability provides structured request logging and in-process
// metrics for the chat pipeline.
package observability

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	// LogFieldRequestID is the field name for request ID.
	LogFieldRequestID = "request_id"
	// LogFieldUserID is the field name for user ID.
	LogFieldUserID = "user_id"
	// LogFieldChannel is the field name for the inbound channel (api, whatsapp).
	LogFieldChannel = "channel"
	// LogFieldPhase is the field name for the session phase handling the turn.
	LogFieldPhase = "phase"
	// LogFieldDuration is the field name for duration in milliseconds.
	LogFieldDuration = "duration_ms"
	// LogFieldProvider is the field name for the completion provider.
	LogFieldProvider = "provider"
)

// RequestContext carries the identifiers of one chat turn through the
// pipeline for structured logging.
type RequestContext struct {
	RequestID string
	UserID    string
	Channel   string
	StartTime time.Time
	Logger    *slog.Logger
}

// NewRequestContext creates a request context with a generated request ID.
func NewRequestContext(logger *slog.Logger, channel, userID string) *RequestContext {
	return &RequestContext{
		RequestID: uuid.New().String(),
		UserID:    userID,
		Channel:   channel,
		StartTime: time.Now(),
		Logger:    logger,
	}
}

// Info logs an info message with the request's base fields.
func (r *RequestContext) Info(msg string, attrs ...slog.Attr) {
	r.Logger.LogAttrs(context.Background(), slog.LevelInfo, msg, r.withBase(attrs)...)
}

// Warn logs a warning with the request's base fields.
func (r *RequestContext) Warn(msg string, attrs ...slog.Attr) {
	r.Logger.LogAttrs(context.Background(), slog.LevelWarn, msg, r.withBase(attrs)...)
}

// Error logs an error with the request's base fields.
func (r *RequestContext) Error(msg string, err error, attrs ...slog.Attr) {
	attrs = append(attrs, slog.String("error", err.Error()))
	r.Logger.LogAttrs(context.Background(), slog.LevelError, msg, r.withBase(attrs)...)
}

// DurationMs returns the elapsed time in milliseconds.
func (r *RequestContext) DurationMs() int64 {
	return time.Since(r.StartTime).Milliseconds()
}

func (r *RequestContext) withBase(attrs []slog.Attr) []slog.Attr {
	base := []slog.Attr{
		slog.String(LogFieldRequestID, r.RequestID),
		slog.String(LogFieldUserID, r.UserID),
		slog.String(LogFieldChannel, r.Channel),
	}
	return append(base, attrs...)
}

type ctxKey struct{}

// WithRequestContext attaches the request context to ctx.
func WithRequestContext(ctx context.Context, reqCtx *RequestContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, reqCtx)
}

// FromContext extracts the request context from ctx.
func FromContext(ctx context.Context) (*RequestContext, bool) {
	reqCtx, ok := ctx.Value(ctxKey{}).(*RequestContext)
	return reqCtx, ok
}

// TurnLogger returns a logger carrying the request fields attached to ctx by
// WithRequestContext, or the default logger when the context carries none.
// Components below the engine use it so their log lines stay correlated with
// the turn that triggered them.
func TurnLogger(ctx context.Context) *slog.Logger {
	reqCtx, ok := FromContext(ctx)
	if !ok {
		return slog.Default()
	}
	return reqCtx.Logger.With(
		slog.String(LogFieldRequestID, reqCtx.RequestID),
		slog.String(LogFieldUserID, reqCtx.UserID),
		slog.String(LogFieldChannel, reqCtx.Channel),
	)
}
