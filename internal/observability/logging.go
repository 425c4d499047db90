// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger to provide specialized logging methods.
type Logger struct {
	*slog.Logger
}

// GlobalLogger is the default logger instance for the application.
var GlobalLogger *Logger

func init() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	GlobalLogger = &Logger{Logger: slog.New(handler)}
}

// SetLogger replaces the logger used by repository and service logging.
func SetLogger(l *slog.Logger) {
	if l != nil {
		GlobalLogger = &Logger{Logger: l}
	}
}

// LogContextKey is a type for context keys used by the logging package.
type LogContextKey string

// CorrelationID is the context key for the correlation id.
const CorrelationID LogContextKey = "correlation_id"

// LoggingConfig defines which types of automated logging are enabled.
type LoggingConfig struct {
	EnableRepoLogging    bool
	EnableServiceLogging bool
}

// Config holds the current logging configuration.
var Config = LoggingConfig{
	EnableRepoLogging:    true,
	EnableServiceLogging: true,
}

// WithCorrelationID returns a new context with the given correlation ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationID, id)
}

// ExtractCorrelationID retrieves the correlation ID from the context.
func ExtractCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationID).(string); ok {
		return id
	}
	return ""
}

func attrsFor(ctx context.Context, base []any, fields map[string]any) []any {
	if id := ExtractCorrelationID(ctx); id != "" {
		base = append(base, slog.String("correlation_id", id))
	}
	for k, v := range fields {
		base = append(base, slog.Any(k, v))
	}
	return base
}

// RepoLogger provides structured logging for repository operations.
type RepoLogger struct {
	tableName string
}

// NewRepoLogger creates a new RepoLogger for the given table.
func NewRepoLogger(tableName string) *RepoLogger {
	return &RepoLogger{tableName: tableName}
}

func (l *RepoLogger) log(ctx context.Context, op string, fields map[string]any) {
	if !Config.EnableRepoLogging {
		return
	}
	attrs := attrsFor(ctx, []any{
		slog.String("table", l.tableName),
		slog.String("operation", op),
	}, fields)
	GlobalLogger.DebugContext(ctx, "repository "+op, attrs...)
}

// LogCreate logs a repository create operation.
func (l *RepoLogger) LogCreate(ctx context.Context, fields map[string]any) {
	l.log(ctx, "create", fields)
}

// LogUpdate logs a repository update operation.
func (l *RepoLogger) LogUpdate(ctx context.Context, fields map[string]any) {
	l.log(ctx, "update", fields)
}

// LogDelete logs a repository delete operation.
func (l *RepoLogger) LogDelete(ctx context.Context, fields map[string]any) {
	l.log(ctx, "delete", fields)
}

// LogError logs a failed repository operation.
func (l *RepoLogger) LogError(ctx context.Context, op string, err error, fields map[string]any) {
	attrs := attrsFor(ctx, []any{
		slog.String("table", l.tableName),
		slog.String("operation", op),
		slog.String("error", err.Error()),
	}, fields)
	GlobalLogger.ErrorContext(ctx, "repository operation failed", attrs...)
}

// StructuredLogger provides a general-purpose structured logger.
type StructuredLogger struct{}

// NewStructuredLogger creates a new StructuredLogger instance.
func NewStructuredLogger() *StructuredLogger {
	return &StructuredLogger{}
}

// LogServiceCall logs a service method call.
func (l *StructuredLogger) LogServiceCall(ctx context.Context, service, method string, fields map[string]any) {
	if !Config.EnableServiceLogging {
		return
	}
	attrs := attrsFor(ctx, []any{
		slog.String("service", service),
		slog.String("method", method),
		slog.String("type", "service_call"),
	}, fields)
	GlobalLogger.InfoContext(ctx, "service call", attrs...)
}

// LogPartialFailure records an item dropped from a fan-out result.
func (l *StructuredLogger) LogPartialFailure(ctx context.Context, operation string, err error, fields map[string]any) {
	attrs := attrsFor(ctx, []any{
		slog.String("operation", operation),
		slog.String("type", "partial_failure"),
		slog.String("error", err.Error()),
	}, fields)
	GlobalLogger.WarnContext(ctx, "item excluded from result", attrs...)
	FanoutExclusions.WithLabelValues(operation).Inc()
}
