package observability

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// InitLogger initializes the global zerolog logger
func InitLogger(serviceName, env string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}).With().
			Str("service", serviceName).
			Logger()
	} else {
		logCtx := zerolog.New(os.Stdout).
			With().
			Timestamp().
			Caller().
			Str("service", serviceName)
		if env != "" {
			logCtx = logCtx.Str("env", env)
		}
		log.Logger = logCtx.Logger()
	}
}

// LoggerFromContext returns a logger with trace context
func LoggerFromContext(ctx context.Context) *zerolog.Logger {
	logger := log.With().Logger()

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		logger = logger.With().
			Str("trace_id", span.SpanContext().TraceID().String()).
			Str("span_id", span.SpanContext().SpanID().String()).
			Logger()
	}

	return &logger
}

// ComponentLogger returns the global logger tagged with a background
// component name (cache sweep, rebalancing) so its output is filterable
// next to request-scoped logs.
func ComponentLogger(name string) *zerolog.Logger {
	logger := log.With().Str("component", name).Logger()
	return &logger
}

// LeadLogger returns a context logger annotated with the lead being processed
func LeadLogger(ctx context.Context, leadID string) *zerolog.Logger {
	logger := LoggerFromContext(ctx).With().Str("lead_id", leadID).Logger()
	return &logger
}

// GetLogger returns the global logger
func GetLogger() *zerolog.Logger {
	return &log.Logger
}
