package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey int

const loggerKey contextKey = 0

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from context, or returns the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if logger, ok := Lookup(ctx); ok {
		return logger
	}
	return Default()
}

// Lookup returns the logger stored in ctx, if any.
func Lookup(ctx context.Context) (*zerolog.Logger, bool) {
	if ctx == nil {
		return nil, false
	}
	logger, ok := ctx.Value(loggerKey).(*zerolog.Logger)
	return logger, ok && logger != nil
}

// FromContextOr returns the logger stored in ctx, or fallback when there is
// none. A nil fallback means the default logger.
func FromContextOr(ctx context.Context, fallback *zerolog.Logger) *zerolog.Logger {
	if logger, ok := Lookup(ctx); ok {
		return logger
	}
	if fallback != nil {
		return fallback
	}
	return Default()
}

// WithRunID tags the context, and its logger, with the id of one
// reconciliation run so every line of a poll cycle can be correlated.
func WithRunID(ctx context.Context, runID string) context.Context {
	return WithField(ctx, "run_id", runID)
}

// WithField adds a single field to the logger in the context.
func WithField(ctx context.Context, key string, value any) context.Context {
	logCtx := addField(FromContext(ctx).With(), key, value)
	newLogger := logCtx.Logger()
	return WithLogger(ctx, &newLogger)
}

// WithReference adds the requisition reference to the logger.
func WithReference(ctx context.Context, reference string) context.Context {
	return WithField(ctx, "reference", reference)
}

// WithRequisition adds the requisition id to the logger.
func WithRequisition(ctx context.Context, requisitionID string) context.Context {
	return WithField(ctx, "requisition_id", requisitionID)
}

// WithAccount adds the account id to the logger.
func WithAccount(ctx context.Context, accountID string) context.Context {
	return WithField(ctx, "account_id", accountID)
}

// WithInstitution adds the institution id to the logger.
func WithInstitution(ctx context.Context, institutionID string) context.Context {
	return WithField(ctx, "institution_id", institutionID)
}
