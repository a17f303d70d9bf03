package errs

import (
	"context"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Handle logs an unexpected error with its goerr values and reports it to
// Sentry when a client is configured.
func Handle(ctx context.Context, msg string, err error) {
	if err == nil {
		return
	}

	ctxlog.From(ctx).Error(msg, "error", err)

	hub := sentry.CurrentHub()
	if hub.Client() == nil {
		return
	}

	hub = hub.Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("message", msg)
		if values := goerr.Values(err); len(values) > 0 {
			scope.SetContext("values", sentry.Context(values))
		}
	})
	if evID := hub.CaptureException(err); evID != nil {
		ctxlog.From(ctx).Info("Sent error to Sentry", "event_id", *evID)
	}
}
