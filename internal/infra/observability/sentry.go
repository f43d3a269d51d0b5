package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

// InitSentry configures error reporting. Without a DSN it does nothing and
// CaptureError becomes a no-op. The returned function flushes pending events.
func InitSentry(dsn, environment, release string, logger *zap.Logger) func() {
	if dsn == "" {
		return func() {}
	}
	if environment == "" {
		environment = "production"
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     release,
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			// Never ship bearer tokens or statement contents.
			if event.Request != nil {
				delete(event.Request.Headers, "Authorization")
				event.Request.Data = ""
			}
			return event
		},
	})
	if err != nil {
		logger.Error("failed to initialize sentry", zap.Error(err))
		return func() {}
	}

	logger.Info("sentry enabled", zap.String("environment", environment))
	return func() { sentry.Flush(2 * time.Second) }
}

// SentryMiddleware gives every request its own hub and reports panics
// before re-raising them to chi's Recoverer.
func SentryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub := sentry.CurrentHub().Clone()
		hub.Scope().SetRequest(r)
		ctx := sentry.SetHubOnContext(r.Context(), hub)

		defer func() {
			if rec := recover(); rec != nil {
				hub.RecoverWithContext(ctx, rec)
				panic(rec)
			}
		}()

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CaptureError reports an unexpected error with the operation as a tag.
func CaptureError(ctx context.Context, operation string, err error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("operation", operation)
		scope.SetContext("error", map[string]interface{}{
			"type": fmt.Sprintf("%T", err),
		})
		hub.CaptureException(err)
	})
}

// SetUser attaches the authenticated user to the request's hub.
func SetUser(ctx context.Context, id, email string) {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.Scope().SetUser(sentry.User{ID: id, Email: email})
	}
}
