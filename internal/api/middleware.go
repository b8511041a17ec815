package api

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/example/lablink/internal/apierror"
	"github.com/example/lablink/internal/application"
	"github.com/example/lablink/internal/logging"
	"github.com/example/lablink/internal/metrics"
)

// SessionResolver turns an Authorization header value into a user.
type SessionResolver interface {
	CurrentUser(ctx context.Context, authorization string) (application.User, error)
}

// RequireSession admits a call only when its bearer token resolves to a user.
func RequireSession(sessions SessionResolver) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, call *Call) (Response, error) {
			header := call.Header.Get("Authorization")
			user, err := sessions.CurrentUser(ctx, header)
			if err != nil {
				return Response{}, err
			}

			call.User = user
			call.Token, _ = application.BearerToken(header)
			return next(ctx, call)
		}
	}
}

// RequestLogger attaches a request scoped logger carrying a monotonically
// increasing request_id and logs the start and completion of every call.
func RequestLogger(base *slog.Logger) Middleware {
	if base == nil {
		base = slog.Default()
	}
	var counter atomic.Uint64

	return func(next Handler) Handler {
		return func(ctx context.Context, call *Call) (Response, error) {
			id := counter.Add(1)
			logger := base.With(
				"request_id", id,
				"method", call.Method,
				"path", call.Path,
			)

			ctx = logging.ContextWithLogger(ctx, logger)
			start := time.Now()
			logger.DebugContext(ctx, "request started")
			resp, err := next(ctx, call)
			if err != nil {
				logger.InfoContext(ctx, "request failed",
					"route", call.Route,
					"error", err,
					"error_kind", application.ErrorKind(err),
					"duration", time.Since(start),
				)
				return resp, err
			}
			logger.InfoContext(ctx, "request completed",
				"route", call.Route,
				"status", resp.Status,
				"duration", time.Since(start),
			)
			return resp, nil
		}
	}
}

// Metrics records call counts and timings per route pattern and error code.
func Metrics(recorder *metrics.Recorder) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, call *Call) (Response, error) {
			start := time.Now()
			resp, err := next(ctx, call)

			route := call.Route
			if route == "" {
				route = "unmatched"
			}
			code := "OK"
			if err != nil {
				code = string(apierror.Normalize(err).Code)
			}
			recorder.ObserveRequest(route, code, time.Since(start))
			return resp, err
		}
	}
}
