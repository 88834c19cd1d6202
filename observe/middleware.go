package observe

import (
	"context"
	"time"
)

// CheckFunc decides whether the request described by route may proceed.
// A nil error admits the request; any error denies it.
type CheckFunc func(ctx context.Context, route RouteMeta) error

// Middleware wraps a CheckFunc with tracing, metrics, and logging.
//
// Contract:
//   - Concurrency: Wrap returns a CheckFunc safe for concurrent use.
//   - Errors: errors from the wrapped function are recorded and returned unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a Middleware from its parts.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// NoopMiddleware returns a Middleware that records nothing.
func NoopMiddleware() *Middleware {
	return NewMiddleware(newNoopTracer(), noopMetrics{}, &noopLogger{})
}

// Wrap instruments fn. Admissions log at debug, denials at warn.
func (m *Middleware) Wrap(fn CheckFunc) CheckFunc {
	return func(ctx context.Context, route RouteMeta) error {
		ctx, span := m.tracer.StartSpan(ctx, route)
		start := time.Now()

		err := fn(ctx, route)

		duration := time.Since(start)
		m.tracer.EndSpan(span, err)
		m.metrics.RecordDecision(ctx, route, duration, err)

		routeLogger := m.logger.WithRoute(route)
		if err != nil {
			routeLogger.Warn(ctx, "request denied", Field{Key: "reason", Value: err.Error()})
		} else {
			routeLogger.Debug(ctx, "request admitted")
		}

		return err
	}
}

// MiddlewareFromObserver builds a Middleware from an Observer's tracer, meter and logger.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewMiddleware(newTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
