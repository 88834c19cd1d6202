package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records access-decision metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordDecision records one decision. A non-nil err means the request was denied.
	RecordDecision(ctx context.Context, meta RouteMeta, duration time.Duration, err error)
}

type metricsImpl struct {
	totalCount   metric.Int64Counter
	deniedCount  metric.Int64Counter
	durationHist metric.Float64Histogram
}

func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	totalCount, err := meter.Int64Counter(
		"gate.requests.total",
		metric.WithDescription("Total number of requests evaluated by the gate"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	deniedCount, err := meter.Int64Counter(
		"gate.requests.denied",
		metric.WithDescription("Number of requests denied by the gate"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"gate.check.duration_ms",
		metric.WithDescription("Time spent deciding whether to admit a request"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:   totalCount,
		deniedCount:  deniedCount,
		durationHist: durationHist,
	}, nil
}

func (m *metricsImpl) RecordDecision(ctx context.Context, meta RouteMeta, duration time.Duration, err error) {
	classOpt := metric.WithAttributes(attribute.String("gate.class", meta.Class))

	m.totalCount.Add(ctx, 1, classOpt)
	if err != nil {
		m.deniedCount.Add(ctx, 1, metric.WithAttributes(
			attribute.String("gate.class", meta.Class),
			attribute.String("gate.reason", err.Error()),
		))
	}

	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000, classOpt)
}

type noopMetrics struct{}

func (noopMetrics) RecordDecision(context.Context, RouteMeta, time.Duration, error) {}
