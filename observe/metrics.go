package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names.
const (
	MetricDecisions      = "auth.decisions.total"
	MetricVerifyDuration = "auth.verify.duration_ms"
)

// Metrics records authentication decision metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordDecision records one check with its outcome and duration.
	RecordDecision(ctx context.Context, meta CheckMeta, out Outcome, duration time.Duration)
}

type metricsImpl struct {
	decisions    metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewMetrics creates a Metrics instance backed by meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	decisions, err := meter.Int64Counter(
		MetricDecisions,
		metric.WithDescription("Authentication decisions by reason"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		MetricVerifyDuration,
		metric.WithDescription("Token verification duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		decisions:    decisions,
		durationHist: durationHist,
	}, nil
}

// RecordDecision increments the decision counter and records the duration.
// Attributes are low-cardinality: subjects are never attached.
func (m *metricsImpl) RecordDecision(ctx context.Context, meta CheckMeta, out Outcome, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("auth.component", meta.Component),
		attribute.String("auth.reason", out.reason()),
		attribute.Bool("auth.allowed", out.Allowed),
	)

	m.decisions.Add(ctx, 1, attrs)
	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics { return nopMetrics{} }

type nopMetrics struct{}

func (nopMetrics) RecordDecision(context.Context, CheckMeta, Outcome, time.Duration) {}
