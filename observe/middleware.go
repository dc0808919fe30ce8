package observe

import (
	"context"
	"time"
)

// CheckFunc performs one authentication check.
type CheckFunc func(ctx context.Context, meta CheckMeta) Outcome

// Middleware wraps checks with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: Wrap returns a CheckFunc safe for concurrent use.
//   - Context: the span context is propagated to the wrapped check.
//   - Ownership: the Outcome is returned unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
	now     func() time.Time
}

// NewMiddleware creates a Middleware. Nil components are replaced with no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = NewTracer(nil)
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Wrap instruments fn.
func (m *Middleware) Wrap(fn CheckFunc) CheckFunc {
	return func(ctx context.Context, meta CheckMeta) Outcome {
		ctx, span := m.tracer.StartSpan(ctx, meta)

		start := m.now()
		out := fn(ctx, meta)
		duration := m.now().Sub(start)

		m.tracer.EndSpan(span, out)
		m.metrics.RecordDecision(ctx, meta, out, duration)
		m.log(ctx, meta, out, duration)

		return out
	}
}

func (m *Middleware) log(ctx context.Context, meta CheckMeta, out Outcome, duration time.Duration) {
	fields := []Field{
		F("component", meta.Component),
		F("reason", out.reason()),
		F("duration_ms", float64(duration.Microseconds())/1000),
	}
	if meta.RemoteAddr != "" {
		fields = append(fields, F("remote_addr", meta.RemoteAddr))
	}

	switch {
	case out.Allowed:
		fields = append(fields, F("subject", out.Subject))
		m.logger.Info(ctx, "auth allowed", fields...)
	case out.Reason == "secret_unavailable":
		m.logger.Error(ctx, "auth denied: signing secret not configured", fields...)
	default:
		if out.Err != nil {
			fields = append(fields, F("error", out.Err))
		}
		m.logger.Warn(ctx, "auth denied", fields...)
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
