package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// SpanVerify is the span name for a token check.
const SpanVerify = "auth.verify"

// CheckMeta describes the check being performed.
type CheckMeta struct {
	Component  string // emitting component, e.g. "gateway" (required)
	Scheme     string // credential scheme, e.g. "bearer"
	Path       string // request path of the check endpoint (optional)
	RemoteAddr string // peer address (optional)
}

// Validate reports whether the metadata is usable.
func (m CheckMeta) Validate() error {
	if m.Component == "" {
		return ErrMissingComponent
	}
	return nil
}

// Outcome is the result of a check as seen by telemetry.
type Outcome struct {
	Allowed bool
	Reason  string // machine-readable reason; "none" on allow
	Subject string // authenticated subject; empty on deny
	Err     error  // underlying cause of a denial, if any
}

func (o Outcome) reason() string {
	if o.Reason == "" {
		if o.Allowed {
			return "none"
		}
		return "unknown"
	}
	return o.Reason
}

// Tracer wraps OpenTelemetry tracing for token checks.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts an auth.verify span.
	StartSpan(ctx context.Context, meta CheckMeta) (context.Context, trace.Span)

	// EndSpan annotates the span with the outcome and ends it.
	EndSpan(span trace.Span, out Outcome)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	if t == nil {
		t = tracenoop.NewTracerProvider().Tracer("noop")
	}
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartSpan(ctx context.Context, meta CheckMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("auth.component", meta.Component),
	}
	if meta.Scheme != "" {
		attrs = append(attrs, attribute.String("auth.scheme", meta.Scheme))
	}
	if meta.Path != "" {
		attrs = append(attrs, attribute.String("url.path", meta.Path))
	}

	return t.tracer.Start(ctx, SpanVerify,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpan marks denials as errors. The subject is recorded on allow; the
// credential never is.
func (t *tracerImpl) EndSpan(span trace.Span, out Outcome) {
	span.SetAttributes(
		attribute.Bool("auth.allowed", out.Allowed),
		attribute.String("auth.reason", out.reason()),
	)
	if out.Allowed {
		if out.Subject != "" {
			span.SetAttributes(attribute.String("auth.subject", out.Subject))
		}
		span.SetStatus(codes.Ok, "")
	} else {
		span.SetStatus(codes.Error, out.reason())
		if out.Err != nil {
			span.RecordError(out.Err)
		}
	}
	span.End()
}
