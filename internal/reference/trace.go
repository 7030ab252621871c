package reference

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var referenceTracer = otel.Tracer("tournament-admin/internal/reference")
var referenceNoopSpan = trace.SpanFromContext(context.Background())

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() {
		return ctx, referenceNoopSpan
	}
	return referenceTracer.Start(ctx, name)
}
