package httpapi

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var apiTracer = otel.Tracer("prediction-league/internal/interfaces/httpapi")

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() {
		// Untraced request (health probe or filtered route). Helpers must
		// not become root spans of their own.
		return ctx, parent
	}
	if !strings.HasPrefix(name, "httpapi.Handler.") {
		// The caller defers End, which must never close the parent.
		return ctx, noop.Span{}
	}
	return apiTracer.Start(ctx, name)
}
