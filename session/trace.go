package session

import (
	"context"

	"github.com/opentracing/opentracing-go"
)

// startSpan opens a span for one of the session's traced operations (index
// build, checkpoint access, subseq/fetch), using whatever
// opentracing.Tracer is globally registered. cmd/fastx registers the
// Datadog tracer (github.com/DataDog/dd-trace-go/opentracer) as the global
// tracer at startup; session itself only depends on the opentracing-go
// interface, so it works unmodified against a no-op tracer in tests.
func startSpan(ctx context.Context, operation string) (opentracing.Span, context.Context) {
	return opentracing.StartSpanFromContext(ctx, operation)
}

// traceOperation runs fn inside a span named operation, tagging it on
// error. Used to wrap index build and checkpoint-resume calls.
func (s *Session) traceOperation(ctx context.Context, operation string, fn func() error) error {
	span, _ := startSpan(ctx, operation)
	defer span.Finish()
	if err := fn(); err != nil {
		span.SetTag("error", true)
		return err
	}
	return nil
}
