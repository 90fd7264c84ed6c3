// Package trace wires OpenTelemetry tracing (pack: steveyegge-beads'
// go.opentelemetry.io/otel stack) across cross-PD message hops (one span
// per mdproto send), giving the distributed metadata protocol (spec.md §4.7)
// end-to-end spans that correlate an M_CLONE/M_SAT push with the EDT or
// event that triggered it. This lives alongside, not instead of, the
// binary TraceObj stream of spec.md §6 (that stream is the core's own
// decoder-facing artifact and is a non-goal here beyond a minimal dump;
// OTel spans are the ambient "how do I see what the runtime is doing"
// story the Go ecosystem expects).
package trace

import (
	"context"
	"io"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

var (
	once     sync.Once
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
)

// Init installs a TracerProvider that writes spans to w (typically
// io.Discard in production, os.Stdout to print spans).
func Init(w io.Writer) {
	once.Do(func() {
		exp, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithoutTimestamps())
		if err != nil {
			// tracing is ambient observability, never fatal to the runtime
			provider = sdktrace.NewTracerProvider()
		} else {
			provider = sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
		}
		otel.SetTracerProvider(provider)
		tracer = provider.Tracer("ocr-runtime")
	})
}

func ensure() {
	if tracer == nil {
		Init(io.Discard)
	}
}

// Start opens a span, mirroring getCurrentEnv's job (spec.md §6) of
// tagging every message with its origin: callers pass the PD/EDT tag as
// the span name prefix.
func Start(ctx context.Context, name string) (context.Context, trace.Span) {
	ensure()
	return tracer.Start(ctx, name)
}

func Shutdown(ctx context.Context) {
	if provider != nil {
		_ = provider.Shutdown(ctx)
	}
}
