// Package telemetry records OpenTelemetry spans and metrics for tool calls.
//
// Instruments come from the global otel providers, so they are no-ops until
// the embedding process installs SDK providers (otel.SetTracerProvider,
// otel.SetMeterProvider).
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/ironsheep/photoshop-mcp"

// Metric names.
const (
	ToolCallsMetric    = "photoshop_mcp.tool.calls"
	ToolDurationMetric = "photoshop_mcp.tool.duration"
)

// ToolRecorder instruments tool invocations.
type ToolRecorder struct {
	tracer   trace.Tracer
	calls    metric.Int64Counter
	duration metric.Float64Histogram
}

// NewToolRecorder builds a recorder from the global providers. Instrument
// creation errors leave the affected instrument unset; recording then skips
// it.
func NewToolRecorder() *ToolRecorder {
	meter := otel.Meter(instrumentationName)
	r := &ToolRecorder{tracer: otel.Tracer(instrumentationName)}
	if c, err := meter.Int64Counter(ToolCallsMetric,
		metric.WithDescription("Number of tool calls by tool and outcome.")); err == nil {
		r.calls = c
	}
	if h, err := meter.Float64Histogram(ToolDurationMetric,
		metric.WithDescription("Tool call duration."),
		metric.WithUnit("s")); err == nil {
		r.duration = h
	}
	return r
}

// Call is one in-flight tool invocation.
type Call struct {
	r     *ToolRecorder
	tool  string
	span  trace.Span
	start time.Time
}

// Start opens a span for tool and returns the context carrying it.
func (r *ToolRecorder) Start(ctx context.Context, tool, callID string) (context.Context, *Call) {
	ctx, span := r.tracer.Start(ctx, "tool "+tool,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("photoshop_mcp.tool", tool),
			attribute.String("photoshop_mcp.call_id", callID),
		),
	)
	return ctx, &Call{r: r, tool: tool, span: span, start: time.Now()}
}

// End closes the span and records the call. errMsg is the failure message
// when the call did not succeed.
func (c *Call) End(ctx context.Context, success bool, errMsg string) {
	outcome := "success"
	if !success {
		outcome = "failure"
		c.span.SetStatus(codes.Error, errMsg)
	} else {
		c.span.SetStatus(codes.Ok, "")
	}
	c.span.SetAttributes(attribute.Bool("photoshop_mcp.success", success))
	c.span.End()

	attrs := metric.WithAttributes(
		attribute.String("tool", c.tool),
		attribute.String("outcome", outcome),
	)
	if c.r.calls != nil {
		c.r.calls.Add(ctx, 1, attrs)
	}
	if c.r.duration != nil {
		c.r.duration.Record(ctx, time.Since(c.start).Seconds(), attrs)
	}
}
