package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestToolRecorderWithNoopProviders(t *testing.T) {
	r := NewToolRecorder()
	require.NotNil(t, r)

	ctx, call := r.Start(context.Background(), "photoshop_resize_image", "call-1")
	require.NotNil(t, call)
	assert.Equal(t, "photoshop_resize_image", call.tool)
	assert.NotNil(t, trace.SpanFromContext(ctx))

	assert.NotPanics(t, func() { call.End(ctx, false, "No active document") })

	_, call = r.Start(context.Background(), "photoshop_get_session_info", "call-2")
	assert.NotPanics(t, func() { call.End(context.Background(), true, "") })
}
