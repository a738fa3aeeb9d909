package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled tracing", func(t *testing.T) {
		tracer, shutdown, err := Setup(ctx, DefaultTracingConfig())
		require.NoError(t, err)
		require.NotNil(t, tracer)

		_, span := tracer.Start(ctx, "test")
		assert.False(t, span.SpanContext().IsValid())
		span.End()

		assert.NoError(t, shutdown(ctx))
	})

	t.Run("enabled tracing with unreachable collector", func(t *testing.T) {
		config := DefaultTracingConfig()
		config.Enabled = true
		config.ZipkinURL = "http://invalid-url:9411/api/v2/spans"

		tracer, shutdown, err := Setup(ctx, config)
		require.NoError(t, err)
		require.NotNil(t, tracer)

		_, span := tracer.Start(ctx, "test")
		assert.True(t, span.SpanContext().IsValid())
		span.End()

		// Export fails, but shutdown must return.
		_ = shutdown(ctx)
	})

	t.Run("invalid collector url", func(t *testing.T) {
		config := DefaultTracingConfig()
		config.Enabled = true
		config.ZipkinURL = "::not a url"

		_, _, err := Setup(ctx, config)
		assert.Error(t, err)
	})
}
