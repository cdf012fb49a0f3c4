package tracer

import (
	"context"
	"testing"

	"brdgenius-be/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestInitTracerDisabled(t *testing.T) {
	shutdown := InitTracer(config.OtelConfig{Enabled: false})
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracerEnabled(t *testing.T) {
	// the exporter connects lazily, so no collector is needed
	shutdown := InitTracer(config.OtelConfig{Enabled: true, Endpoint: "127.0.0.1:1"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}
