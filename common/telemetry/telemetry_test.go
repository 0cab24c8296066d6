package telemetry

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_WithoutEndpointKeepsMetricsInProcess(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	tel, err := Init(context.Background(), Options{
		ServiceName:    "registration-service",
		ServiceVersion: "test",
		Env:            "test",
	}, logger)
	require.NoError(t, err)

	assert.Nil(t, tel.MeterProvider)
	require.NotNil(t, tel.Metrics)
	assert.NotNil(t, tel.Metrics.Database)
	assert.NoError(t, tel.Shutdown(context.Background(), logger))
}
