package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"example.com/product-catalog/internal/config"
)

var testOTLP = config.OTLPConfig{ServiceName: "product-catalog", Environment: "test"}

func TestNewLogger_InjectsTraceContext(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, config.LogConfig{Level: "debug", Format: "json"}, testOTLP)
	require.NoError(t, err)

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	logger.InfoContext(ctx, "inside span")
	span.End()

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, span.SpanContext().TraceID().String(), rec["trace_id"])
	require.Equal(t, span.SpanContext().SpanID().String(), rec["span_id"])
	require.Equal(t, "product-catalog", rec["service.name"])
	require.Equal(t, "test", rec["environment"])
}

func TestNewLogger_NoSpan(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, config.LogConfig{Level: "info", Format: "json"}, testOTLP)
	require.NoError(t, err)

	logger.Info("plain")

	require.NotContains(t, buf.String(), "trace_id")
}

func TestNewLogger_LevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, config.LogConfig{Level: "warn", Format: "text"}, testOTLP)
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept", slog.String("product_id", "42"))

	out := buf.String()
	require.NotContains(t, out, "dropped")
	require.True(t, strings.Contains(out, "msg=kept"), out)
	require.Contains(t, out, "product_id=42")
}

func TestNewLogger_BadLevel(t *testing.T) {
	_, err := NewLogger(&bytes.Buffer{}, config.LogConfig{Level: "loud"}, testOTLP)
	require.Error(t, err)
}

func TestNew_WithoutEndpoint(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	tel, err := New(context.Background(), testOTLP, logger)
	require.NoError(t, err)
	require.NotNil(t, tel.TracerProvider)
	require.NotNil(t, tel.MeterProvider)

	require.NoError(t, tel.Shutdown(context.Background()))
}
