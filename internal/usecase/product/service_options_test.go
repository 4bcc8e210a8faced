package product

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"example.com/product-catalog/internal/pkg/clock"
)

type failingMeter struct {
	noop.Meter
}

func (failingMeter) Int64Counter(string, ...metric.Int64CounterOption) (metric.Int64Counter, error) {
	return nil, errors.New("instrument conflict")
}

func TestNewService_CounterErrorFallsBackToNoop(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	repo := newMockProductRepository()
	svc := NewService(NewMapper(clock.NewFixed(fixedNow)), repo,
		WithLogger(logger), WithMeter(failingMeter{}))

	id, err := svc.Create(context.Background(), validInput())

	require.NoError(t, err)
	require.Equal(t, repo.nextID, id)
	require.Contains(t, buf.String(), "instrument conflict")
}

func TestNewService_NilOptionsKeepDefaults(t *testing.T) {
	repo := newMockProductRepository()
	svc := NewService(NewMapper(nil), repo, WithLogger(nil), WithTracer(nil), WithMeter(nil))

	require.NotPanics(t, func() {
		_, _ = svc.Create(context.Background(), validInput())
		_ = svc.Delete(context.Background(), repo.nextID)
	})
}

func TestService_CountsOperations(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	svc := NewService(NewMapper(nil), newMockProductRepository(), WithMeter(provider.Meter("test")))
	ctx := context.Background()
	_, _ = svc.Create(ctx, validInput())
	_, _ = svc.Create(ctx, nil)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	require.Len(t, rm.ScopeMetrics[0].Metrics, 1)

	m := rm.ScopeMetrics[0].Metrics[0]
	require.Equal(t, "products.operations", m.Name)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	results := map[string]int64{}
	for _, dp := range sum.DataPoints {
		result, _ := dp.Attributes.Value("result")
		results[result.AsString()] += dp.Value
	}
	require.Equal(t, map[string]int64{"success": 1, "rejected": 1}, results)
}
