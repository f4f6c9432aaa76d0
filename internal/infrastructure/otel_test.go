package infrastructure

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectChurnCounts(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "churn_risk_users" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "churn_risk_users should be an int64 sum")
			for _, dp := range sum.DataPoints {
				level, _ := dp.Attributes.Value(attribute.Key("churn_risk"))
				counts[level.AsString()] = dp.Value
			}
		}
	}
	return counts
}

func TestRecordChurnRiskUsersTracksLevelDeltas(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := CreateAnalyticsMetrics(provider.Meter(MeterName))
	require.NoError(t, err)

	ctx := context.Background()
	RecordChurnRiskUsers(ctx, metrics, nil, map[string]int{"low": 3, "high": 1})
	counts := collectChurnCounts(t, reader)
	assert.Equal(t, int64(3), counts["low"])
	assert.Equal(t, int64(1), counts["high"])

	// A later refresh replaces the first breakdown, including zeroing a
	// level that no longer has users.
	RecordChurnRiskUsers(ctx, metrics,
		map[string]int{"low": 3, "high": 1},
		map[string]int{"low": 2, "medium": 1})
	counts = collectChurnCounts(t, reader)
	assert.Equal(t, int64(2), counts["low"])
	assert.Equal(t, int64(1), counts["medium"])
	assert.Equal(t, int64(0), counts["high"])
}

func TestRecordChurnRiskUsersNilMetricsIsNoop(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordChurnRiskUsers(context.Background(), nil, nil, map[string]int{"low": 1})
	})
}
