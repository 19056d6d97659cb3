package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("outcome", "ok"),
		attribute.String("user_id", "456"),
		attribute.String("reason", "invalid_image_format"),
	)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "outcome" && attrs[1].Key != "outcome" {
		t.Fatalf("expected outcome to be retained")
	}
	if attrs[0].Key != "reason" && attrs[1].Key != "reason" {
		t.Fatalf("expected reason to be retained")
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.RecordRatingSubmission(context.Background(), "ok")
	m.RecordOrderEmail(context.Background(), "error", "transport_failed")
	m.ObserveOrderEmailDuration(context.Background(), "ok", time.Second)
	m.RecordRateLimited(context.Background(), "order_email")
}

func TestOrderEmailInstrumentsExport(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := New(Config{ServiceName: "mymart"}, provider)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordOrderEmail(ctx, "error", "invalid_image_format")
	m.ObserveOrderEmailDuration(ctx, "error", 40*time.Millisecond)
	m.RecordRateLimited(ctx, "rating_submit")
	m.RecordRateLimited(ctx, "rating_submit")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	byName := map[string]metricdata.Metrics{}
	for _, met := range rm.ScopeMetrics[0].Metrics {
		byName[met.Name] = met
	}
	require.Contains(t, byName, "mymart_order_email_duration_seconds")
	limited, ok := byName["mymart_rate_limited_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, limited.DataPoints, 1)
	assert.Equal(t, int64(2), limited.DataPoints[0].Value)
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{}, noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m.RecordRatingSubmission(context.Background(), "ok")
	m.RecordOrderEmail(context.Background(), "ok", "")
}
