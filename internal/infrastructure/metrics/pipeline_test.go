package metrics

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

var reader *sdkmetric.ManualReader

func TestMain(m *testing.M) {
	reader = sdkmetric.NewManualReader()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	os.Exit(m.Run())
}

// sumOf returns the cumulative value of the counter name for the data point carrying attr.
func sumOf(t *testing.T, name string, attr attribute.KeyValue) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "%s is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				if !attr.Valid() {
					return dp.Value
				}
				if v, ok := dp.Attributes.Value(attr.Key); ok && v == attr.Value {
					return dp.Value
				}
			}
		}
	}
	return 0
}

func TestRecordValidationExportsThroughMeter(t *testing.T) {
	ctx := context.Background()
	before := sumOf(t, "lifelog.chat.validations", attribute.String("decision", "rejected"))

	RecordValidation(ctx, "rejected")
	RecordValidation(ctx, "rejected")
	RecordValidation(ctx, "accepted")

	assert.Equal(t, before+2, sumOf(t, "lifelog.chat.validations", attribute.String("decision", "rejected")))
	assert.GreaterOrEqual(t, sumOf(t, "lifelog.chat.validations", attribute.String("decision", "accepted")), int64(1))
}

func TestRecordTransformRun(t *testing.T) {
	ctx := context.Background()
	RecordTransformRun(ctx, "completed", 12, 3, 1)

	assert.GreaterOrEqual(t, sumOf(t, "lifelog.chat.transform_runs", attribute.String("outcome", "completed")), int64(1))
	assert.GreaterOrEqual(t, sumOf(t, "lifelog.chat.messages_parsed", attribute.KeyValue{}), int64(12))
	assert.GreaterOrEqual(t, sumOf(t, "lifelog.chat.partitions", attribute.String("result", "written")), int64(3))
	assert.GreaterOrEqual(t, sumOf(t, "lifelog.chat.partitions", attribute.String("result", "unchanged")), int64(1))
}

func TestRecordPhoto(t *testing.T) {
	RecordPhoto(context.Background(), "image/png", StatusLabel(nil))
	assert.GreaterOrEqual(t, sumOf(t, "lifelog.photos.processed", attribute.String("status", "success")), int64(1))
}
