package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// The validator, the processor and the transformer run as Lambda functions or batch jobs
// that are never scraped, so their counts go through the OTel meter provider and are pushed
// by observability.Setup.
const pipelineMeterName = "jan-server/lifelog-api/pipeline"

type pipelineInstruments struct {
	validations   metric.Int64Counter
	transformRuns metric.Int64Counter
	messages      metric.Int64Counter
	partitions    metric.Int64Counter
	photos        metric.Int64Counter
}

var (
	pipelineOnce sync.Once
	pipeline     pipelineInstruments
)

func instruments() *pipelineInstruments {
	pipelineOnce.Do(func() {
		meter := otel.Meter(pipelineMeterName)
		pipeline = pipelineInstruments{
			validations:   counter(meter, "lifelog.chat.validations", "Chat export validation decisions"),
			transformRuns: counter(meter, "lifelog.chat.transform_runs", "Chat transformer runs by outcome"),
			messages:      counter(meter, "lifelog.chat.messages_parsed", "Chat messages parsed from bronze exports"),
			partitions:    counter(meter, "lifelog.chat.partitions", "Silver partitions handled by the transformer"),
			photos:        counter(meter, "lifelog.photos.processed", "Photos processed by content type and status"),
		}
	})
	return &pipeline
}

func counter(meter metric.Meter, name, description string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		return noop.Int64Counter{}
	}
	return c
}

// RecordValidation records an accept/reject decision.
func RecordValidation(ctx context.Context, decision string) {
	instruments().validations.Add(ctx, 1, metric.WithAttributes(attribute.String("decision", decision)))
}

// RecordTransformRun records a finished transformer run.
func RecordTransformRun(ctx context.Context, outcome string, messages, written, unchanged int) {
	m := instruments()
	m.transformRuns.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	m.messages.Add(ctx, int64(messages))
	m.partitions.Add(ctx, int64(written), metric.WithAttributes(attribute.String("result", "written")))
	m.partitions.Add(ctx, int64(unchanged), metric.WithAttributes(attribute.String("result", "unchanged")))
}

// RecordPhoto records a media processor invocation.
func RecordPhoto(ctx context.Context, contentType, status string) {
	instruments().photos.Add(ctx, 1, metric.WithAttributes(
		attribute.String("content_type", contentType),
		attribute.String("status", status),
	))
}
