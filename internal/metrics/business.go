package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	meter = otel.Meter("cortexcompose/business")

	// Generation cycle metrics
	GenerationsTotal   metric.Int64Counter
	GenerationDuration metric.Float64Histogram
	RecipesGenerated   metric.Int64Counter

	// Image fan-out metrics
	ImageGenerationsTotal metric.Int64Counter

	// External API metrics
	ExternalAPICallsTotal metric.Int64Counter
	ExternalAPIDuration   metric.Float64Histogram
)

func init() {
	// The global meter delegates to whatever provider telemetry installs later.
	_ = Init()
}

func Init() error {
	var err error

	GenerationsTotal, err = meter.Int64Counter(
		"recipe.generations.total",
		metric.WithDescription("Total number of recipe generation cycles"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	GenerationDuration, err = meter.Float64Histogram(
		"recipe.generation.duration",
		metric.WithDescription("Duration of a full text and image generation cycle"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(1, 2, 5, 10, 20, 30, 60, 120),
	)
	if err != nil {
		return err
	}

	RecipesGenerated, err = meter.Int64Counter(
		"recipe.generated.total",
		metric.WithDescription("Total number of recipes returned to callers"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	ImageGenerationsTotal, err = meter.Int64Counter(
		"image.generations.total",
		metric.WithDescription("Total number of recipe image generations"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	ExternalAPICallsTotal, err = meter.Int64Counter(
		"external.api.calls.total",
		metric.WithDescription("Total number of external API calls"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	ExternalAPIDuration, err = meter.Float64Histogram(
		"external.api.duration",
		metric.WithDescription("Duration of external API calls"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2, 5, 10, 30, 60),
	)
	if err != nil {
		return err
	}

	return nil
}

// RecordExternalCall records one call to an AI provider endpoint.
func RecordExternalCall(ctx context.Context, provider, kind, status string, start time.Time) {
	if ExternalAPICallsTotal == nil || ExternalAPIDuration == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("provider", provider),
		attribute.String("kind", kind),
	}
	ExternalAPIDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(attrs...))
	ExternalAPICallsTotal.Add(ctx, 1, metric.WithAttributes(append(attrs, attribute.String("status", status))...))
}

// RecordGeneration records the outcome of one generation cycle.
func RecordGeneration(ctx context.Context, status string, recipes int, start time.Time) {
	if GenerationsTotal == nil || GenerationDuration == nil || RecipesGenerated == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("status", status))
	GenerationsTotal.Add(ctx, 1, attrs)
	GenerationDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	if recipes > 0 {
		RecipesGenerated.Add(ctx, int64(recipes))
	}
}

// RecordImage records the outcome of one recipe image generation.
func RecordImage(ctx context.Context, status string) {
	if ImageGenerationsTotal == nil {
		return
	}
	ImageGenerationsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}
