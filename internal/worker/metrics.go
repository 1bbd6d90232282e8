package worker

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("cortexcompose/worker")

// Job outcomes reported by RecipeProcessor.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeRetry     = "retry"
	OutcomeInvalid   = "invalid"
)

// WorkerMetrics counts queued generation jobs by outcome.
type WorkerMetrics struct {
	jobs        metric.Int64Counter
	jobDuration metric.Float64Histogram
	jobRecipes  metric.Int64Histogram
}

func NewWorkerMetrics() (*WorkerMetrics, error) {
	jobs, err := meter.Int64Counter(
		"worker.recipe_jobs.total",
		metric.WithDescription("Recipe generation jobs by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	jobDuration, err := meter.Float64Histogram(
		"worker.recipe_job.duration",
		metric.WithDescription("Time spent on one attempt of a recipe generation job"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 30, 60, 120, 300),
	)
	if err != nil {
		return nil, err
	}

	jobRecipes, err := meter.Int64Histogram(
		"worker.recipe_job.recipes",
		metric.WithDescription("Recipes stored per completed job"),
		metric.WithUnit("1"),
		metric.WithExplicitBucketBoundaries(0, 1, 2, 3, 5, 10),
	)
	if err != nil {
		return nil, err
	}

	return &WorkerMetrics{
		jobs:        jobs,
		jobDuration: jobDuration,
		jobRecipes:  jobRecipes,
	}, nil
}

// RecordJob is safe to call on a nil receiver. recipes is only recorded for
// completed jobs.
func (m *WorkerMetrics) RecordJob(ctx context.Context, outcome string, recipes int, start time.Time) {
	if m == nil {
		return
	}

	retried, _ := asynq.GetRetryCount(ctx)
	attrs := metric.WithAttributes(
		attribute.String("job.type", TypeGenerateRecipes),
		attribute.String("outcome", outcome),
		attribute.Int("job.attempt", retried+1),
	)

	m.jobs.Add(ctx, 1, attrs)
	m.jobDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	if outcome == OutcomeCompleted {
		m.jobRecipes.Record(ctx, int64(recipes))
	}
}
