package worker

import (
	"context"
	"errors"

	"github.com/cortexcompose/compose/internal/telemetry"
	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTelMiddleware opens a consumer span per task attempt, linked to the job id.
func OTelMiddleware(h asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
		info := describeTask(ctx, t)

		ctx, span := telemetry.Tracer("worker").Start(ctx, "job "+t.Type(),
			trace.WithSpanKind(trace.SpanKindConsumer),
			trace.WithAttributes(
				attribute.String("messaging.system", "asynq"),
				attribute.String("messaging.destination.name", info.queue),
				attribute.String("recipe_job.id", info.jobID),
				attribute.Int("recipe_job.attempt", info.attempt),
				attribute.Int("recipe_job.max_retry", info.maxRetry),
				attribute.Int("recipe_job.ingredients_length", info.ingredients),
			),
		)
		defer span.End()

		err := h.ProcessTask(ctx, t)
		if err == nil {
			span.SetStatus(codes.Ok, "")
			return nil
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("recipe_job.final", errors.Is(err, asynq.SkipRetry)))
		return err
	})
}
