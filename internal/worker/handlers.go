package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/cortexcompose/compose/internal/errors"
	"github.com/cortexcompose/compose/internal/logger"
	"github.com/cortexcompose/compose/internal/services/recipe"
	"github.com/hibiken/asynq"
)

// Generator runs one generation cycle.
type Generator interface {
	Generate(ctx context.Context, ingredients string) ([]recipe.Recipe, error)
}

// JobStore records the progress of queued cycles.
type JobStore interface {
	MarkProcessing(ctx context.Context, id string) error
	Complete(ctx context.Context, id string, recipes []recipe.Recipe) error
	Fail(ctx context.Context, id string, msg string) error
}

type RecipeProcessor struct {
	generator Generator
	jobs      JobStore
	metrics   *WorkerMetrics
}

func NewRecipeProcessor(generator Generator, jobs JobStore, metrics *WorkerMetrics) *RecipeProcessor {
	return &RecipeProcessor{
		generator: generator,
		jobs:      jobs,
		metrics:   metrics,
	}
}

// Handlers returns the task handlers this processor serves.
func (p *RecipeProcessor) Handlers() map[string]asynq.HandlerFunc {
	return map[string]asynq.HandlerFunc{
		TypeGenerateRecipes: p.HandleGenerateRecipes,
	}
}

func (p *RecipeProcessor) HandleGenerateRecipes(ctx context.Context, t *asynq.Task) error {
	start := time.Now()

	var payload GenerateRecipesPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		p.metrics.RecordJob(ctx, OutcomeInvalid, 0, start)
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	log := slog.With("job_id", payload.JobID, logger.WithTraceContext(ctx))
	log.Info("Generating recipes")

	if err := p.jobs.MarkProcessing(ctx, payload.JobID); err != nil {
		log.Error("Failed to mark job processing", "error", err)
		return err
	}

	recipes, err := p.generator.Generate(ctx, payload.Ingredients)
	if err != nil {
		return p.handleFailure(ctx, log, payload.JobID, err, start)
	}

	if err := p.jobs.Complete(ctx, payload.JobID, recipes); err != nil {
		log.Error("Failed to store recipes", "error", err)
		p.metrics.RecordJob(ctx, OutcomeFailed, 0, start)
		return err
	}

	log.Info("Recipes generated", "count", len(recipes), "duration", time.Since(start))
	p.metrics.RecordJob(ctx, OutcomeCompleted, len(recipes), start)
	return nil
}

// handleFailure leaves the job processing while asynq still has retries for a
// retryable error, and marks it failed otherwise.
func (p *RecipeProcessor) handleFailure(ctx context.Context, log *slog.Logger, jobID string, err error, start time.Time) error {
	appErr := apperrors.Wrap(err)

	if appErr.IsRetryable() && !finalAttempt(ctx) {
		log.Warn("Recipe generation failed, will retry", "error", err)
		p.metrics.RecordJob(ctx, OutcomeRetry, 0, start)
		return err
	}

	log.Error("Recipe generation failed", "error", err)
	p.metrics.RecordJob(ctx, OutcomeFailed, 0, start)

	// The job record may outlive this context when the task timed out.
	if ferr := p.jobs.Fail(context.WithoutCancel(ctx), jobID, appErr.Error()); ferr != nil {
		log.Error("Failed to mark job failed", "error", ferr)
	}
	return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
}

func finalAttempt(ctx context.Context) bool {
	retried, ok := asynq.GetRetryCount(ctx)
	if !ok {
		return true
	}
	maxRetry, ok := asynq.GetMaxRetry(ctx)
	if !ok {
		return true
	}
	return retried >= maxRetry
}
