package worker

import (
	"context"
	"errors"
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
)

// SentryMiddleware reports panics and failed attempts on a hub scoped to the
// job. Attempts asynq will retry are recorded as breadcrumbs only.
func SentryMiddleware(h asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
		info := describeTask(ctx, t)

		hub := sentry.CurrentHub().Clone()
		hub.ConfigureScope(func(scope *sentry.Scope) {
			scope.SetTag("task_type", t.Type())
			scope.SetTag("job_id", info.jobID)
			scope.SetTag("queue", info.queue)
			scope.SetTag("attempt", strconv.Itoa(info.attempt))
			scope.SetContext("recipe_job", sentry.Context{
				"max_retry":          info.maxRetry,
				"ingredients_length": info.ingredients,
			})
		})
		ctx = sentry.SetHubOnContext(ctx, hub)

		defer func() {
			if r := recover(); r != nil {
				hub.RecoverWithContext(ctx, r)
				panic(r)
			}
		}()

		err := h.ProcessTask(ctx, t)
		if err == nil {
			return nil
		}

		if !errors.Is(err, asynq.SkipRetry) {
			hub.AddBreadcrumb(&sentry.Breadcrumb{
				Category: "job",
				Message:  err.Error(),
				Level:    sentry.LevelWarning,
			}, nil)
			return err
		}
		hub.CaptureException(err)
		return err
	})
}
