package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	TypeGenerateRecipes = "generate:recipes"
)

// DefaultMaxRetry bounds how often a retryable generation failure is retried.
const DefaultMaxRetry = 2

// GenerateRecipesPayload is the payload for recipe generation tasks
type GenerateRecipesPayload struct {
	JobID       string `json:"job_id"`
	Ingredients string `json:"ingredients"`
}

// NewGenerateRecipesTask creates a new recipe generation task
func NewGenerateRecipesTask(payload GenerateRecipesPayload, timeout time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	opts := []asynq.Option{asynq.MaxRetry(DefaultMaxRetry), asynq.TaskID(payload.JobID)}
	if timeout > 0 {
		opts = append(opts, asynq.Timeout(timeout))
	}
	return asynq.NewTask(TypeGenerateRecipes, data, opts...), nil
}

// taskInfo describes a running task for spans and error reports.
type taskInfo struct {
	jobID    string
	queue    string
	attempt  int
	maxRetry int
	// ingredients is the length of the submitted text, never its content.
	ingredients int
}

func describeTask(ctx context.Context, t *asynq.Task) taskInfo {
	info := taskInfo{attempt: 1}
	info.jobID, _ = asynq.GetTaskID(ctx)
	info.queue, _ = asynq.GetQueueName(ctx)
	if retried, ok := asynq.GetRetryCount(ctx); ok {
		info.attempt = retried + 1
	}
	info.maxRetry, _ = asynq.GetMaxRetry(ctx)

	var payload GenerateRecipesPayload
	if err := json.Unmarshal(t.Payload(), &payload); err == nil {
		if payload.JobID != "" {
			info.jobID = payload.JobID
		}
		info.ingredients = len(payload.Ingredients)
	}
	return info
}
