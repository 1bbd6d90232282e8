// Package jobs tracks asynchronous generation cycles in Redis.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cortexcompose/compose/internal/services/recipe"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// DefaultTTL is how long a job record is kept after its last update.
const DefaultTTL = 24 * time.Hour

var ErrNotFound = errors.New("job not found")

// Job is one queued generation cycle.
type Job struct {
	ID          string          `json:"id"`
	Status      Status          `json:"status"`
	Ingredients string          `json:"ingredients"`
	Recipes     []recipe.Recipe `json:"recipes,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Done reports whether the job reached a terminal state.
func (j *Job) Done() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// Store persists jobs as JSON under "job:<id>" with a TTL.
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		client: client,
		prefix: "job:",
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

// Create stores a new pending job for ingredients.
func (s *Store) Create(ctx context.Context, ingredients string) (*Job, error) {
	now := s.now()
	job := &Job{
		ID:          uuid.NewString(),
		Status:      StatusPending,
		Ingredients: ingredients,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	data, err := json.Marshal(job)
	if err != nil {
		return nil, err
	}
	if err := s.client.Set(ctx, s.key(job.ID), data, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	return job, nil
}

// Get loads a job. Unknown or expired ids return ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Job, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}

	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", id, err)
	}
	return &job, nil
}

func (s *Store) MarkProcessing(ctx context.Context, id string) error {
	return s.update(ctx, id, func(j *Job) {
		j.Status = StatusProcessing
		j.Error = ""
	})
}

// Complete stores the recipes of a finished job.
func (s *Store) Complete(ctx context.Context, id string, recipes []recipe.Recipe) error {
	if recipes == nil {
		recipes = []recipe.Recipe{}
	}
	return s.update(ctx, id, func(j *Job) {
		j.Status = StatusCompleted
		j.Recipes = recipes
		j.Error = ""
	})
}

// Fail records msg as the job's error.
func (s *Store) Fail(ctx context.Context, id string, msg string) error {
	return s.update(ctx, id, func(j *Job) {
		j.Status = StatusFailed
		j.Recipes = nil
		j.Error = msg
	})
}

// update applies fn under WATCH so concurrent writers do not overwrite each other.
func (s *Store) update(ctx context.Context, id string, fn func(*Job)) error {
	key := s.key(id)

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var job Job
		if err := json.Unmarshal(data, &job); err != nil {
			return fmt.Errorf("decode job %s: %w", id, err)
		}
		fn(&job)
		job.UpdatedAt = s.now()

		out, err := json.Marshal(&job)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, s.ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < 3; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("update job %s: too much contention", id)
}
