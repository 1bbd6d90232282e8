package worker

import (
	"fmt"

	"github.com/cortexcompose/compose/internal/jobs"
	"github.com/hibiken/asynq"
)

// ParseRedisURL maps a Redis URL onto asynq's connection options, using the
// same rules as the job store so both sides reach the same database.
func ParseRedisURL(redisURL string) (asynq.RedisClientOpt, error) {
	opt, err := jobs.ParseRedisOptions(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}
	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}

// NewClient returns the queue client the API enqueues generation jobs with.
func NewClient(redisURL string) (*asynq.Client, error) {
	opt, err := ParseRedisURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	return asynq.NewClient(opt), nil
}
