package jobs

import (
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// ParseRedisOptions accepts a redis:// or rediss:// URL or a bare host:port.
func ParseRedisOptions(redisURL string) (*redis.Options, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis URL is empty")
	}
	if !strings.HasPrefix(redisURL, "redis://") && !strings.HasPrefix(redisURL, "rediss://") {
		return &redis.Options{Addr: redisURL}, nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	return opt, nil
}

// NewRedisClient connects to redisURL as parsed by ParseRedisOptions.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opt, err := ParseRedisOptions(redisURL)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opt), nil
}
