// Package app assembles the components both binaries share.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/cortexcompose/compose/internal/config"
	"github.com/cortexcompose/compose/internal/services/gemini"
	"github.com/cortexcompose/compose/internal/services/recipe"
	"github.com/cortexcompose/compose/internal/services/storage"
	"github.com/cortexcompose/compose/internal/utils"
)

// taskSlack covers parsing, image storage and queue bookkeeping around the
// provider calls.
const taskSlack = 30 * time.Second

// NewGenerator builds the recipe generator from cfg: Gemini for text and
// images, and Supabase Storage for image hosting when it is configured.
func NewGenerator(ctx context.Context, cfg *config.Config) (*recipe.Generator, error) {
	// The HTTP client timeout caps the slowest single call.
	timeout := max(cfg.Generation.TextTimeout, cfg.Generation.ImageTimeout)
	client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, timeout)
	if err != nil {
		return nil, err
	}

	return recipe.NewGenerator(
		gemini.NewTextClient(client, cfg.Gemini.TextModel),
		gemini.NewImageClient(client, cfg.Gemini.ImageModel),
		NewImageStore(cfg),
		GeneratorConfig(cfg),
	), nil
}

// NewImageStore returns the Supabase store when configured, otherwise nil so
// the generator inlines images.
func NewImageStore(cfg *config.Config) recipe.ImageStore {
	if !cfg.SupabaseEnabled() {
		slog.Info("Supabase not configured, inlining recipe images as data URIs")
		return nil
	}
	return storage.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey, cfg.SupabaseBucket, nil)
}

func GeneratorConfig(cfg *config.Config) recipe.GeneratorConfig {
	return recipe.GeneratorConfig{
		RecipeCount:  cfg.Generation.RecipeCount,
		TextTimeout:  cfg.Generation.TextTimeout,
		ImageTimeout: cfg.Generation.ImageTimeout,
		MaxAttempts:  cfg.Generation.MaxAttempts,
	}
}

// TaskTimeout bounds one queued generation attempt. It fits every configured
// attempt of the text call and of an image call, plus the backoff between
// them including jitter.
func TaskTimeout(cfg *config.Config) time.Duration {
	attempts := max(cfg.Generation.MaxAttempts, 1)
	perPhaseBackoff := time.Duration(attempts-1) * utils.DefaultRetryConfig().MaxDelay * 11 / 10

	text := time.Duration(attempts)*cfg.Generation.TextTimeout + perPhaseBackoff
	image := time.Duration(attempts)*cfg.Generation.ImageTimeout + perPhaseBackoff
	return text + image + taskSlack
}
