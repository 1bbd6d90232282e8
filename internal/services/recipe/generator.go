package recipe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/cortexcompose/compose/internal/errors"
	"github.com/cortexcompose/compose/internal/logger"
	"github.com/cortexcompose/compose/internal/metrics"
	"github.com/cortexcompose/compose/internal/parallel"
	"github.com/cortexcompose/compose/internal/services/ai"
	"github.com/cortexcompose/compose/internal/telemetry"
	"github.com/cortexcompose/compose/internal/utils"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// EmptyIngredientsMessage is shown when a cycle is started without ingredients.
const EmptyIngredientsMessage = "Please enter some ingredients."

// Error codes carried by the AppErrors Generate returns.
const (
	CodeEmptyIngredients  = "EMPTY_INGREDIENTS"
	CodeTextServiceFailed = "TEXT_SERVICE_FAILED"
	CodeMalformedResponse = "MALFORMED_RESPONSE"
	CodeImageFailed       = "IMAGE_SERVICE_FAILED"
)

// GeneratorConfig tunes a Generator. Zero values fall back to defaults.
type GeneratorConfig struct {
	RecipeCount  int
	TextTimeout  time.Duration
	ImageTimeout time.Duration
	MaxAttempts  int
}

// Generator runs generation cycles: one text call for the recipes, then one
// image call per recipe in parallel.
type Generator struct {
	text   TextService
	images ImageService
	store  ImageStore
	cfg    GeneratorConfig
}

// NewGenerator creates a Generator. A nil store inlines images as data URIs.
func NewGenerator(text TextService, images ImageService, store ImageStore, cfg GeneratorConfig) *Generator {
	if store == nil {
		store = DataURIStore{}
	}
	if cfg.RecipeCount <= 0 {
		cfg.RecipeCount = ai.DefaultRecipeCount
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return &Generator{
		text:   text,
		images: images,
		store:  store,
		cfg:    cfg,
	}
}

// ValidateIngredients rejects input that is empty after trimming.
func ValidateIngredients(ingredients string) error {
	if strings.TrimSpace(ingredients) == "" {
		return apperrors.NewValidationError(EmptyIngredientsMessage, CodeEmptyIngredients, "List a few ingredients separated by commas.")
	}
	return nil
}

// Generate produces recipes with images for the given ingredient text.
//
// The result is all-or-nothing: if the text call or any image call fails the
// error is a SERVICE_ERROR AppError and no recipes are returned. An empty
// reply from the text service is a valid, empty result.
func (g *Generator) Generate(ctx context.Context, ingredients string) (recipes []Recipe, err error) {
	if err := ValidateIngredients(ingredients); err != nil {
		return nil, err
	}

	start := time.Now()
	ctx, span := telemetry.Tracer("recipe").Start(ctx, "recipe.generate")
	defer func() {
		status := "success"
		switch {
		case err != nil:
			status = "failed"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		case len(recipes) == 0:
			status = "empty"
		}
		span.SetAttributes(attribute.Int("recipe.count", len(recipes)))
		span.End()
		metrics.RecordGeneration(ctx, status, len(recipes), start)
	}()

	log := slog.With(logger.WithTraceContext(ctx))

	drafts, err := g.generateDrafts(ctx, ingredients)
	if err != nil {
		log.Error("Recipe text generation failed", "error", err)
		return nil, err
	}
	if len(drafts) == 0 {
		log.Info("Text service returned no recipes")
		return []Recipe{}, nil
	}

	log.Debug("Generating recipe images", "count", len(drafts))

	recipes, err = parallel.Map(ctx, drafts, func(ctx context.Context, _ int, d Draft) (Recipe, error) {
		imageURL, err := g.generateImage(ctx, d.Name)
		if err != nil {
			return Recipe{}, err
		}
		return d.WithImage(imageURL), nil
	})
	if err != nil {
		log.Error("Recipe image generation failed", "error", err)
		return nil, err
	}

	log.Info("Recipes generated", "count", len(recipes), "duration", time.Since(start))
	return recipes, nil
}

func (g *Generator) generateDrafts(ctx context.Context, ingredients string) ([]Draft, error) {
	prompt := ai.BuildRecipePrompt(ingredients, g.cfg.RecipeCount)

	raw, err := utils.WithRetry(ctx, func(ctx context.Context) (string, error) {
		return g.text.GenerateRecipeJSON(ctx, prompt)
	}, g.retryConfig(ctx, "text", g.cfg.TextTimeout))
	if err != nil {
		appErr := apperrors.NewServiceError("could not reach the recipe text service", CodeTextServiceFailed, err)
		appErr.Retryable = IsRetryableError(err)
		return nil, appErr
	}

	drafts, err := ParseDrafts(raw)
	if err != nil {
		return nil, apperrors.NewServiceError("recipe text service returned malformed data", CodeMalformedResponse, err)
	}
	return drafts, nil
}

func (g *Generator) generateImage(ctx context.Context, recipeName string) (string, error) {
	ctx, span := telemetry.Tracer("recipe").Start(ctx, "recipe.image")
	defer span.End()
	span.SetAttributes(attribute.String("recipe.name", recipeName))

	fail := func(err error) (string, error) {
		outcome := imageOutcome(ctx, err)
		metrics.RecordImage(ctx, outcome)
		if outcome == "canceled" {
			span.AddEvent("canceled", trace.WithAttributes(attribute.String("reason", err.Error())))
		} else {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		appErr := apperrors.NewServiceError(fmt.Sprintf("failed to generate image for %q", recipeName), CodeImageFailed, err)
		appErr.Retryable = IsRetryableError(err)
		return "", appErr
	}

	prompt := ai.BuildImagePrompt(recipeName)
	img, err := utils.WithRetry(ctx, func(ctx context.Context) (*Image, error) {
		return g.images.GenerateImage(ctx, prompt)
	}, g.retryConfig(ctx, "image", g.cfg.ImageTimeout))
	if err != nil {
		return fail(err)
	}
	if img == nil || len(img.Data) == 0 {
		return fail(fmt.Errorf("image service returned no image data"))
	}

	ref, err := g.store.Store(ctx, recipeName, img.Data, img.MIMEType)
	if err != nil {
		return fail(fmt.Errorf("store image: %w", err))
	}

	metrics.RecordImage(ctx, "success")
	return ref, nil
}

// imageOutcome tells a failed image call apart from one stopped because a
// sibling failed or the caller gave up.
func imageOutcome(ctx context.Context, err error) string {
	if ctx.Err() != nil && errors.Is(err, context.Canceled) {
		return "canceled"
	}
	return "failed"
}

func (g *Generator) retryConfig(ctx context.Context, op string, timeout time.Duration) utils.RetryConfig {
	cfg := utils.SingleAttemptConfig(timeout)
	cfg.MaxAttempts = g.cfg.MaxAttempts
	cfg.ShouldRetry = IsRetryableError
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		slog.WarnContext(ctx, "Provider call failed, retrying",
			"op", op, "attempt", attempt, "delay", delay, "error", err, logger.WithTraceContext(ctx))
	}
	return cfg
}
