// Package gemini implements the recipe text and image services on top of the
// Google Gen AI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cortexcompose/compose/internal/httpclient"
	"github.com/cortexcompose/compose/internal/services/recipe"
	"google.golang.org/genai"
)

const providerName = "gemini"

// contentModel is the slice of genai.Models the text client uses.
type contentModel interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// imageModel is the slice of genai.Models the image client uses.
type imageModel interface {
	GenerateImages(ctx context.Context, model string, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// NewClient creates a Gemini API client whose HTTP traffic is traced.
func NewClient(ctx context.Context, apiKey string, timeout time.Duration) (*genai.Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpclient.NewInstrumentedClient(httpclient.ProviderGemini, timeout),
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return client, nil
}

// convertError turns SDK errors into classified provider errors so the
// generator can decide whether a failure is retryable.
func convertError(op string, err error) error {
	if err == nil {
		return nil
	}
	if apiErr, ok := asAPIError(err); ok {
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Status
		}
		return recipe.NewProviderError(providerName, apiErr.Code, fmt.Sprintf("%s: %s", op, msg), err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func asAPIError(err error) (genai.APIError, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return *apiErrPtr, true
	}
	return genai.APIError{}, false
}
