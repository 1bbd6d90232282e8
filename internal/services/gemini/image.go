package gemini

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cortexcompose/compose/internal/metrics"
	"github.com/cortexcompose/compose/internal/services/recipe"
	"google.golang.org/genai"
)

const (
	// DefaultImageModel is used when no image model is configured.
	DefaultImageModel = "imagen-4.0-generate-001"

	imageMIMEType    = "image/jpeg"
	imageAspectRatio = "16:9"
)

// ErrNoImage is returned when the model answers without any image.
var ErrNoImage = errors.New("no image returned")

// ImageClient renders one photograph per prompt.
type ImageClient struct {
	models imageModel
	model  string
}

var _ recipe.ImageService = (*ImageClient)(nil)

func NewImageClient(client *genai.Client, model string) *ImageClient {
	return newImageClient(client.Models, model)
}

func newImageClient(models imageModel, model string) *ImageClient {
	if model == "" {
		model = DefaultImageModel
	}
	return &ImageClient{models: models, model: model}
}

// GenerateImage requests a single 16:9 JPEG for prompt.
func (c *ImageClient) GenerateImage(ctx context.Context, prompt string) (*recipe.Image, error) {
	start := time.Now()
	resp, err := c.models.GenerateImages(ctx, c.model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: imageMIMEType,
		AspectRatio:    imageAspectRatio,
	})
	if err != nil {
		metrics.RecordExternalCall(ctx, providerName, "image", "error", start)
		return nil, convertError("generate image", err)
	}
	metrics.RecordExternalCall(ctx, providerName, "image", "success", start)

	if resp == nil || len(resp.GeneratedImages) == 0 {
		return nil, ErrNoImage
	}
	generated := resp.GeneratedImages[0]
	if generated == nil || generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
		if generated != nil && generated.RAIFilteredReason != "" {
			return nil, fmt.Errorf("%w: filtered: %s", ErrNoImage, generated.RAIFilteredReason)
		}
		return nil, ErrNoImage
	}

	mimeType := generated.Image.MIMEType
	if mimeType == "" {
		mimeType = imageMIMEType
	}
	return &recipe.Image{Data: generated.Image.ImageBytes, MIMEType: mimeType}, nil
}
