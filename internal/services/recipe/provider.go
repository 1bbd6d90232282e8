package recipe

import "context"

// TextService produces recipe JSON for a prompt. Implementations constrain the
// reply to an array of Draft objects.
type TextService interface {
	GenerateRecipeJSON(ctx context.Context, prompt string) (string, error)
}

// ImageService produces a single image for a prompt.
type ImageService interface {
	GenerateImage(ctx context.Context, prompt string) (*Image, error)
}

// ImageStore turns image bytes into a reference the UI can render, either an
// inline data URI or a hosted URL.
type ImageStore interface {
	Store(ctx context.Context, recipeName string, data []byte, mimeType string) (string, error)
}
