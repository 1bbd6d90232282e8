package gemini

import (
	"context"
	"time"

	"github.com/cortexcompose/compose/internal/metrics"
	"github.com/cortexcompose/compose/internal/services/recipe"
	"google.golang.org/genai"
)

// DefaultTextModel is used when no text model is configured.
const DefaultTextModel = "gemini-2.5-flash"

// TextClient asks a Gemini text model for recipes as JSON.
type TextClient struct {
	models contentModel
	model  string
}

var _ recipe.TextService = (*TextClient)(nil)

// NewTextClient creates a TextClient for model.
func NewTextClient(client *genai.Client, model string) *TextClient {
	return newTextClient(client.Models, model)
}

func newTextClient(models contentModel, model string) *TextClient {
	if model == "" {
		model = DefaultTextModel
	}
	return &TextClient{models: models, model: model}
}

// RecipeSchema describes the reply: an array of recipe objects.
func RecipeSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"recipeName": {
					Type:        genai.TypeString,
					Description: "The name of the recipe.",
				},
				"description": {
					Type:        genai.TypeString,
					Description: "A short, enticing description of the dish.",
				},
				"ingredients": {
					Type:        genai.TypeArray,
					Description: "A list of ingredients with quantities.",
					Items:       &genai.Schema{Type: genai.TypeString},
				},
				"instructions": {
					Type:        genai.TypeArray,
					Description: "Step-by-step cooking instructions.",
					Items:       &genai.Schema{Type: genai.TypeString},
				},
			},
			Required:         []string{"recipeName", "description", "ingredients", "instructions"},
			PropertyOrdering: []string{"recipeName", "description", "ingredients", "instructions"},
		},
	}
}

// GenerateRecipeJSON sends prompt and returns the raw JSON text of the reply.
func (c *TextClient) GenerateRecipeJSON(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   RecipeSchema(),
	})
	if err != nil {
		metrics.RecordExternalCall(ctx, providerName, "text", "error", start)
		return "", convertError("generate recipes", err)
	}
	metrics.RecordExternalCall(ctx, providerName, "text", "success", start)

	if resp == nil {
		return "", nil
	}
	return resp.Text(), nil
}
