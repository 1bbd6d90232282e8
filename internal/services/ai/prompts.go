package ai

import (
	"fmt"
	"strings"
)

// DefaultRecipeCount is the number of recipes requested when the caller does
// not ask for a specific amount.
const DefaultRecipeCount = 3

const recipeTaskSection = `Based on the following list of available ingredients, please generate %s distinct and creative recipes.
Ensure the recipes primarily use the ingredients provided, but you can assume common pantry staples like salt, pepper, oil, and water are available.`

const recipeOutputSection = `For each recipe provide:
- recipeName: the name of the recipe.
- description: a brief, enticing description of the dish, around 1-2 sentences.
- ingredients: a list of all ingredients required for the recipe, including quantities.
- instructions: step-by-step instructions for preparing the recipe.`

const imagePromptTemplate = `A high-quality, delicious-looking photograph of a homemade dish: "%s". Professional food photography, warm lighting, appetizing presentation.`

var numberWords = []string{"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine", "ten"}

func countWord(n int) string {
	if n >= 0 && n < len(numberWords) {
		return numberWords[n]
	}
	return fmt.Sprintf("%d", n)
}

// BuildRecipePrompt builds the text-model prompt asking for count recipes
// that use the given ingredients.
func BuildRecipePrompt(ingredients string, count int) string {
	if count <= 0 {
		count = DefaultRecipeCount
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(recipeTaskSection, countWord(count)))
	sb.WriteString("\n\n")
	sb.WriteString(recipeOutputSection)
	sb.WriteString("\n\n")
	sb.WriteString("Available Ingredients:\n")
	sb.WriteString(strings.TrimSpace(ingredients))
	sb.WriteString("\n")

	return sb.String()
}

// BuildImagePrompt builds the image-model prompt for a single recipe.
func BuildImagePrompt(recipeName string) string {
	return fmt.Sprintf(imagePromptTemplate, recipeName)
}
