package ai

import (
	"strings"
	"testing"
)

func TestBuildRecipePrompt(t *testing.T) {
	tests := []struct {
		name        string
		ingredients string
		count       int
		contains    []string
	}{
		{
			name:        "Default count",
			ingredients: "chicken breast, tomatoes, rice",
			count:       0,
			contains: []string{
				"generate three distinct and creative recipes",
				"salt, pepper, oil, and water",
				"Available Ingredients:\nchicken breast, tomatoes, rice",
				"recipeName",
				"instructions",
			},
		},
		{
			name:        "Explicit count",
			ingredients: "eggs",
			count:       5,
			contains: []string{
				"generate five distinct and creative recipes",
			},
		},
		{
			name:        "Large count uses digits",
			ingredients: "eggs",
			count:       12,
			contains: []string{
				"generate 12 distinct and creative recipes",
			},
		},
		{
			name:        "Trims surrounding whitespace",
			ingredients: "\n\t  leeks, butter  \n",
			count:       3,
			contains: []string{
				"Available Ingredients:\nleeks, butter\n",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt := BuildRecipePrompt(tt.ingredients, tt.count)

			if len(prompt) == 0 {
				t.Fatalf("BuildRecipePrompt() returned empty string")
			}

			for _, s := range tt.contains {
				if !strings.Contains(prompt, s) {
					t.Errorf("BuildRecipePrompt() missing %q in:\n%s", s, prompt)
				}
			}
		})
	}
}

func TestBuildImagePrompt(t *testing.T) {
	prompt := BuildImagePrompt("Tomato Chicken Pilaf")

	if !strings.Contains(prompt, `"Tomato Chicken Pilaf"`) {
		t.Errorf("expected quoted recipe name in %q", prompt)
	}
	if !strings.Contains(prompt, "Professional food photography") {
		t.Errorf("expected photography style in %q", prompt)
	}
}
