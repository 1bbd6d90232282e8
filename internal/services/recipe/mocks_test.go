package recipe

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
)

type MockTextService struct {
	mock.Mock
}

func (m *MockTextService) GenerateRecipeJSON(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type MockImageService struct {
	mock.Mock
}

func (m *MockImageService) GenerateImage(ctx context.Context, prompt string) (*Image, error) {
	args := m.Called(ctx, prompt)
	img, _ := args.Get(0).(*Image)
	return img, args.Error(1)
}

type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Store(ctx context.Context, recipeName string, data []byte, mimeType string) (string, error) {
	args := m.Called(ctx, recipeName, data, mimeType)
	if fn, ok := args.Get(0).(func(context.Context, string, []byte, string) string); ok {
		return fn(ctx, recipeName, data, mimeType), args.Error(1)
	}
	return args.String(0), args.Error(1)
}

// funcImageService lets a test control timing and results per prompt.
type funcImageService struct {
	mu      sync.Mutex
	prompts []string
	fn      func(ctx context.Context, prompt string) (*Image, error)
}

func (f *funcImageService) GenerateImage(ctx context.Context, prompt string) (*Image, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.fn(ctx, prompt)
}

func (f *funcImageService) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

const threeRecipesJSON = `[
  {"recipeName": "Tomato Chicken Pilaf", "description": "One-pot rice.", "ingredients": ["1 chicken breast", "2 tomatoes", "1 cup rice"], "instructions": ["Brown the chicken.", "Add rice and tomatoes.", "Simmer 20 minutes."]},
  {"recipeName": "Chicken Tomato Skewers", "description": "Grilled.", "ingredients": ["chicken", "cherry tomatoes"], "instructions": ["Thread.", "Grill."]},
  {"recipeName": "Crispy Rice Bowl", "description": "Crunchy.", "ingredients": ["rice", "chicken", "tomato"], "instructions": ["Fry rice.", "Top and serve."]}
]`

func jpeg(b string) *Image {
	return &Image{Data: []byte(b), MIMEType: "image/jpeg"}
}
