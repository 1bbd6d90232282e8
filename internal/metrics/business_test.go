package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	require.NoError(t, Init())

	assert.NotNil(t, GenerationsTotal)
	assert.NotNil(t, GenerationDuration)
	assert.NotNil(t, RecipesGenerated)
	assert.NotNil(t, ImageGenerationsTotal)
	assert.NotNil(t, ExternalAPICallsTotal)
	assert.NotNil(t, ExternalAPIDuration)
}

func TestRecordHelpers(t *testing.T) {
	require.NoError(t, Init())
	ctx := context.Background()

	assert.NotPanics(t, func() {
		RecordExternalCall(ctx, "gemini", "text", "success", time.Now())
		RecordGeneration(ctx, "success", 3, time.Now())
		RecordGeneration(ctx, "empty", 0, time.Now())
		RecordImage(ctx, "failed")
	})
}
