package engines

import (
	"context"
	"testing"

	"github.com/medsync-ai/orchestrator/pkg/llmprovider"
	"github.com/medsync-ai/orchestrator/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneralEngine_Run_ReturnsSynthesizedText(t *testing.T) {
	llm := &fakeTextProvider{content: "a general answer", usage: llmprovider.Usage{InputTokens: 4, OutputTokens: 2}}
	engine := NewGeneralEngine(llm, "model", "prompt")

	out, err := engine.Run(context.Background(), models.EngineInput{NormalizedQuery: "what is this system"}, &models.Session{}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOK, out.Status)
	assert.Equal(t, "a general answer", out.Text)
}

func TestResearchEngine_Run_ReturnsNotImplemented(t *testing.T) {
	engine := NewResearchEngine()
	out, err := engine.Run(context.Background(), models.EngineInput{}, &models.Session{}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotImplemented, out.Status)
}
