package engines

import (
	"context"
	"testing"

	"github.com/medsync-ai/orchestrator/pkg/devicestore"
	"github.com/medsync-ai/orchestrator/pkg/llmprovider"
	"github.com/medsync-ai/orchestrator/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTextProvider struct {
	content string
	usage   llmprovider.Usage
}

func (p *fakeTextProvider) Call(ctx context.Context, system string, messages []llmprovider.Message, tools []llmprovider.Tool, model string, maxTokens int) (llmprovider.CallResult, error) {
	return llmprovider.CallResult{Type: "text", Content: p.content, Usage: p.usage}, nil
}

func (p *fakeTextProvider) CallJSON(ctx context.Context, system string, messages []llmprovider.Message, model string) (llmprovider.JSONResult, error) {
	return llmprovider.JSONResult{}, nil
}

func (p *fakeTextProvider) CallStream(ctx context.Context, system string, messages []llmprovider.Message, model string, maxTokens int) (<-chan llmprovider.StreamChunk, <-chan error) {
	chunks := make(chan llmprovider.StreamChunk)
	errs := make(chan error)
	close(chunks)
	close(errs)
	return chunks, errs
}

func deviceFixture(id, product, manufacturer string, level models.ConicalCategory) *models.Device {
	return &models.Device{ID: id, ProductName: product, DeviceName: product, Manufacturer: manufacturer, ConicalCategory: level}
}

func TestApplyConstraints_FiltersByManufacturer(t *testing.T) {
	devices := []*models.Device{
		deviceFixture("d1", "Neuron MAX", "Penumbra", models.LevelL0),
		deviceFixture("d2", "Sofia", "MicroVention", models.LevelL0),
	}
	out := applyConstraints(devices, map[string]string{"manufacturer": "penumbra"})
	require.Len(t, out, 1)
	assert.Equal(t, "d1", out[0].ID)
}

func TestApplyConstraints_NoConstraintsReturnsAll(t *testing.T) {
	devices := []*models.Device{deviceFixture("d1", "Neuron MAX", "Penumbra", models.LevelL0)}
	out := applyConstraints(devices, nil)
	assert.Equal(t, devices, out)
}

func TestDatabaseEngine_Run_SynthesizesOverMatchedDevices(t *testing.T) {
	store := devicestore.New()
	store.Load([]*models.Device{deviceFixture("d1", "Neuron MAX", "Penumbra", models.LevelL0)})
	provider := &fakeTextProvider{content: "Neuron MAX is a Penumbra guide catheter.", usage: llmprovider.Usage{InputTokens: 12, OutputTokens: 6}}

	engine := NewDatabaseEngine(provider, store, "model", "system prompt")
	out, err := engine.Run(context.Background(), models.EngineInput{
		NormalizedQuery: "what manufacturer makes Neuron MAX",
		FoundDevices:    []*models.Device{deviceFixture("d1", "Neuron MAX", "Penumbra", models.LevelL0)},
	}, &models.Session{}, nil)

	require.NoError(t, err)
	assert.Equal(t, models.StatusOK, out.Status)
	assert.Equal(t, "Neuron MAX is a Penumbra guide catheter.", out.Text)
	assert.Equal(t, int64(12), out.InputTokens)
	assert.Equal(t, int64(6), out.OutputTokens)
}
