package engines

import (
	"context"
	"testing"

	"github.com/medsync-ai/orchestrator/pkg/llmprovider"
	"github.com/medsync-ai/orchestrator/pkg/models"
	"github.com/medsync-ai/orchestrator/pkg/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVectorProvider struct {
	results []vectorstore.SearchResult
	calls   int
	lastFilter *vectorstore.Filter
}

func (p *fakeVectorProvider) Search(ctx context.Context, query string, filter *vectorstore.Filter, maxResults int) ([]vectorstore.SearchResult, error) {
	p.calls++
	p.lastFilter = filter
	return p.results, nil
}

func TestDeviceFilter_NilWhenNoFoundDevices(t *testing.T) {
	assert.Nil(t, deviceFilter(models.EngineInput{}))
}

func TestDeviceFilter_BuildsContainsAnyOverIDs(t *testing.T) {
	in := models.EngineInput{FoundDevices: []*models.Device{{ID: "d1"}, {ID: "d2"}}}
	filter := deviceFilter(in)
	require.NotNil(t, filter)
	assert.Equal(t, vectorstore.FilterContainsAny, filter.Type)
	assert.ElementsMatch(t, []string{"d1", "d2"}, filter.Value)
}

func TestVectorEngine_Run_NoDeviceFilterAlsoSearchesGuidelines(t *testing.T) {
	docs := &fakeVectorProvider{results: []vectorstore.SearchResult{{FileID: "doc1", Content: []vectorstore.ContentBlock{{Type: "text", Text: "doc passage"}}}}}
	guidelines := &fakeVectorProvider{results: []vectorstore.SearchResult{{FileID: "gl1", Content: []vectorstore.ContentBlock{{Type: "text", Text: "guideline passage"}}}}}
	llm := &fakeTextProvider{content: "synthesized answer"}

	engine := NewVectorEngine(llm, docs, guidelines, "model", "prompt")
	out, err := engine.Run(context.Background(), models.EngineInput{NormalizedQuery: "what is the eligibility pathway"}, &models.Session{}, nil)

	require.NoError(t, err)
	assert.Equal(t, models.StatusOK, out.Status)
	assert.Equal(t, 1, docs.calls)
	assert.Equal(t, 1, guidelines.calls)
}

func TestVectorEngine_Run_DeviceFilterSkipsGuidelines(t *testing.T) {
	docs := &fakeVectorProvider{}
	guidelines := &fakeVectorProvider{}
	llm := &fakeTextProvider{content: "synthesized answer"}

	engine := NewVectorEngine(llm, docs, guidelines, "model", "prompt")
	_, err := engine.Run(context.Background(), models.EngineInput{
		NormalizedQuery: "docs about Neuron MAX",
		FoundDevices:    []*models.Device{{ID: "d1"}},
	}, &models.Session{}, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, docs.calls)
	assert.Equal(t, 0, guidelines.calls)
	require.NotNil(t, docs.lastFilter)
}
