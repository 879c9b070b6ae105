// Package chainengine implements spec.md §4.6's 8-step compatibility chain
// pipeline: classification and chain construction run as two concurrent LLM
// calls, category expansion and pair generation are pure Go, pairs are
// graded by pkg/compat and rolled up by pkg/chainanalyzer, a decision table
// picks between returning the result as-is, retrying N-1 device subsets, or
// flagging a gentle correction, and a deterministic text builder renders the
// final narrative.
package chainengine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/medsync-ai/orchestrator/pkg/devicestore"
	"github.com/medsync-ai/orchestrator/pkg/llmprovider"
	"github.com/medsync-ai/orchestrator/pkg/models"
)

// Engine runs the chain pipeline against one normalized query.
type Engine struct {
	LLM             llmprovider.Provider
	Devices         *devicestore.Store
	ClassifierModel string
	BuilderModel    string
}

// New builds an Engine bound to a provider, device catalog, and the two
// agent models the pipeline's LLM steps resolve through pkg/config.
func New(llm llmprovider.Provider, devices *devicestore.Store, classifierModel, builderModel string) *Engine {
	return &Engine{LLM: llm, Devices: devices, ClassifierModel: classifierModel, BuilderModel: builderModel}
}

// Run executes the full pipeline and returns the engine return contract
// (spec.md §7: failures surface through Status, never a panic/exception).
func (e *Engine) Run(ctx context.Context, in models.EngineInput) models.EngineOutput {
	categories := resolveCategories(in)

	classification, builder, usage, err := e.classifyAndBuild(ctx, in.NormalizedQuery)
	if err != nil {
		return models.EngineOutput{
			Status:       models.StatusError,
			ErrorMessage: err.Error(),
			InputTokens:  usage.InputTokens,
			OutputTokens: usage.OutputTokens,
		}
	}

	expansions := ExpandCategories(builder.Chains, categories)

	chainResults := make([]*models.ChainResult, 0, len(expansions))
	for _, exp := range expansions {
		chainResults = append(chainResults, EvaluateChain(exp, e.Devices))
	}

	decision := Decide(classification, chainResults)

	var n1 []models.N1SubsetResult
	if decision == models.DecisionRunN1Subsets {
		n1, err = RunN1Subsets(ctx, expansions, e.Devices)
		if err != nil {
			return models.EngineOutput{
				Status:       models.StatusError,
				ErrorMessage: fmt.Sprintf("n1 subset retry: %v", err),
				InputTokens:  usage.InputTokens,
				OutputTokens: usage.OutputTokens,
			}
		}
	}

	builder2 := NewChainTextBuilder()
	resultType := resultTypeFor(classification)
	text := builder2.Build(resultType, chainResults, decision, n1)

	devicesOut := collectDevices(chainResults, e.Devices)

	return models.EngineOutput{
		Status:       models.StatusOK,
		ResultType:   resultType,
		Text:         text,
		Devices:      devicesOut,
		ChainResults: chainResults,
		N1Analysis:   n1,
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
	}
}

// classifyAndBuild runs step 2: two concurrent LLM calls joined via
// errgroup, the chain engine's only suspending step (spec.md §4.6 step 2,
// §5 "classification ∥ extraction" concurrency model applied here to
// classification ∥ chain construction).
func (e *Engine) classifyAndBuild(ctx context.Context, query string) (models.Classification, models.ChainBuilderResult, llmprovider.Usage, error) {
	var classification models.Classification
	var builder models.ChainBuilderResult
	var classifyUsage, builderUsage llmprovider.Usage

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, u, err := ClassifyQuery(gctx, e.LLM, e.ClassifierModel, query)
		if err != nil {
			return fmt.Errorf("classify: %w", err)
		}
		classification, classifyUsage = c, u
		return nil
	})
	g.Go(func() error {
		b, u, err := BuildChains(gctx, e.LLM, e.BuilderModel, query)
		if err != nil {
			return fmt.Errorf("build chains: %w", err)
		}
		builder, builderUsage = b, u
		return nil
	})

	usage := llmprovider.Usage{}
	if err := g.Wait(); err != nil {
		// spec.md §4.6 "Failure semantics": any LLM failure in classifier or
		// builder yields an error-status return with confidence=0.
		return models.Classification{}, models.ChainBuilderResult{}, usage, err
	}
	usage.InputTokens = classifyUsage.InputTokens + builderUsage.InputTokens
	usage.OutputTokens = classifyUsage.OutputTokens + builderUsage.OutputTokens
	return classification, builder, usage, nil
}

// resultTypeFor maps the classifier's query_mode onto the text-synthesis
// narrative shape (spec.md §9).
func resultTypeFor(c models.Classification) models.ResultType {
	switch c.QueryMode {
	case models.ModeDiscovery:
		return models.ResultDeviceDiscovery
	case models.ModeStackValidation:
		return models.ResultStackValidation
	default:
		return models.ResultCompatibilityCheck
	}
}

// collectDevices gathers the catalog records referenced by any evaluated
// chain, for the caller's device_chunk streaming (spec.md §6).
func collectDevices(results []*models.ChainResult, devices *devicestore.Store) []*models.Device {
	seen := map[string]struct{}{}
	var out []*models.Device
	for _, r := range results {
		for _, p := range r.Paths {
			for _, product := range p.Products {
				for _, id := range devices.VariantIDs(product) {
					if _, ok := seen[id]; ok {
						continue
					}
					seen[id] = struct{}{}
					if d := devices.Get(id); d != nil {
						out = append(out, d)
					}
				}
			}
		}
	}
	return out
}
