package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/medsync-ai/orchestrator/pkg/broker"
	"github.com/medsync-ai/orchestrator/pkg/models"
)

// Engine is the capability every intent-routed target implements (spec.md
// §9 "Dynamic dispatch": a fixed registry keyed by name, not reflection).
type Engine interface {
	Run(ctx context.Context, in models.EngineInput, sess *models.Session, b *broker.Broker) (models.EngineOutput, error)
}

// Registry is the static intent/path → Engine dispatch table.
type Registry map[models.EnginePath]Engine

// ExecuteWaves implements spec.md §4.7's "Planned path" wave scheduler: each
// wave runs every step whose dependencies are already complete,
// concurrently via errgroup; when a wave is ready-empty but steps remain
// (a dependency deadlock — e.g. a depends_on naming no step id in the plan),
// the remainder runs serially instead of hanging. After all steps complete, the step named by
// plan.OutputStepID becomes the overall result.
func ExecuteWaves(ctx context.Context, plan models.Plan, registry Registry, base models.EngineInput, sess *models.Session, b *broker.Broker) (models.EngineOutput, error) {
	outputs := make(map[string]models.EngineOutput, len(plan.Steps))
	done := map[string]bool{}
	var mu sync.Mutex

	remaining := append([]models.PlanStep(nil), plan.Steps...)

	runStep := func(ctx context.Context, step models.PlanStep) error {
		engine, ok := registry[step.Engine]
		if !ok {
			return fmt.Errorf("planned: no engine registered for path %q (step %q)", step.Engine, step.ID)
		}
		in := base
		in.PlanStepOutputs = collectOutputs(outputs, &mu)
		out, err := engine.Run(ctx, in, sess, b)
		if err != nil {
			return fmt.Errorf("planned step %q: %w", step.ID, err)
		}
		mu.Lock()
		outputs[step.StoreAs] = out
		done[step.ID] = true
		mu.Unlock()
		return nil
	}

	for len(remaining) > 0 {
		ready, notReady := splitReady(remaining, done)
		if len(ready) == 0 {
			// Deadlock: no step's dependencies are satisfied. Run the rest
			// serially in declared order rather than stalling the request.
			for _, step := range remaining {
				if err := runStep(ctx, step); err != nil {
					return models.EngineOutput{}, err
				}
			}
			remaining = nil
			break
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, step := range ready {
			step := step
			g.Go(func() error { return runStep(gctx, step) })
		}
		if err := g.Wait(); err != nil {
			return models.EngineOutput{}, err
		}
		remaining = notReady
	}

	finalKey := plan.OutputStepID
	for _, step := range plan.Steps {
		if step.ID == plan.OutputStepID {
			finalKey = step.StoreAs
			break
		}
	}
	final, ok := outputs[finalKey]
	if !ok {
		return models.EngineOutput{}, fmt.Errorf("planned: output step %q produced no result", plan.OutputStepID)
	}

	var inTok, outTok int64
	for _, out := range outputs {
		inTok += out.InputTokens
		outTok += out.OutputTokens
	}
	final.InputTokens, final.OutputTokens = inTok, outTok
	return final, nil
}

// splitReady partitions steps into those whose DependsOn are all satisfied
// and those still waiting.
func splitReady(steps []models.PlanStep, done map[string]bool) (ready, notReady []models.PlanStep) {
	for _, step := range steps {
		satisfied := true
		for _, dep := range step.DependsOn {
			if !done[dep] {
				satisfied = false
				break
			}
		}
		if satisfied {
			ready = append(ready, step)
		} else {
			notReady = append(notReady, step)
		}
	}
	return ready, notReady
}

// collectOutputs snapshots store_as results for the next wave's steps to
// reference as PlanStepOutputs.
func collectOutputs(outputs map[string]models.EngineOutput, mu *sync.Mutex) map[string]any {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]any, len(outputs))
	for k, v := range outputs {
		out[k] = v
	}
	return out
}
