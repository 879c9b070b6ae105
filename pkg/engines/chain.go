// Package engines implements the non-chain-pipeline dispatch targets named
// in spec.md §9's routing table, each satisfying pkg/orchestrator's Engine
// interface so a static map[models.EnginePath]Engine built at startup can
// dispatch to them without reflection (DESIGN NOTES §9 "sealed registry").
package engines

import (
	"context"

	"github.com/medsync-ai/orchestrator/pkg/broker"
	"github.com/medsync-ai/orchestrator/pkg/chainengine"
	"github.com/medsync-ai/orchestrator/pkg/models"
)

// ChainEngine adapts chainengine.Engine to the orchestrator's Engine
// contract. The chain pipeline itself takes no session or broker — it is a
// pure compute step over a query and a device catalog — so this adapter
// exists solely to thread the shared (ctx, in, sess, b) signature through.
type ChainEngine struct {
	Inner *chainengine.Engine
}

// NewChainEngine wraps an already-constructed chain pipeline.
func NewChainEngine(inner *chainengine.Engine) *ChainEngine {
	return &ChainEngine{Inner: inner}
}

func (e *ChainEngine) Run(ctx context.Context, in models.EngineInput, _ *models.Session, _ *broker.Broker) (models.EngineOutput, error) {
	return e.Inner.Run(ctx, in), nil
}
