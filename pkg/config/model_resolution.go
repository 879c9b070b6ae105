package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// FastTierAgents is the set of agent call sites spec.md §6 calls "the fast
// set" — LLM calls cheap/latency-sensitive enough to default to the
// fast-tier model rather than the provider's general-purpose default.
var FastTierAgents = map[string]bool{
	"rewrite":      true,
	"classify":     true,
	"extract":      true,
	"chain_builder": true,
}

// ModelResolver implements spec.md §6's per-agent model resolution order:
// AGENT_<NAME>_MODEL → fast-tier model (if agent is in the fast set) →
// global LLM_MODEL → provider default.
type ModelResolver struct {
	mu           sync.RWMutex
	fastTierModel string
	globalModel   string
	providers     *ProviderRegistry
	providerName  string
}

// NewModelResolver builds a resolver bound to one active provider.
func NewModelResolver(providers *ProviderRegistry, providerName, fastTierModel, globalModel string) *ModelResolver {
	return &ModelResolver{
		providers:     providers,
		providerName:  providerName,
		fastTierModel: fastTierModel,
		globalModel:   globalModel,
	}
}

// Resolve returns the model to use for the named agent call site.
func (r *ModelResolver) Resolve(agentName string) (string, error) {
	if override := os.Getenv(agentEnvVar(agentName)); override != "" {
		return override, nil
	}

	r.mu.RLock()
	fastTier, global := r.fastTierModel, r.globalModel
	r.mu.RUnlock()

	if FastTierAgents[agentName] && fastTier != "" {
		return fastTier, nil
	}
	if global != "" {
		return global, nil
	}

	provider, err := r.providers.Get(r.providerName)
	if err != nil {
		return "", fmt.Errorf("resolve model for %q: %w", agentName, err)
	}
	return provider.DefaultModel, nil
}

// agentEnvVar builds the AGENT_<NAME>_MODEL environment variable name for
// an agent call site.
func agentEnvVar(agentName string) string {
	return "AGENT_" + strings.ToUpper(agentName) + "_MODEL"
}
