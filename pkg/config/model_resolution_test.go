package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProviders() *ProviderRegistry {
	return NewProviderRegistry(map[string]*ProviderConfig{
		"anthropic": {Type: ProviderTypeAnthropic, DefaultModel: "claude-provider-default"},
	})
}

func TestModelResolver_AgentOverrideWins(t *testing.T) {
	t.Setenv("AGENT_CLASSIFY_MODEL", "claude-override")
	r := NewModelResolver(testProviders(), "anthropic", "claude-fast", "claude-global")

	got, err := r.Resolve("classify")
	require.NoError(t, err)
	assert.Equal(t, "claude-override", got)
}

func TestModelResolver_FastTierAppliesWhenNoOverride(t *testing.T) {
	os.Unsetenv("AGENT_CLASSIFY_MODEL")
	r := NewModelResolver(testProviders(), "anthropic", "claude-fast", "claude-global")

	got, err := r.Resolve("classify")
	require.NoError(t, err)
	assert.Equal(t, "claude-fast", got)
}

func TestModelResolver_GlobalModelForNonFastAgent(t *testing.T) {
	os.Unsetenv("AGENT_SYNTHESIS_MODEL")
	r := NewModelResolver(testProviders(), "anthropic", "claude-fast", "claude-global")

	got, err := r.Resolve("synthesis")
	require.NoError(t, err)
	assert.Equal(t, "claude-global", got)
}

func TestModelResolver_ProviderDefaultAsLastResort(t *testing.T) {
	os.Unsetenv("AGENT_SYNTHESIS_MODEL")
	r := NewModelResolver(testProviders(), "anthropic", "", "")

	got, err := r.Resolve("synthesis")
	require.NoError(t, err)
	assert.Equal(t, "claude-provider-default", got)
}
