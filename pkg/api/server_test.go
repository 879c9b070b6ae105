package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medsync-ai/orchestrator/pkg/orchestrator"
)

func TestServer_ValidateWiring(t *testing.T) {
	t.Run("orchestrator wired", func(t *testing.T) {
		s := NewServer(&orchestrator.Orchestrator{})
		assert.NoError(t, s.ValidateWiring())
	})

	t.Run("no orchestrator", func(t *testing.T) {
		s := &Server{}
		err := s.ValidateWiring()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "orchestrator not set")
	})
}
