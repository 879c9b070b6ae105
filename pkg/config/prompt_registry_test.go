package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptRegistry_PathReturnsRegisteredFile(t *testing.T) {
	r := NewPromptRegistry(map[string]string{"classify": "/tmp/classify.txt"})
	p, err := r.Path("classify")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/classify.txt", p)
}

func TestPromptRegistry_PathUnknownReturnsError(t *testing.T) {
	r := NewPromptRegistry(nil)
	_, err := r.Path("missing")
	assert.ErrorIs(t, err, ErrPromptNotFound)
}

func TestPromptRegistry_LoadReadsFileContents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "synthesis.txt")
	require.NoError(t, os.WriteFile(path, []byte("synthesize the findings"), 0o644))

	r := NewPromptRegistry(map[string]string{"synthesis": path})
	got, err := r.Load("synthesis")
	require.NoError(t, err)
	assert.Equal(t, "synthesize the findings", got)
}

func TestPromptRegistry_LoadMissingFileReturnsError(t *testing.T) {
	r := NewPromptRegistry(map[string]string{"synthesis": "/nonexistent/path.txt"})
	_, err := r.Load("synthesis")
	assert.Error(t, err)
}

func TestPromptRegistry_NamesListsAllRegistered(t *testing.T) {
	r := NewPromptRegistry(map[string]string{"a": "a.txt", "b": "b.txt"})
	assert.ElementsMatch(t, []string{"a", "b"}, r.Names())
}
