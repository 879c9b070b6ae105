package eligibility

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRuleFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadRuleSetFromFile_Valid(t *testing.T) {
	path := writeRuleFile(t, `
pathways:
  - name: mechanical_thrombectomy
    criteria:
      - field: age
        operator: gte
        value: 18
        reason: age threshold
    disclaimer: for clinical reference only
`)

	rules, err := LoadRuleSetFromFile(path)
	require.NoError(t, err)
	require.Len(t, rules.Pathways, 1)
	assert.Equal(t, "mechanical_thrombectomy", rules.Pathways[0].Name)
}

func TestLoadRuleSetFromFile_RejectsUnknownOperator(t *testing.T) {
	path := writeRuleFile(t, `
pathways:
  - name: bad_pathway
    criteria:
      - field: age
        operator: greater_than
        reason: age threshold
`)

	_, err := LoadRuleSetFromFile(path)
	require.Error(t, err)
}

func TestLoadRuleSetFromFile_RejectsPathwayWithNoCriteria(t *testing.T) {
	path := writeRuleFile(t, `
pathways:
  - name: empty_pathway
    criteria: []
`)

	_, err := LoadRuleSetFromFile(path)
	require.Error(t, err)
}

func TestLoadRuleSetFromFile_MissingFile(t *testing.T) {
	_, err := LoadRuleSetFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
