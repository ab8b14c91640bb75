package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Henka-Programmer/Marin/internal/domain"
)

const validScenario = `
name: valid
description: "minimal scenario"
catalog:
  models:
    - name: users
      columns:
        - {name: ID, type: int, primary_key: true}
model: users
domain:
  - "!"
  - [ID, "in", [1, 2]]
expect:
  where: "(([users].[ID] not in (@pID1, @pID2)) OR [users].[ID] IS NULL)"
`

func TestParseScenario(t *testing.T) {
	s, err := ParseScenario([]byte(validScenario))
	require.NoError(t, err)
	assert.Equal(t, "valid", s.Name)
	assert.Equal(t, "users", s.Model)

	d, err := s.domain()
	require.NoError(t, err)
	assert.Equal(t, domain.Domain{domain.OperatorNot, domain.MustT("ID", "in", []int{1, 2})}, d)

	cat, err := s.catalog()
	require.NoError(t, err)
	_, err = cat.Model("users")
	assert.NoError(t, err)
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "valid.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validScenario), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "valid", s.Name)

	_, err = LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read scenario file")
}

func TestParseScenarioInvalid(t *testing.T) {
	catalogYAML := `
catalog:
  models:
    - name: users
      columns:
        - {name: ID, type: int}
`
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"unknown field", "name: x\ndescription: y\nmodel: users\nexpects: {}\n" + catalogYAML, "failed to parse YAML"},
		{"missing name", "description: y\nmodel: users\n" + catalogYAML, "name is required"},
		{"missing description", "name: x\nmodel: users\n" + catalogYAML, "description is required"},
		{"missing model", "name: x\ndescription: y\n" + catalogYAML, "model is required"},
		{"missing catalog", "name: x\ndescription: y\nmodel: users\n", "catalog is required"},
		{"unknown dialect", "name: x\ndescription: y\nmodel: users\ndialect: oracle\n" + catalogYAML, "unknown dialect"},
		{"seed without sqlite", "name: x\ndescription: y\nmodel: users\nseed: [\"SELECT 1\"]\n" + catalogYAML, "seed requires"},
		{"rows without seed", "name: x\ndescription: y\nmodel: users\ndialect: sqlite\nexpect: {rows: [1]}\n" + catalogYAML, "expect.rows requires seed"},
		{"error with sql", "name: x\ndescription: y\nmodel: users\nexpect: {error: UNKNOWN_COLUMN, where: x}\n" + catalogYAML, "expect.error excludes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
