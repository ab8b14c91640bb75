package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadScenarios(t *testing.T) []*Scenario {
	t.Helper()
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	scenarios := make([]*Scenario, len(paths))
	for i, path := range paths {
		s, err := LoadScenario(path)
		require.NoError(t, err, path)
		scenarios[i] = s
	}
	return scenarios
}

func TestScenarios(t *testing.T) {
	for _, s := range loadScenarios(t) {
		t.Run(s.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRunReportsMismatches(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: mismatch
description: "wrong expectations are reported, not returned"
catalog:
  models:
    - name: users
      columns:
        - {name: ID, type: int, primary_key: true}
model: users
domain:
  - [ID, "=", 1]
expect:
  where: "([users].[ID] = @pID1)"
  params: [pID=2]
  hint: "false"
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "where mismatch")
	assert.Contains(t, result.Errors[1], "params mismatch")
	assert.Contains(t, result.Errors[2], "hint")
	assert.Equal(t, "([users].[ID] = @pID)", result.Where)
}

func TestRunUnexpectedError(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: unexpected
description: "a compile error without expect.error fails the scenario"
catalog:
  models:
    - name: users
      columns:
        - {name: ID, type: int, primary_key: true}
model: users
domain:
  - [Email, "=", x]
expect:
  hint: unknown
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, "UNKNOWN_COLUMN", result.ErrorCode)
}

func TestRunBrokenScenario(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: broken
description: "model missing from catalog"
catalog:
  models:
    - name: users
      columns:
        - {name: ID, type: int}
model: partner
domain: []
expect: {}
`))
	require.NoError(t, err)

	_, err = Run(s)
	assert.Error(t, err)
}

func TestRunBadSeed(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: bad_seed
description: "seed statements must run"
dialect: sqlite
catalog:
  models:
    - name: users
      columns:
        - {name: ID, type: int}
model: users
domain: []
seed: ["CREATE TABLE"]
expect:
  rows: []
`))
	require.NoError(t, err)

	_, err = Run(s)
	assert.ErrorContains(t, err, "seed[0]")
}

func TestSnapshot(t *testing.T) {
	r := &Result{
		Dialect: "sqlite",
		SQL:     "SELECT * FROM [users] WHERE TRUE",
		Params:  []string{},
		Hint:    "true",
		Rows:    []int64{1, 2},
	}
	assert.Equal(t, "scenario: s\ndialect: sqlite\nsql: SELECT * FROM [users] WHERE TRUE\nparams:\nhint: true\nrows: [1, 2]\n",
		string(Snapshot("s", r)))

	failed := &Result{Dialect: "sqlserver", ErrorCode: "DOMAIN_SYNTAX"}
	assert.Equal(t, "scenario: f\ndialect: sqlserver\nerror: DOMAIN_SYNTAX\n", string(Snapshot("f", failed)))
}
