package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders r as the text stored in golden files:
//
//	scenario: or_with_in_list
//	dialect: sqlserver
//	sql: SELECT * FROM [users] WHERE ...
//	params:
//	  pName=henka
//	hint: unknown
//
// Failed compilations render an "error:" line instead of sql, params and
// hint. Seeded scenarios add a "rows:" line.
func Snapshot(name string, r *Result) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", name)
	fmt.Fprintf(&b, "dialect: %s\n", r.Dialect)

	if r.ErrorCode != "" {
		fmt.Fprintf(&b, "error: %s\n", r.ErrorCode)
		return []byte(b.String())
	}

	fmt.Fprintf(&b, "sql: %s\n", r.SQL)
	b.WriteString("params:\n")
	for _, p := range r.Params {
		fmt.Fprintf(&b, "  %s\n", p)
	}
	fmt.Fprintf(&b, "hint: %s\n", r.Hint)
	if r.Rows != nil {
		ids := make([]string, len(r.Rows))
		for i, id := range r.Rows {
			ids[i] = fmt.Sprint(id)
		}
		fmt.Fprintf(&b, "rows: [%s]\n", strings.Join(ids, ", "))
	}
	return []byte(b.String())
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an existing result against its golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, Snapshot(name, result))
}
