package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Henka-Programmer/Marin/internal/catalog"
	"github.com/Henka-Programmer/Marin/internal/dialect"
	"github.com/Henka-Programmer/Marin/internal/domain"
)

// Scenario defines a conformance test scenario: one domain compiled
// against one model, with the expected SQL, parameters or error.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Dialect selects the SQL dialect (default sqlserver).
	Dialect string `yaml:"dialect,omitempty"`

	// Catalog holds the models inline, in the catalog YAML format.
	Catalog yaml.Node `yaml:"catalog"`

	// Model is the catalog model the domain filters.
	Model string `yaml:"model"`

	// Alias overrides the root table alias.
	Alias string `yaml:"alias,omitempty"`

	// Domain is the domain as a YAML list: operator strings and
	// [column, operator, value] triples.
	Domain []any `yaml:"domain"`

	// Seed contains SQL statements run against a fresh in-memory SQLite
	// database before the compiled query is executed. Requires the sqlite
	// dialect.
	Seed []string `yaml:"seed,omitempty"`

	// Expect specifies the expected compilation result.
	Expect Expectation `yaml:"expect"`
}

// Expectation specifies what compiling the scenario must produce. Empty
// fields are not checked.
type Expectation struct {
	// SQL is the full SELECT statement.
	SQL string `yaml:"sql,omitempty"`

	// Where is the compiled predicate alone.
	Where string `yaml:"where,omitempty"`

	// Params lists parameters as "name=value", in placeholder order.
	Params []string `yaml:"params,omitempty"`

	// Hint is the static truth hint: false, unknown or true.
	Hint string `yaml:"hint,omitempty"`

	// Error is the expected domain error code, e.g. UNKNOWN_COLUMN.
	Error string `yaml:"error,omitempty"`

	// Key is the column collected from result rows (default ID).
	Key string `yaml:"key,omitempty"`

	// Rows are the expected key values, in key order. Requires Seed.
	Rows []int64 `yaml:"rows,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "expects:" vs "expect:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Model == "" {
		return fmt.Errorf("model is required")
	}
	if s.Catalog.Kind == 0 {
		return fmt.Errorf("catalog is required")
	}

	d, err := dialect.Lookup(s.Dialect)
	if err != nil {
		return err
	}
	if len(s.Seed) > 0 && d.Name() != dialect.NameSQLite {
		return fmt.Errorf("seed requires the %s dialect, got %s", dialect.NameSQLite, d.Name())
	}
	if len(s.Expect.Rows) > 0 && len(s.Seed) == 0 {
		return fmt.Errorf("expect.rows requires seed")
	}
	if s.Expect.Error != "" && (s.Expect.SQL != "" || s.Expect.Where != "" || len(s.Expect.Params) > 0) {
		return fmt.Errorf("expect.error excludes sql, where and params")
	}
	return nil
}

// catalog decodes the inline catalog.
func (s *Scenario) catalog() (*catalog.Catalog, error) {
	data, err := yaml.Marshal(&s.Catalog)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return catalog.LoadYAML(bytes.NewReader(data))
}

// domain converts the YAML domain list.
func (s *Scenario) domain() (domain.Domain, error) {
	if len(s.Domain) == 0 {
		return domain.Domain{}, nil
	}
	return domain.Parse(s.Domain...)
}
