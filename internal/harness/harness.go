package harness

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Henka-Programmer/Marin/internal/catalog"
	"github.com/Henka-Programmer/Marin/internal/compiler"
	"github.com/Henka-Programmer/Marin/internal/dialect"
	"github.com/Henka-Programmer/Marin/internal/domain"
	"github.com/Henka-Programmer/Marin/internal/sqlquery"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	Pass bool `json:"pass"`

	// Errors contains expectation mismatches. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	Dialect string   `json:"dialect"`
	SQL     string   `json:"sql,omitempty"`
	Where   string   `json:"where,omitempty"`
	Params  []string `json:"params,omitempty"`
	Hint    string   `json:"hint,omitempty"`

	// ErrorCode is the domain error code when compilation failed.
	ErrorCode string `json:"error_code,omitempty"`

	// Rows holds the key column of every matched row when the scenario is
	// seeded.
	Rows []int64 `json:"rows,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{Pass: true, Errors: []string{}}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

// Run compiles the scenario's domain and checks every expectation.
//
// A returned error means the scenario itself is broken (bad catalog,
// unparsable domain, seed failure). Compilation errors are expected
// outcomes and are recorded in the Result.
func Run(s *Scenario) (*Result, error) {
	cat, err := s.catalog()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	model, err := cat.Model(s.Model)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	dia, err := dialect.Lookup(s.Dialect)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	result := NewResult()
	result.Dialect = dia.Name()

	d, err := s.domain()
	if err != nil {
		// A domain rejected while parsing is checked like a compile error.
		if domain.CodeOf(err) == "" {
			return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
		}
		result.ErrorCode = string(domain.CodeOf(err))
		checkExpectations(s, result)
		return result, nil
	}

	expr, err := compiler.Compile(d, model,
		compiler.WithDialect(dia),
		compiler.WithAlias(s.Alias),
		compiler.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), // Suppress logs in tests
	)
	if err != nil {
		code := domain.CodeOf(err)
		if code == "" {
			return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
		}
		result.ErrorCode = string(code)
		checkExpectations(s, result)
		return result, nil
	}

	stmt, params := expr.Select()
	result.SQL = stmt
	result.Where = expr.Result.SQL
	result.Hint = expr.Hint.String()
	result.Params = make([]string, len(params))
	for i, p := range params {
		result.Params[i] = p.String()
	}

	if len(s.Seed) > 0 {
		rows, err := execute(s, model, expr)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
		}
		result.Rows = rows
	}

	checkExpectations(s, result)
	return result, nil
}

// execute seeds a fresh in-memory database and runs the compiled query,
// collecting the key column in key order.
func execute(s *Scenario, model *catalog.Model, expr *compiler.Expression) ([]int64, error) {
	db, err := sql.Open(catalog.DriverSQLite, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	for i, stmt := range s.Seed {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("seed[%d]: %w", i, err)
		}
	}

	key := s.Expect.Key
	if key == "" {
		key = "ID"
	}
	if _, ok := model.Column(key); !ok {
		return nil, fmt.Errorf("key column %q not in model %s", key, model.Name)
	}

	q := expr.Query
	ref := expr.Alias + "." + key
	q.SetOrder(q.Dialect().QuoteIdent(expr.Alias) + "." + q.Dialect().QuoteIdent(key))
	stmt, params := q.Select(ref)

	rows, err := db.QueryContext(ctx, stmt, sqlquery.Args(params)...)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", stmt, err)
	}
	defer rows.Close()

	out := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func checkExpectations(s *Scenario, r *Result) {
	e := s.Expect

	if e.Error != "" || r.ErrorCode != "" {
		if e.Error != r.ErrorCode {
			r.AddError("error: expected %q, got %q", e.Error, r.ErrorCode)
		}
		return
	}

	if e.SQL != "" && e.SQL != r.SQL {
		r.AddError("sql mismatch:\n  expected: %s\n  actual:   %s", e.SQL, r.SQL)
	}
	if e.Where != "" && e.Where != r.Where {
		r.AddError("where mismatch:\n  expected: %s\n  actual:   %s", e.Where, r.Where)
	}
	if e.Params != nil && !slices.Equal(e.Params, r.Params) {
		r.AddError("params mismatch:\n  expected: [%s]\n  actual:   [%s]",
			strings.Join(e.Params, ", "), strings.Join(r.Params, ", "))
	}
	if e.Hint != "" && e.Hint != r.Hint {
		r.AddError("hint: expected %s, got %s", e.Hint, r.Hint)
	}
	if e.Rows != nil && !slices.Equal(e.Rows, r.Rows) {
		r.AddError("rows: expected %v, got %v", e.Rows, r.Rows)
	}
}
