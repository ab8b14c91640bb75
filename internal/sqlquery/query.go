// Package sqlquery assembles one logical SELECT: base tables, joins with
// deterministic aliases, WHERE fragments and their parameters, and optional
// ordering and pagination.
//
// A Query owns the Allocator that names its parameters, so every fragment
// added to the same Query gets collision-free placeholders. A Query is
// single-writer; build one per compilation.
package sqlquery

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Henka-Programmer/Marin/internal/dialect"
)

// JoinKind is the SQL keyword used for an explicit join.
type JoinKind string

const (
	// KindInner emits "JOIN".
	KindInner JoinKind = "JOIN"
	// KindLeft emits "LEFT JOIN".
	KindLeft JoinKind = "LEFT JOIN"
	// KindImplicit adds the target as a base table and the condition as a
	// WHERE fragment.
	KindImplicit JoinKind = ""
)

var (
	// ErrAliasInUse is returned when an alias is registered twice.
	ErrAliasInUse = errors.New("alias already in query")

	// ErrUnknownAlias is returned when a join starts from an alias the
	// query does not know.
	ErrUnknownAlias = errors.New("alias not in query")
)

// TableRef is one base table of the FROM clause.
type TableRef struct {
	Alias string
	Table string
}

// JoinSpec describes a join from an existing alias to a new table.
//
// The join condition is LHSAlias.LHSColumn = alias.Column where alias is
// derived from LHSAlias and Link. Extra, when set, is AND-ed to the
// condition; "{lhs}" and "{rhs}" in it are replaced by the two aliases.
type JoinSpec struct {
	LHSAlias    string
	LHSColumn   string
	Table       string
	Column      string
	Link        string
	Extra       string
	ExtraParams []Param
}

type join struct {
	kind      JoinKind
	alias     string
	table     string
	condition string
	params    []Param
}

type fragment struct {
	sql    string
	params []Param
}

// Query accumulates the parts of a SELECT.
type Query struct {
	dialect  dialect.Dialect
	maxAlias int
	params   *Allocator

	tables []TableRef
	joins  []join

	where []fragment

	limit  *int
	offset *int
	order  string
}

// Option configures a Query.
type Option func(*Query)

// WithDialect sets the dialect used to render identifiers and pagination.
func WithDialect(d dialect.Dialect) Option {
	return func(q *Query) {
		if d != nil {
			q.dialect = d
		}
	}
}

// WithAllocator makes the query name its parameters with a.
func WithAllocator(a *Allocator) Option {
	return func(q *Query) {
		if a != nil {
			q.params = a
		}
	}
}

// WithMaxAliasLength overrides DefaultMaxAliasLength. Zero disables the
// limit.
func WithMaxAliasLength(n int) Option {
	return func(q *Query) { q.maxAlias = n }
}

// New starts a query over table under alias. An empty table means the
// alias is the table name.
func New(alias, table string, opts ...Option) *Query {
	q := &Query{
		dialect:  dialect.Default,
		maxAlias: DefaultMaxAliasLength,
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.params == nil {
		q.params = mustAllocator()
	}
	if table == "" {
		table = alias
	}
	q.tables = append(q.tables, TableRef{Alias: alias, Table: table})
	return q
}

// Dialect returns the query's dialect.
func (q *Query) Dialect() dialect.Dialect { return q.dialect }

// Params returns the allocator that names this query's parameters.
func (q *Query) Params() *Allocator { return q.params }

// Tables returns the base tables in registration order.
func (q *Query) Tables() []TableRef {
	out := make([]TableRef, len(q.tables))
	copy(out, q.tables)
	return out
}

// HasAlias reports whether alias names a base table or a join target.
func (q *Query) HasAlias(alias string) bool {
	return q.tableIndex(alias) >= 0 || q.joinIndex(alias) >= 0
}

// AddTable registers another base table.
func (q *Query) AddTable(alias, table string) error {
	if q.HasAlias(alias) {
		return fmt.Errorf("add table %q: %w", alias, ErrAliasInUse)
	}
	if table == "" {
		table = alias
	}
	q.tables = append(q.tables, TableRef{Alias: alias, Table: table})
	return nil
}

// Join adds an inner join and returns the target alias.
func (q *Query) Join(spec JoinSpec) (string, error) {
	return q.addJoin(KindInner, spec)
}

// LeftJoin adds a left outer join and returns the target alias.
func (q *Query) LeftJoin(spec JoinSpec) (string, error) {
	return q.addJoin(KindLeft, spec)
}

// ImplicitJoin adds the target as a base table joined through WHERE.
func (q *Query) ImplicitJoin(spec JoinSpec) (string, error) {
	return q.addJoin(KindImplicit, spec)
}

// addJoin registers the join unless its alias already exists, in which
// case the existing alias is returned unchanged.
func (q *Query) addJoin(kind JoinKind, spec JoinSpec) (string, error) {
	if !q.HasAlias(spec.LHSAlias) {
		return "", fmt.Errorf("join from %q: %w", spec.LHSAlias, ErrUnknownAlias)
	}

	alias := generateAlias(spec.LHSAlias, spec.Link, q.maxAlias)
	if q.joinIndex(alias) >= 0 {
		return alias, nil
	}
	if i := q.tableIndex(alias); i >= 0 {
		if kind == KindImplicit && q.tables[i].Table == spec.Table {
			return alias, nil
		}
		return "", fmt.Errorf("join %q: %w", alias, ErrAliasInUse)
	}

	d := q.dialect
	condition := fmt.Sprintf("%s.%s = %s.%s",
		d.QuoteIdent(spec.LHSAlias), d.QuoteIdent(spec.LHSColumn),
		d.QuoteIdent(alias), d.QuoteIdent(spec.Column))
	var params []Param
	if spec.Extra != "" {
		extra := strings.NewReplacer("{lhs}", spec.LHSAlias, "{rhs}", alias).Replace(spec.Extra)
		condition += " AND " + extra
		params = append(params, spec.ExtraParams...)
	}

	if kind == KindImplicit {
		q.tables = append(q.tables, TableRef{Alias: alias, Table: spec.Table})
		q.AddWhere(condition, params...)
		return alias, nil
	}

	q.joins = append(q.joins, join{
		kind:      kind,
		alias:     alias,
		table:     spec.Table,
		condition: condition,
		params:    params,
	})
	return alias, nil
}

// AddWhere appends a fragment to the WHERE clause. Empty fragments are
// ignored.
func (q *Query) AddWhere(fragmentSQL string, params ...Param) {
	if fragmentSQL == "" {
		return
	}
	q.where = append(q.where, fragment{sql: fragmentSQL, params: params})
}

// SetLimit sets the maximum number of rows.
func (q *Query) SetLimit(n int) *Query {
	q.limit = &n
	return q
}

// SetOffset sets the number of rows skipped.
func (q *Query) SetOffset(n int) *Query {
	q.offset = &n
	return q
}

// SetOrder sets the raw ORDER BY expression.
func (q *Query) SetOrder(order string) *Query {
	q.order = order
	return q
}

// GetSQL returns the FROM text, the WHERE text and all parameters: join
// condition parameters first, in join order, then WHERE parameters in
// fragment order. An empty WHERE means no restriction.
func (q *Query) GetSQL() (from, where string, params []Param) {
	tables := make([]string, len(q.tables))
	for i, t := range q.tables {
		tables[i] = q.fromTable(t.Table, t.Alias)
	}
	from = strings.Join(tables, ", ")

	for _, j := range q.joins {
		from += fmt.Sprintf(" %s %s ON (%s)", j.kind, q.fromTable(j.table, j.alias), j.condition)
		params = append(params, j.params...)
	}

	clauses := make([]string, len(q.where))
	for i, f := range q.where {
		clauses[i] = f.sql
		params = append(params, f.params...)
	}
	where = strings.Join(clauses, " AND ")
	return from, where, params
}

// Select renders the full SELECT statement. Without columns it selects *.
func (q *Query) Select(columns ...string) (string, []Param) {
	from, where, params := q.GetSQL()
	if where == "" {
		where = q.dialect.True()
	}
	stmt := fmt.Sprintf("SELECT %s FROM %s WHERE %s%s",
		q.selectList(columns), from, where,
		q.dialect.Paginate(q.order, q.limit, q.offset))
	return stmt, params
}

// Subselect renders the query for use inside another statement. Ordering
// and pagination are only emitted when set.
func (q *Query) Subselect(columns ...string) (string, []Param) {
	if q.limit != nil || q.offset != nil || q.order != "" {
		return q.Select(columns...)
	}
	from, where, params := q.GetSQL()
	if where == "" {
		where = q.dialect.True()
	}
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s", q.selectList(columns), from, where), params
}

// String renders a debug view of the query.
func (q *Query) String() string {
	from, where, params := q.GetSQL()
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.String()
	}
	return fmt.Sprintf("Query{SELECT ... FROM %s WHERE %s; params: [%s]}", from, where, strings.Join(names, ", "))
}

// Args converts parameters into database/sql named arguments.
func Args(params []Param) []any {
	args := make([]any, len(params))
	for i, p := range params {
		args[i] = sql.Named(p.Name, p.Value)
	}
	return args
}

func (q *Query) selectList(columns []string) string {
	if len(columns) == 0 {
		return "*"
	}
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = q.quoteColumn(c)
	}
	return strings.Join(quoted, ", ")
}

// quoteColumn quotes plain and dotted column references. Expressions and *
// pass through untouched.
func (q *Query) quoteColumn(c string) string {
	if c == "*" || strings.ContainsAny(c, "()[] ") {
		return c
	}
	parts := strings.Split(c, ".")
	for i, p := range parts {
		if p != "*" {
			parts[i] = q.dialect.QuoteIdent(p)
		}
	}
	return strings.Join(parts, ".")
}

// fromTable renders a table reference. Parenthesized table expressions are
// emitted verbatim.
func (q *Query) fromTable(table, alias string) string {
	d := q.dialect
	switch {
	case strings.HasPrefix(strings.TrimSpace(table), "("):
		return table + " AS " + d.QuoteIdent(alias)
	case table == alias:
		return d.QuoteIdent(alias)
	default:
		return d.QuoteIdent(table) + " AS " + d.QuoteIdent(alias)
	}
}

func (q *Query) tableIndex(alias string) int {
	for i, t := range q.tables {
		if t.Alias == alias {
			return i
		}
	}
	return -1
}

func (q *Query) joinIndex(alias string) int {
	for i, j := range q.joins {
		if j.alias == alias {
			return i
		}
	}
	return -1
}
