// Package compiler lowers search domains to parameterized SQL predicates.
//
// Compile normalizes a domain, pushes negations down to the leaves and runs
// an explicit-stack evaluator over the result. Each term is translated
// against the column metadata of a catalog.Model; parameters are named by
// the Query's allocator so every fragment of one query has unique
// placeholders.
//
//	expr, err := compiler.Compile(d, usersModel)
//	sql, params := expr.Query.Select()
//
// The compiler never executes SQL.
package compiler

import (
	"fmt"
	"log/slog"

	"github.com/Henka-Programmer/Marin/internal/catalog"
	"github.com/Henka-Programmer/Marin/internal/dialect"
	"github.com/Henka-Programmer/Marin/internal/domain"
	"github.com/Henka-Programmer/Marin/internal/sqlquery"
)

// Fragment is a compiled SQL predicate and its parameters, in placeholder
// order.
type Fragment struct {
	SQL    string
	Params []sqlquery.Param
}

// Expression is the outcome of compiling one domain.
type Expression struct {
	// Query received the compiled predicate as one WHERE fragment.
	Query *sqlquery.Query

	// Model and Alias identify the root table terms were resolved against.
	Model *catalog.Model
	Alias string

	// Result is the compiled predicate. It is empty for an empty domain.
	Result Fragment

	// Hint is the statically known truth of the domain.
	Hint domain.Truth
}

// Select renders the full statement of the expression's query.
func (e *Expression) Select(columns ...string) (string, []sqlquery.Param) {
	return e.Query.Select(columns...)
}

type options struct {
	alias        string
	query        *sqlquery.Query
	dialect      dialect.Dialect
	paramFormat  string
	maxAlias     int
	shortCircuit bool
	logger       *slog.Logger
}

// Option configures a compilation.
type Option func(*options)

// WithAlias sets the alias of the root table. It defaults to the model's
// table name.
func WithAlias(alias string) Option {
	return func(o *options) { o.alias = alias }
}

// WithQuery appends the predicate to an existing query instead of a new
// one. The query's dialect and allocator are used.
func WithQuery(q *sqlquery.Query) Option {
	return func(o *options) { o.query = q }
}

// WithDialect sets the dialect of a new query.
func WithDialect(d dialect.Dialect) Option {
	return func(o *options) { o.dialect = d }
}

// WithParamFormat sets the parameter naming template of a new query.
func WithParamFormat(format string) Option {
	return func(o *options) { o.paramFormat = format }
}

// WithMaxAliasLength sets the alias length ceiling of a new query.
func WithMaxAliasLength(n int) Option {
	return func(o *options) { o.maxAlias = n }
}

// WithShortCircuit replaces a domain that is statically false by the
// dialect's FALSE literal without translating its terms.
func WithShortCircuit(enabled bool) Option {
	return func(o *options) { o.shortCircuit = enabled }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// frame is one pending token with the model and alias it resolves against.
type frame struct {
	token domain.Token
	model *catalog.Model
	alias string
}

// compilation holds the state of a single Compile call.
type compilation struct {
	query   *sqlquery.Query
	dialect dialect.Dialect
	params  *sqlquery.Allocator
	logger  *slog.Logger
}

// Compile translates d against model and appends the result to the query
// as one WHERE fragment. On error nothing is appended.
func Compile(d domain.Domain, model *catalog.Model, opts ...Option) (*Expression, error) {
	o := options{maxAlias: sqlquery.DefaultMaxAliasLength}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if model == nil {
		return nil, fmt.Errorf("compile: model is nil")
	}

	alias := o.alias
	if alias == "" {
		alias = model.Table
	}

	q := o.query
	if q == nil {
		alloc, err := sqlquery.NewAllocator(o.paramFormat)
		if err != nil {
			return nil, fmt.Errorf("compile: %w", err)
		}
		q = sqlquery.New(alias, model.Source(),
			sqlquery.WithDialect(o.dialect),
			sqlquery.WithAllocator(alloc),
			sqlquery.WithMaxAliasLength(o.maxAlias))
	} else if !q.HasAlias(alias) {
		return nil, fmt.Errorf("compile: %w: %s", sqlquery.ErrUnknownAlias, alias)
	}

	expr := &Expression{Query: q, Model: model, Alias: alias, Hint: domain.Unknown}
	if len(d) == 0 {
		expr.Hint = domain.DefinitelyTrue
		return expr, nil
	}

	normalized, err := domain.Normalize(d)
	if err != nil {
		return nil, err
	}
	if hint, err := domain.IsFalse(normalized); err == nil {
		expr.Hint = hint
	}

	c := &compilation{
		query:   q,
		dialect: q.Dialect(),
		params:  q.Params(),
		logger:  o.logger,
	}

	if o.shortCircuit && expr.Hint == domain.DefinitelyFalse {
		expr.Result = Fragment{SQL: c.dialect.False()}
		o.logger.Debug("domain is statically false", "model", model.Name, "tokens", len(normalized))
	} else {
		distributed := domain.DistributeNot(normalized)
		result, err := c.run(distributed, model, alias)
		if err != nil {
			return nil, err
		}
		expr.Result = result
	}

	q.AddWhere(expr.Result.SQL, expr.Result.Params...)
	o.logger.Debug("compiled domain",
		"model", model.Name,
		"alias", alias,
		"tokens", len(normalized),
		"params", len(expr.Result.Params),
		"hint", expr.Hint.String())
	return expr, nil
}

// run evaluates the prefix domain with an explicit stack. Tokens are
// popped from the end, so operands are on the result stack by the time
// their operator is reached.
func (c *compilation) run(d domain.Domain, model *catalog.Model, alias string) (Fragment, error) {
	work := make([]frame, len(d))
	for i, tok := range d {
		work[i] = frame{token: tok, model: model, alias: alias}
	}
	results := make([]Fragment, 0, len(d))

	pop := func() (Fragment, error) {
		if len(results) == 0 {
			return Fragment{}, domain.NewError(domain.ErrCodeDomainSyntax, nil, "operator without operand in %s", d)
		}
		f := results[len(results)-1]
		results = results[:len(results)-1]
		return f, nil
	}

	for len(work) > 0 {
		f := work[len(work)-1]
		work = work[:len(work)-1]

		switch tok := f.token.(type) {
		case domain.Operator:
			switch tok {
			case domain.OperatorNot:
				operand, err := pop()
				if err != nil {
					return Fragment{}, err
				}
				results = append(results, Fragment{
					SQL:    fmt.Sprintf("(NOT (%s))", operand.SQL),
					Params: operand.Params,
				})
			case domain.OperatorAnd, domain.OperatorOr:
				lhs, err := pop()
				if err != nil {
					return Fragment{}, err
				}
				rhs, err := pop()
				if err != nil {
					return Fragment{}, err
				}
				keyword := "AND"
				if tok == domain.OperatorOr {
					keyword = "OR"
				}
				params := make([]sqlquery.Param, 0, len(lhs.Params)+len(rhs.Params))
				params = append(params, lhs.Params...)
				params = append(params, rhs.Params...)
				results = append(results, Fragment{
					SQL:    fmt.Sprintf("(%s %s %s)", lhs.SQL, keyword, rhs.SQL),
					Params: params,
				})
			default:
				return Fragment{}, domain.NewError(domain.ErrCodeUnsupportedOperator, tok, "unsupported operator %q", string(tok))
			}

		case domain.Term:
			if tok.IsTrueLeaf() || tok.IsFalseLeaf() {
				results = append(results, c.sentinel(tok))
				continue
			}

			col, err := resolveColumn(tok, f.model)
			if err != nil {
				return Fragment{}, err
			}

			if col.Type.IsTemporal() {
				if rewritten, ok := dateOnlyRewrite(tok); ok {
					c.logger.Debug("date-only comparison", "column", col.Name, "value", rewritten.Right)
					f.token = rewritten
					work = append(work, f)
					continue
				}
			}

			frag, err := c.leaf(tok, col, f.alias)
			if err != nil {
				return Fragment{}, err
			}
			results = append(results, frag)

		default:
			return Fragment{}, domain.NewError(domain.ErrCodeInvalidLeaf, nil, "unexpected token %v", f.token)
		}
	}

	if len(results) != 1 {
		return Fragment{}, domain.NewError(domain.ErrCodeDomainSyntax, nil, "domain %s left %d expressions", d, len(results))
	}
	return results[0], nil
}

func (c *compilation) sentinel(t domain.Term) Fragment {
	if t.IsTrueLeaf() {
		return Fragment{SQL: c.dialect.True()}
	}
	return Fragment{SQL: c.dialect.False()}
}

func resolveColumn(t domain.Term, model *catalog.Model) (catalog.Column, error) {
	path := t.Path()
	col, ok := model.Column(path[0])
	if !ok {
		return catalog.Column{}, domain.NewError(domain.ErrCodeUnknownColumn, t,
			"invalid field %q in domain term for model %s", path[0], model.Name)
	}
	if len(path) > 1 {
		return catalog.Column{}, domain.NewError(domain.ErrCodeUnsupportedNavigation, t,
			"path %q navigates through %q; only direct columns are supported", t.Left, path[0])
	}
	return col, nil
}

// dateOnlyRewrite converts a date-looking string or midnight time on the
// right side into a Date. Terms already holding a Date are left alone.
func dateOnlyRewrite(t domain.Term) (domain.Term, bool) {
	switch t.Right.(type) {
	case domain.String, domain.Time:
	default:
		return t, false
	}
	if t.Op.IsMembership() {
		return t, false
	}
	date, ok := domain.DateOnly(t.Right)
	if !ok {
		return t, false
	}
	return domain.Term{Left: t.Left, Op: t.Op, Right: date}, true
}
