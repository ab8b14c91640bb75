package compiler

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Henka-Programmer/Marin/internal/catalog"
	"github.com/Henka-Programmer/Marin/internal/domain"
	"github.com/Henka-Programmer/Marin/internal/sqlquery"
)

// leaf translates one resolved term. Rules apply in order: membership,
// boolean shortcuts, null checks, date/time columns, then the generic
// comparison.
func (c *compilation) leaf(t domain.Term, col catalog.Column, alias string) (Fragment, error) {
	d := c.dialect
	qcol := d.QuoteIdent(alias) + "." + d.QuoteIdent(col.Name)

	if t.Op.IsMembership() {
		return c.membership(t, col, qcol)
	}

	if col.Type == catalog.TypeBool {
		if b, ok := t.Right.(domain.Bool); ok && (t.Op == domain.OpEq || t.Op == domain.OpNe) {
			if (t.Op == domain.OpEq) != bool(b) {
				return Fragment{SQL: fmt.Sprintf("(%s IS NULL OR %s = %s)", qcol, qcol, d.False())}, nil
			}
			return Fragment{SQL: fmt.Sprintf("(%s IS NOT NULL OR %s != %s)", qcol, qcol, d.False())}, nil
		}
	}

	if isNullLike(t.Right, col) {
		if t.Op == domain.OpEq {
			return Fragment{SQL: qcol + " IS NULL"}, nil
		}
		return Fragment{SQL: qcol + " IS NOT NULL"}, nil
	}

	if col.Type.IsTemporal() {
		return c.temporal(t, col, qcol)
	}

	value, err := coerce(t, col)
	if err != nil {
		return Fragment{}, err
	}
	if t.Op.IsWildcard() {
		value = fmt.Sprintf("%%%v%%", value)
	}
	p, err := c.params.Create(col.Name, string(col.Type), value)
	if err != nil {
		return Fragment{}, err
	}

	sql := fmt.Sprintf("(%s %s %s)", qcol, d.Operator(string(t.Op)), d.Placeholder(p.Name))
	if t.Op.IsNegative() {
		sql = fmt.Sprintf("(%s OR %s IS NULL)", sql, qcol)
	}
	return Fragment{SQL: sql, Params: []sqlquery.Param{p}}, nil
}

// isNullLike reports whether the right value means "no value": null, or
// false compared against a non-boolean column.
func isNullLike(v domain.Value, col catalog.Column) bool {
	if domain.IsNull(v) {
		return true
	}
	b, ok := v.(domain.Bool)
	return ok && !bool(b) && col.Type != catalog.TypeBool
}

// temporal compares a date or datetime column. Date values compare
// against the truncated column.
func (c *compilation) temporal(t domain.Term, col catalog.Column, qcol string) (Fragment, error) {
	d := c.dialect
	op := d.Operator(string(t.Op))

	if date, ok := t.Right.(domain.Date); ok {
		p, err := c.params.Create(col.Name, string(col.Type), d.DateOnlyValue(date.Midnight()))
		if err != nil {
			return Fragment{}, err
		}
		return Fragment{
			SQL:    fmt.Sprintf("%s %s %s", d.TruncateDate(qcol), op, d.Placeholder(p.Name)),
			Params: []sqlquery.Param{p},
		}, nil
	}

	value, err := coerce(t, col)
	if err != nil {
		return Fragment{}, err
	}
	p, err := c.params.Create(col.Name, string(col.Type), value)
	if err != nil {
		return Fragment{}, err
	}
	return Fragment{
		SQL:    fmt.Sprintf("%s %s %s", qcol, op, d.Placeholder(p.Name)),
		Params: []sqlquery.Param{p},
	}, nil
}

// membership translates in / not in against a literal list or a
// sub-query. A scalar right value is treated as a one-element list.
func (c *compilation) membership(t domain.Term, col catalog.Column, qcol string) (Fragment, error) {
	d := c.dialect
	op := d.Operator(string(t.Op))

	if sub, ok := t.Right.(domain.SubQuery); ok {
		if sub.Query == nil {
			return Fragment{}, domain.NewError(domain.ErrCodeInvalidLeaf, t, "sub-query is nil")
		}
		text, params := sub.Query.Subselect(sub.Columns...)
		text, params = c.adopt(text, params)
		return Fragment{SQL: fmt.Sprintf("(%s %s (%s))", qcol, op, text), Params: params}, nil
	}

	if col.Type == catalog.TypeBool {
		return Fragment{}, domain.NewError(domain.ErrCodeUnsupportedComparison, t,
			"boolean column %s cannot be compared with %s", col.Name, t.Op)
	}

	list, ok := t.Right.(domain.List)
	if !ok {
		list = domain.List{t.Right}
	}

	values := make([]any, 0, len(list))
	hasNull := false
	for _, v := range list {
		if domain.IsNull(v) {
			hasNull = true
			continue
		}
		native, err := coerce(domain.Term{Left: t.Left, Op: t.Op, Right: v}, col)
		if err != nil {
			return Fragment{}, err
		}
		values = append(values, native)
	}

	var (
		base   string
		params []sqlquery.Param
	)
	switch {
	case len(values) == 0 && t.Op == domain.OpIn:
		base = d.False()
	case len(values) == 0:
		base = d.True()
	default:
		var err error
		params, err = c.params.CreateList(col.Name, string(col.Type), values)
		if err != nil {
			return Fragment{}, err
		}
		placeholders := make([]string, len(params))
		for i, p := range params {
			placeholders[i] = d.Placeholder(p.Name)
		}
		base = fmt.Sprintf("(%s %s (%s))", qcol, op, strings.Join(placeholders, ", "))
	}

	var sql string
	switch {
	case hasNull && t.Op == domain.OpIn:
		sql = fmt.Sprintf("(%s OR %s IS NULL)", base, qcol)
	case hasNull:
		sql = fmt.Sprintf("(%s AND %s IS NOT NULL)", base, qcol)
	case t.Op == domain.OpNotIn && len(values) > 0:
		sql = fmt.Sprintf("(%s OR %s IS NULL)", base, qcol)
	default:
		sql = base
	}
	return Fragment{SQL: sql, Params: params}, nil
}

// adopt registers sub-query parameters with the outer allocator and
// rewrites placeholders of any that had to be renamed.
func (c *compilation) adopt(text string, params []sqlquery.Param) (string, []sqlquery.Param) {
	renames := make(map[string]string)
	out := make([]sqlquery.Param, len(params))
	for i, p := range params {
		adopted := c.params.Adopt(p)
		if adopted.Name != p.Name {
			renames[p.Name] = adopted.Name
		}
		out[i] = adopted
	}
	if len(renames) == 0 {
		return text, out
	}

	prefix := c.dialect.Placeholder("")
	re := regexp.MustCompile(regexp.QuoteMeta(prefix) + `[\p{L}\p{N}_]+`)
	text = re.ReplaceAllStringFunc(text, func(m string) string {
		if renamed, ok := renames[m[len(prefix):]]; ok {
			return prefix + renamed
		}
		return m
	})
	return text, out
}

// coerce converts the right value of t into the Go value bound for col.
func coerce(t domain.Term, col catalog.Column) (any, error) {
	switch col.Type {
	case catalog.TypeUUID:
		if s, ok := t.Right.(domain.String); ok && !t.Op.IsWildcard() {
			id, err := uuid.Parse(string(s))
			if err != nil {
				return nil, domain.NewError(domain.ErrCodeInvalidValue, t, "column %s: %v", col.Name, err)
			}
			return id, nil
		}
	case catalog.TypeDecimal:
		if s, ok := t.Right.(domain.String); ok && !t.Op.IsWildcard() {
			dec, err := domain.NewDecimal(string(s))
			if err != nil {
				return nil, domain.NewError(domain.ErrCodeInvalidValue, t, "column %s: %v", col.Name, err)
			}
			return dec, nil
		}
	case catalog.TypeDateTime, catalog.TypeDate:
		if s, ok := t.Right.(domain.String); ok {
			if ts, err := time.Parse(time.RFC3339Nano, string(s)); err == nil {
				return ts, nil
			}
		}
	}
	return domain.Native(t.Right), nil
}
