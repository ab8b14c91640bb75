// Package dialect describes how compiled filters are spelled for a target
// SQL engine: identifier quoting, parameter placeholders, boolean literals,
// date truncation and pagination.
//
// Dialects are stateless values; callers may share them freely.
package dialect

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Dialect renders the engine-specific parts of a compiled query.
type Dialect interface {
	// Name is the configuration name of the dialect ("sqlserver", "sqlite").
	Name() string

	// QuoteIdent quotes a single identifier segment.
	QuoteIdent(name string) string

	// Placeholder returns the text used to reference a named parameter.
	Placeholder(name string) string

	// True and False return the boolean literals.
	True() string
	False() string

	// TruncateDate wraps expr so that only its date part is compared.
	TruncateDate(expr string) string

	// DateOnlyValue converts a midnight time into the value bound for a
	// date-only comparison.
	DateOnlyValue(t time.Time) any

	// Operator maps a term operator to its SQL spelling.
	Operator(op string) string

	// Paginate renders the ORDER BY / LIMIT / OFFSET tail. It returns ""
	// when nothing is set. A non-empty result starts with a space.
	Paginate(order string, limit, offset *int) string
}

// Names of the built-in dialects.
const (
	NameSQLServer = "sqlserver"
	NameSQLite    = "sqlite"
)

// Default is the dialect used when none is configured.
var Default Dialect = SQLServer{}

// Lookup resolves a dialect by configuration name. The empty name yields
// Default.
func Lookup(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return Default, nil
	case NameSQLServer, "mssql", "tsql":
		return SQLServer{}, nil
	case NameSQLite, "sqlite3", "libsql":
		return SQLite{}, nil
	default:
		return nil, fmt.Errorf("unknown dialect %q: must be one of [%s %s]", name, NameSQLServer, NameSQLite)
	}
}

// bracket quotes an identifier with square brackets, doubling any closing
// bracket inside the name.
func bracket(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

// likeFamily folds the case-insensitive and exact-pattern variants onto
// plain LIKE for engines without ILIKE.
func likeFamily(op string) string {
	switch op {
	case "ilike", "=like", "=ilike":
		return "like"
	case "not ilike":
		return "not like"
	default:
		return op
	}
}

// SQLServer renders T-SQL flavoured output.
type SQLServer struct{}

func (SQLServer) Name() string                  { return NameSQLServer }
func (SQLServer) QuoteIdent(name string) string { return bracket(name) }
func (SQLServer) Placeholder(name string) string {
	return "@" + name
}
func (SQLServer) True() string  { return "TRUE" }
func (SQLServer) False() string { return "FALSE" }

func (SQLServer) TruncateDate(expr string) string {
	return "CONVERT(DATE, " + expr + ")"
}

func (SQLServer) DateOnlyValue(t time.Time) any {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func (SQLServer) Operator(op string) string { return likeFamily(op) }

// Paginate emits OFFSET/FETCH. T-SQL requires an ORDER BY before OFFSET, so
// a neutral ordering is supplied when only pagination is set.
func (SQLServer) Paginate(order string, limit, offset *int) string {
	var b strings.Builder
	if order != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(order)
	} else if limit != nil || offset != nil {
		b.WriteString(" ORDER BY (SELECT NULL)")
	}
	if limit != nil || offset != nil {
		off := 0
		if offset != nil {
			off = *offset
		}
		b.WriteString(" OFFSET ")
		b.WriteString(strconv.Itoa(off))
		b.WriteString(" ROWS")
	}
	if limit != nil {
		b.WriteString(" FETCH NEXT ")
		b.WriteString(strconv.Itoa(*limit))
		b.WriteString(" ROWS ONLY")
	}
	return b.String()
}

// SQLite renders output accepted by SQLite and libSQL.
type SQLite struct{}

func (SQLite) Name() string                  { return NameSQLite }
func (SQLite) QuoteIdent(name string) string { return bracket(name) }
func (SQLite) Placeholder(name string) string {
	return "@" + name
}
func (SQLite) True() string  { return "TRUE" }
func (SQLite) False() string { return "FALSE" }

func (SQLite) TruncateDate(expr string) string {
	return "date(" + expr + ")"
}

func (SQLite) DateOnlyValue(t time.Time) any {
	return t.Format(time.DateOnly)
}

func (SQLite) Operator(op string) string { return likeFamily(op) }

func (SQLite) Paginate(order string, limit, offset *int) string {
	var b strings.Builder
	if order != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(order)
	}
	switch {
	case limit != nil:
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(*limit))
	case offset != nil:
		b.WriteString(" LIMIT -1")
	}
	if offset != nil {
		b.WriteString(" OFFSET ")
		b.WriteString(strconv.Itoa(*offset))
	}
	return b.String()
}
