package domain

import (
	"database/sql/driver"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"

	"github.com/Henka-Programmer/Marin/internal/sqlquery"
)

// Value is a sealed interface for the right-hand side of a Term.
// Only Null, Bool, Int, Float, Decimal, String, Time, Date, List and
// SubQuery implement it.
type Value interface {
	value() // Sealed
}

// Null is the absent value.
type Null struct{}

func (Null) value() {}

// Bool is a boolean value.
type Bool bool

func (Bool) value() {}

// Int is an integer value.
type Int int64

func (Int) value() {}

// Float is a floating-point value.
type Float float64

func (Float) value() {}

// String is a text value.
type String string

func (String) value() {}

// Decimal is an arbitrary-precision decimal value.
type Decimal struct {
	d *apd.Decimal
}

func (Decimal) value() {}

// NewDecimal parses s as a decimal.
func NewDecimal(s string) (Decimal, error) {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return Decimal{}, fmt.Errorf("parse decimal %q: %w", s, err)
	}
	return Decimal{d: d}, nil
}

// DecimalOf copies d into a Decimal value.
func DecimalOf(d *apd.Decimal) Decimal {
	return Decimal{d: new(apd.Decimal).Set(d)}
}

// String returns the decimal in plain notation.
func (d Decimal) String() string {
	if d.d == nil {
		return "0"
	}
	return d.d.Text('f')
}

// Value implements driver.Valuer. Decimals are bound as text so no
// precision is lost in transit.
func (d Decimal) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d Decimal) cmp(o Decimal) int {
	a, b := d.d, o.d
	if a == nil {
		a = new(apd.Decimal)
	}
	if b == nil {
		b = new(apd.Decimal)
	}
	return a.Cmp(b)
}

// Time is a point in time.
type Time struct {
	time.Time
}

func (Time) value() {}

// Date is a calendar date without a time of day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func (Date) value() {}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses an ISO "2006-01-02" date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// Midnight returns the date as a UTC time at 00:00.
func (d Date) Midnight() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return d.Midnight().Format(time.DateOnly)
}

// List is a homogeneous list of scalar values.
type List []Value

func (List) value() {}

// SubQuery is a nested query used as the right-hand side of in / not in.
// Columns is the select list of the nested query; empty selects *.
type SubQuery struct {
	Query   *sqlquery.Query
	Columns []string
}

func (SubQuery) value() {}

// IsNull reports whether v is absent.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}

// DateOnly returns the date-only reading of v: a Date, a 10-character ISO
// date string, or a time at exactly midnight. ok is false for anything else.
func DateOnly(v Value) (Date, bool) {
	switch x := v.(type) {
	case Date:
		return x, true
	case String:
		if len(x) != len(time.DateOnly) {
			return Date{}, false
		}
		d, err := ParseDate(string(x))
		if err != nil {
			return Date{}, false
		}
		return d, true
	case Time:
		h, m, s := x.Clock()
		if h == 0 && m == 0 && s == 0 && x.Nanosecond() == 0 {
			return DateOf(x.Time), true
		}
	}
	return Date{}, false
}

// Native converts v into the Go value handed to a database driver.
// Dates become midnight UTC times; lists become []any.
func Native(v Value) any {
	switch x := v.(type) {
	case nil, Null:
		return nil
	case Bool:
		return bool(x)
	case Int:
		return int64(x)
	case Float:
		return float64(x)
	case String:
		return string(x)
	case Decimal:
		return x
	case Time:
		return x.Time
	case Date:
		return x.Midnight()
	case List:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Native(e)
		}
		return out
	case SubQuery:
		return x.Query
	default:
		return nil
	}
}

// ValueOf converts a Go value into a Value. Slices become Lists; nil
// becomes Null.
func ValueOf(x any) (Value, error) {
	switch v := x.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return v, nil
	case bool:
		return Bool(v), nil
	case int:
		return Int(v), nil
	case int8:
		return Int(v), nil
	case int16:
		return Int(v), nil
	case int32:
		return Int(v), nil
	case int64:
		return Int(v), nil
	case uint8:
		return Int(v), nil
	case uint16:
		return Int(v), nil
	case uint32:
		return Int(v), nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d overflows int64", v)
		}
		return Int(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d overflows int64", v)
		}
		return Int(v), nil
	case float32:
		return Float(v), nil
	case float64:
		return Float(v), nil
	case string:
		return String(v), nil
	case []byte:
		return String(v), nil
	case time.Time:
		return Time{v}, nil
	case *apd.Decimal:
		if v == nil {
			return Null{}, nil
		}
		return DecimalOf(v), nil
	case uuid.UUID:
		return String(v.String()), nil
	case *sqlquery.Query:
		return SubQuery{Query: v}, nil
	}

	rv := reflect.ValueOf(x)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		list := make(List, rv.Len())
		for i := range list {
			elem, err := ValueOf(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("list index %d: %w", i, err)
			}
			switch elem.(type) {
			case List, SubQuery:
				return nil, fmt.Errorf("list index %d: nested %T is not a scalar", i, elem)
			}
			list[i] = elem
		}
		return list, nil
	}
	return nil, fmt.Errorf("unsupported value type %T", x)
}

// EqualValues reports structural equality. Times compare by instant and
// decimals by numeric value.
func EqualValues(a, b Value) bool {
	if IsNull(a) || IsNull(b) {
		return IsNull(a) && IsNull(b)
	}
	switch x := a.(type) {
	case Bool, Int, Float, String, Date:
		return a == b
	case Decimal:
		y, ok := b.(Decimal)
		return ok && x.cmp(y) == 0
	case Time:
		y, ok := b.(Time)
		return ok && x.Equal(y.Time)
	case List:
		y, ok := b.(List)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !EqualValues(x[i], y[i]) {
				return false
			}
		}
		return true
	case SubQuery:
		y, ok := b.(SubQuery)
		return ok && x.Query == y.Query && slicesEqual(x.Columns, y.Columns)
	}
	return false
}

func slicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// formatValue renders v for diagnostics.
func formatValue(v Value) string {
	switch x := v.(type) {
	case nil, Null:
		return "null"
	case Bool:
		return strconv.FormatBool(bool(x))
	case Int:
		return strconv.FormatInt(int64(x), 10)
	case Float:
		return strconv.FormatFloat(float64(x), 'g', -1, 64)
	case String:
		return strconv.Quote(string(x))
	case Decimal:
		return x.String()
	case Time:
		return x.UTC().Format(time.RFC3339Nano)
	case Date:
		return x.String()
	case List:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = formatValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case SubQuery:
		return "(subquery)"
	default:
		return fmt.Sprintf("%v", x)
	}
}
