package sqlquery

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// DefaultParamFormat names parameters "p" + column + counter.
const DefaultParamFormat = "p{column}{counter}"

// Param is one bound parameter of a compiled query.
type Param struct {
	// Name is the placeholder name without the dialect prefix.
	Name string `json:"name"`

	// Type is the declared scalar type of the column the value is compared
	// against ("" when unknown).
	Type string `json:"type,omitempty"`

	// Value is the Go value handed to the database driver.
	Value any `json:"value"`
}

func (p Param) String() string {
	return fmt.Sprintf("%s=%v", p.Name, p.Value)
}

// ErrEmptyParamName is returned when a column name normalizes to nothing.
var ErrEmptyParamName = errors.New("parameter name is empty")

// Allocator hands out collision-free parameter names. Names are derived from
// the column name and a per-column counter: the first single parameter for a
// column has no counter ("pName"), later ones are numbered from 2
// ("pName2"). List allocation always numbers its elements ("pID1", "pID2").
//
// An Allocator belongs to one Query and is not safe for concurrent use.
type Allocator struct {
	format   string
	fold     cases.Caser
	counters map[string]int
	used     map[string]struct{}
}

// NewAllocator returns an allocator using format, which must contain the
// "{column}" token and may contain "{counter}". An empty format selects
// DefaultParamFormat.
func NewAllocator(format string) (*Allocator, error) {
	if format == "" {
		format = DefaultParamFormat
	}
	if !strings.Contains(format, "{column}") {
		return nil, fmt.Errorf("parameter format %q must contain {column}", format)
	}
	if !strings.Contains(format, "{counter}") {
		format += "{counter}"
	}
	return &Allocator{
		format:   format,
		fold:     cases.Fold(),
		counters: make(map[string]int),
		used:     make(map[string]struct{}),
	}, nil
}

func mustAllocator() *Allocator {
	a, err := NewAllocator(DefaultParamFormat)
	if err != nil {
		panic(err)
	}
	return a
}

// Create allocates one parameter for column.
func (a *Allocator) Create(column, typ string, value any) (Param, error) {
	base, err := normalizeName(column)
	if err != nil {
		return Param{}, err
	}
	name := a.next(base, false)
	return Param{Name: name, Type: typ, Value: value}, nil
}

// CreateList allocates one parameter per value, numbering from 1.
func (a *Allocator) CreateList(column, typ string, values []any) ([]Param, error) {
	base, err := normalizeName(column)
	if err != nil {
		return nil, err
	}
	params := make([]Param, len(values))
	for i, v := range values {
		params[i] = Param{Name: a.next(base, true), Type: typ, Value: v}
	}
	return params, nil
}

// Adopt registers a parameter built by another allocator. If its name is
// already taken here, a numbered variant is returned instead.
func (a *Allocator) Adopt(p Param) Param {
	if _, taken := a.used[p.Name]; !taken {
		a.used[p.Name] = struct{}{}
		return p
	}
	for n := 2; ; n++ {
		candidate := p.Name + "_" + strconv.Itoa(n)
		if _, taken := a.used[candidate]; !taken {
			a.used[candidate] = struct{}{}
			p.Name = candidate
			return p
		}
	}
}

// Used reports whether name has been handed out.
func (a *Allocator) Used(name string) bool {
	_, ok := a.used[name]
	return ok
}

func (a *Allocator) next(base string, numbered bool) string {
	key := a.fold.String(base)
	for {
		a.counters[key]++
		n := a.counters[key]
		counter := strconv.Itoa(n)
		if n == 1 && !numbered {
			counter = ""
		}
		name := strings.NewReplacer("{column}", base, "{counter}", counter).Replace(a.format)
		if _, taken := a.used[name]; !taken {
			a.used[name] = struct{}{}
			return name
		}
	}
}

// normalizeName turns a column name into a placeholder-safe identifier.
// Whitespace is dropped and any other non-word rune becomes '_'.
func normalizeName(column string) (string, error) {
	column = norm.NFC.String(column)
	var b strings.Builder
	for _, r := range column {
		switch {
		case unicode.IsSpace(r):
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: column %q", ErrEmptyParamName, column)
	}
	return b.String(), nil
}
