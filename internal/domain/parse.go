package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse builds a Domain from loosely typed elements. Each element is one
// of:
//   - an operator string ("&", "|", "!") or Operator
//   - a Term
//   - a three-element slice or array (left, operator, right)
//   - a nested Domain or []Token, spliced in place
//
// The left side of a three-element term may be an integer only for the
// sentinel terms (1, "=", 1) and (0, "=", 1).
func Parse(elems ...any) (Domain, error) {
	d := make(Domain, 0, len(elems))
	for i, e := range elems {
		toks, err := parseElement(e)
		if err != nil {
			return nil, fmt.Errorf("domain element %d: %w", i, err)
		}
		d = append(d, toks...)
	}
	return d, nil
}

// MustParse is like Parse but panics on error.
func MustParse(elems ...any) Domain {
	d, err := Parse(elems...)
	if err != nil {
		panic(err)
	}
	return d
}

func parseElement(e any) ([]Token, error) {
	switch x := e.(type) {
	case Operator:
		if !x.Valid() {
			return nil, NewError(ErrCodeInvalidLeaf, nil, "unknown domain operator %q", string(x))
		}
		return []Token{x}, nil
	case string:
		op := Operator(strings.TrimSpace(x))
		if !op.Valid() {
			return nil, NewError(ErrCodeInvalidLeaf, nil, "unknown domain operator %q", x)
		}
		return []Token{op}, nil
	case Term:
		if err := x.Validate(); err != nil {
			return nil, err
		}
		return []Token{x}, nil
	case Domain:
		return x, nil
	case []Token:
		return x, nil
	case [3]any:
		return parseTriple(x[0], x[1], x[2])
	case []any:
		if len(x) != 3 {
			return nil, NewError(ErrCodeInvalidLeaf, nil, "term must have 3 elements, got %d", len(x))
		}
		return parseTriple(x[0], x[1], x[2])
	}
	return nil, NewError(ErrCodeInvalidLeaf, nil, "unsupported domain element %T", e)
}

func parseTriple(left, op, right any) ([]Token, error) {
	var column string
	switch l := left.(type) {
	case string:
		column = l
	case int:
		if l != 0 && l != 1 {
			return nil, NewError(ErrCodeInvalidLeaf, nil, "integer left side %d is not a sentinel", l)
		}
		column = strconv.Itoa(l)
	default:
		return nil, NewError(ErrCodeInvalidLeaf, nil, "term left side must be a column name, got %T", left)
	}

	opStr, ok := op.(string)
	if !ok {
		if top, isOp := op.(TermOperator); isOp {
			opStr = string(top)
		} else {
			return nil, NewError(ErrCodeInvalidLeaf, nil, "term operator must be a string, got %T", op)
		}
	}

	t, err := T(column, opStr, right)
	if err != nil {
		return nil, err
	}
	return []Token{t}, nil
}
