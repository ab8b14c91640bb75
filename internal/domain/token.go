package domain

import (
	"fmt"
	"strings"
)

// Token is a sealed interface for the elements of a Domain.
// Only Operator and Term implement it.
type Token interface {
	token() // Sealed
}

// Operator is a boolean connective in prefix position.
type Operator string

func (Operator) token() {}

const (
	OperatorAnd Operator = "&"
	OperatorOr  Operator = "|"
	OperatorNot Operator = "!"
)

// Valid reports whether op is one of the three connectives.
func (op Operator) Valid() bool {
	switch op {
	case OperatorAnd, OperatorOr, OperatorNot:
		return true
	}
	return false
}

// Arity returns the number of operands op consumes.
func (op Operator) Arity() int {
	switch op {
	case OperatorNot:
		return 1
	case OperatorAnd, OperatorOr:
		return 2
	}
	return 0
}

// Dual returns OR for AND and AND for OR. NOT is its own dual.
func (op Operator) Dual() Operator {
	switch op {
	case OperatorAnd:
		return OperatorOr
	case OperatorOr:
		return OperatorAnd
	}
	return op
}

// Term is a single comparison (left operator right).
type Term struct {
	Left  string
	Op    TermOperator
	Right Value
}

func (Term) token() {}

var (
	// TrueLeaf is the always-true term (1 = 1).
	TrueLeaf = Term{Left: "1", Op: OpEq, Right: Int(1)}

	// FalseLeaf is the always-false term (0 = 1).
	FalseLeaf = Term{Left: "0", Op: OpEq, Right: Int(1)}

	// TrueDomain matches every record.
	TrueDomain = Domain{TrueLeaf}

	// FalseDomain matches no record.
	FalseDomain = Domain{FalseLeaf}
)

// T builds a term from Go values.
func T(left string, op string, right any) (Term, error) {
	v, err := ValueOf(right)
	if err != nil {
		return Term{}, NewError(ErrCodeInvalidLeaf, nil, "term %q: %v", left, err)
	}
	t := Term{Left: left, Op: TermOperator(strings.ToLower(strings.TrimSpace(op))), Right: v}
	if err := t.Validate(); err != nil {
		return Term{}, err
	}
	return t, nil
}

// MustT is like T but panics on error. Intended for literals in code and
// tests.
func MustT(left string, op string, right any) Term {
	t, err := T(left, op, right)
	if err != nil {
		panic(err)
	}
	return t
}

// Validate checks that t is a well-formed leaf.
func (t Term) Validate() error {
	if t.Left == "" {
		return NewError(ErrCodeInvalidLeaf, t, "term has an empty column")
	}
	if !t.Op.Valid() {
		return NewError(ErrCodeInvalidLeaf, t, "unknown term operator %q", string(t.Op))
	}
	if t.Right == nil {
		return NewError(ErrCodeInvalidLeaf, t, "term has no right value")
	}
	return nil
}

// Equal reports structural equality.
func (t Term) Equal(o Term) bool {
	return t.Left == o.Left && t.Op == o.Op && EqualValues(t.Right, o.Right)
}

// IsTrueLeaf reports whether t is TrueLeaf.
func (t Term) IsTrueLeaf() bool { return t.Equal(TrueLeaf) }

// IsFalseLeaf reports whether t is FalseLeaf.
func (t Term) IsFalseLeaf() bool { return t.Equal(FalseLeaf) }

// Path splits the left side on dots.
func (t Term) Path() []string {
	return strings.Split(t.Left, ".")
}

func (t Term) String() string {
	return fmt.Sprintf("(%q, %q, %s)", t.Left, string(t.Op), formatValue(t.Right))
}

// Domain is an ordered prefix-notation sequence of tokens.
type Domain []Token

// Equal reports structural equality.
func (d Domain) Equal(o Domain) bool {
	if len(d) != len(o) {
		return false
	}
	for i := range d {
		if !tokensEqual(d[i], o[i]) {
			return false
		}
	}
	return true
}

func (d Domain) String() string {
	parts := make([]string, len(d))
	for i, tok := range d {
		parts[i] = formatToken(tok)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func tokensEqual(a, b Token) bool {
	switch x := a.(type) {
	case Operator:
		y, ok := b.(Operator)
		return ok && x == y
	case Term:
		y, ok := b.(Term)
		return ok && x.Equal(y)
	}
	return a == nil && b == nil
}

func formatToken(tok Token) string {
	switch x := tok.(type) {
	case Operator:
		return fmt.Sprintf("%q", string(x))
	case Term:
		return x.String()
	}
	return fmt.Sprintf("%v", tok)
}

func clone(d Domain) Domain {
	out := make(Domain, len(d))
	copy(out, d)
	return out
}
