package domain

// TermOperator is the comparison of a Term.
type TermOperator string

const (
	OpEq       TermOperator = "="
	OpNe       TermOperator = "!="
	OpLt       TermOperator = "<"
	OpLe       TermOperator = "<="
	OpGt       TermOperator = ">"
	OpGe       TermOperator = ">="
	OpLike     TermOperator = "like"
	OpNotLike  TermOperator = "not like"
	OpILike    TermOperator = "ilike"
	OpNotILike TermOperator = "not ilike"
	OpIn       TermOperator = "in"
	OpNotIn    TermOperator = "not in"

	// OpEqLike and OpEqILike match the right value as a raw pattern.
	OpEqLike  TermOperator = "=like"
	OpEqILike TermOperator = "=ilike"
)

// negations maps each operator to its complement. Operators missing here
// are negated by wrapping the term in NOT.
var negations = map[TermOperator]TermOperator{
	OpLt:       OpGe,
	OpGe:       OpLt,
	OpGt:       OpLe,
	OpLe:       OpGt,
	OpEq:       OpNe,
	OpNe:       OpEq,
	OpIn:       OpNotIn,
	OpNotIn:    OpIn,
	OpLike:     OpNotLike,
	OpNotLike:  OpLike,
	OpILike:    OpNotILike,
	OpNotILike: OpILike,
}

// Valid reports whether op is a known comparison.
func (op TermOperator) Valid() bool {
	if _, ok := negations[op]; ok {
		return true
	}
	return op == OpEqLike || op == OpEqILike
}

// Negate returns the complement of op, if one exists.
func (op TermOperator) Negate() (TermOperator, bool) {
	neg, ok := negations[op]
	return neg, ok
}

// IsNegative reports whether op matches by exclusion. Negative
// comparisons also match NULL columns when compiled.
func (op TermOperator) IsNegative() bool {
	switch op {
	case OpNe, OpNotLike, OpNotILike, OpNotIn:
		return true
	}
	return false
}

// IsWildcard reports whether the right value is wrapped in % wildcards.
func (op TermOperator) IsWildcard() bool {
	switch op {
	case OpLike, OpILike, OpNotLike, OpNotILike:
		return true
	}
	return false
}

// IsMembership reports whether op is in or not in.
func (op TermOperator) IsMembership() bool {
	return op == OpIn || op == OpNotIn
}
