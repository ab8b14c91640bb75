package domain

// Normalize returns d with every implicit AND made explicit.
//
// An arity counter starts at 1. Each term consumes one operand; each
// operator adds (arity - 1). When the counter drops to 0 while tokens
// remain, the tokens seen so far form a complete expression and an AND is
// placed in front of everything to join it with what follows. The empty
// domain normalizes to TrueDomain. Normalize is idempotent.
func Normalize(d Domain) (Domain, error) {
	if len(d) == 0 {
		return clone(TrueDomain), nil
	}

	expected := 1
	prefix := 0
	for _, tok := range d {
		if expected == 0 {
			prefix++
			expected = 1
		}
		switch t := tok.(type) {
		case Operator:
			if !t.Valid() {
				return nil, NewError(ErrCodeInvalidLeaf, t, "unknown domain operator %q", string(t))
			}
			expected += t.Arity() - 1
		case Term:
			if err := t.Validate(); err != nil {
				return nil, err
			}
			expected--
		default:
			return nil, NewError(ErrCodeInvalidLeaf, nil, "unexpected token %v", tok)
		}
	}
	if expected != 0 {
		return nil, NewError(ErrCodeDomainSyntax, nil, "invalid domain term %s: %d operand(s) missing", d, expected)
	}

	out := make(Domain, 0, prefix+len(d))
	for i := 0; i < prefix; i++ {
		out = append(out, OperatorAnd)
	}
	return append(out, d...), nil
}

// DistributeNot pushes every negation in the normalized domain d down to
// its leaves.
//
// A negated term is replaced by its complement (TrueLeaf and FalseLeaf
// swap); terms whose operator has no complement keep an explicit NOT. A
// negated AND becomes OR and vice versa. NOT tokens themselves are
// consumed. The result contains NOT only directly in front of a term.
func DistributeNot(d Domain) Domain {
	out := make(Domain, 0, len(d))
	pending := []bool{false}

	for _, tok := range d {
		negate := false
		if n := len(pending); n > 0 {
			negate = pending[n-1]
			pending = pending[:n-1]
		}

		switch t := tok.(type) {
		case Operator:
			switch t {
			case OperatorNot:
				pending = append(pending, !negate)
			case OperatorAnd, OperatorOr:
				if negate {
					out = append(out, t.Dual())
				} else {
					out = append(out, t)
				}
				pending = append(pending, negate, negate)
			default:
				out = append(out, t)
			}
		case Term:
			if negate {
				out = append(out, negateTerm(t)...)
			} else {
				out = append(out, t)
			}
		}
	}
	return out
}

func negateTerm(t Term) []Token {
	switch {
	case t.IsTrueLeaf():
		return []Token{FalseLeaf}
	case t.IsFalseLeaf():
		return []Token{TrueLeaf}
	}
	if neg, ok := t.Op.Negate(); ok {
		return []Token{Term{Left: t.Left, Op: neg, Right: t.Right}}
	}
	return []Token{OperatorNot, t}
}

// Combine joins domains with op. unit is the identity element of op and
// zero the absorbing one: any operand equal to zero yields zero, unit
// operands are dropped, and when nothing remains the result is unit.
func Combine(op Operator, unit, zero Term, domains ...Domain) (Domain, error) {
	unitDomain := Domain{unit}
	zeroDomain := Domain{zero}

	var body Domain
	count := 0
	for _, d := range domains {
		n, err := Normalize(d)
		if err != nil {
			return nil, err
		}
		if n.Equal(zeroDomain) {
			return zeroDomain, nil
		}
		if n.Equal(unitDomain) {
			continue
		}
		body = append(body, n...)
		count++
	}
	if count == 0 {
		return unitDomain, nil
	}

	out := make(Domain, 0, count-1+len(body))
	for i := 1; i < count; i++ {
		out = append(out, op)
	}
	return append(out, body...), nil
}

// And is the conjunction of domains.
func And(domains ...Domain) (Domain, error) {
	return Combine(OperatorAnd, TrueLeaf, FalseLeaf, domains...)
}

// Or is the disjunction of domains.
func Or(domains ...Domain) (Domain, error) {
	return Combine(OperatorOr, FalseLeaf, TrueLeaf, domains...)
}
