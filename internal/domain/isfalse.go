package domain

// Truth is a statically known truth value.
type Truth int

const (
	DefinitelyFalse Truth = -1
	Unknown         Truth = 0
	DefinitelyTrue  Truth = 1
)

func (t Truth) String() string {
	switch t {
	case DefinitelyFalse:
		return "false"
	case DefinitelyTrue:
		return "true"
	}
	return "unknown"
}

// IsFalse evaluates what can be known about d without a database.
//
// TrueLeaf and FalseLeaf resolve, as do membership tests against an empty
// literal list. AND takes the minimum of its operands, OR the maximum and
// NOT negates. Everything else is Unknown. The result is a hint for
// skipping work; it never changes what a compiled query matches.
func IsFalse(d Domain) (Truth, error) {
	n, err := Normalize(d)
	if err != nil {
		return Unknown, err
	}

	stack := make([]Truth, 0, len(n))
	pop := func() (Truth, error) {
		if len(stack) == 0 {
			return Unknown, NewError(ErrCodeDomainSyntax, nil, "operator without operand in %s", n)
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, nil
	}

	for i := len(n) - 1; i >= 0; i-- {
		switch t := n[i].(type) {
		case Term:
			stack = append(stack, leafTruth(t))
		case Operator:
			a, err := pop()
			if err != nil {
				return Unknown, err
			}
			if t == OperatorNot {
				stack = append(stack, -a)
				continue
			}
			b, err := pop()
			if err != nil {
				return Unknown, err
			}
			if t == OperatorAnd {
				stack = append(stack, min(a, b))
			} else {
				stack = append(stack, max(a, b))
			}
		}
	}
	if len(stack) != 1 {
		return Unknown, NewError(ErrCodeDomainSyntax, nil, "unbalanced domain %s", n)
	}
	return stack[0], nil
}

func leafTruth(t Term) Truth {
	switch {
	case t.IsTrueLeaf():
		return DefinitelyTrue
	case t.IsFalseLeaf():
		return DefinitelyFalse
	}
	if list, ok := t.Right.(List); ok && len(list) == 0 {
		switch t.Op {
		case OpIn:
			return DefinitelyFalse
		case OpNotIn:
			return DefinitelyTrue
		}
	}
	return Unknown
}
