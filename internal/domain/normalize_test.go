package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	termA = MustT("a", "<", 1)
	termB = MustT("b", "like", "x")
	termC = MustT("c", "in", []int{1, 2})
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Domain
		want Domain
	}{
		{"empty", Domain{}, TrueDomain},
		{"single term", Domain{termA}, Domain{termA}},
		{"two terms", Domain{termA, termB}, Domain{OperatorAnd, termA, termB}},
		{"three terms", Domain{termA, termB, termC}, Domain{OperatorAnd, OperatorAnd, termA, termB, termC}},
		{"or then term", Domain{OperatorOr, termA, termB, termC}, Domain{OperatorAnd, OperatorOr, termA, termB, termC}},
		{"already normalized", Domain{OperatorOr, termA, OperatorNot, termB}, Domain{OperatorOr, termA, OperatorNot, termB}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)

			again, err := Normalize(got)
			require.NoError(t, err)
			assert.True(t, got.Equal(again), "normalize is not idempotent: %s", again)
		})
	}
}

func TestNormalizeDoesNotModifyInput(t *testing.T) {
	in := Domain{termA, termB}
	_, err := Normalize(in)
	require.NoError(t, err)
	assert.Len(t, in, 2)
}

func TestNormalizeSyntaxError(t *testing.T) {
	_, err := Normalize(Domain{OperatorAnd, termA})
	require.Error(t, err)
	assert.True(t, IsSyntaxError(err))

	_, err = Normalize(Domain{OperatorNot})
	assert.True(t, IsSyntaxError(err))
}

func TestNormalizeInvalidLeaf(t *testing.T) {
	_, err := Normalize(Domain{Operator("^"), termA, termB})
	assert.True(t, IsInvalidLeaf(err))

	_, err = Normalize(Domain{Term{Left: "a", Op: "~", Right: Int(1)}})
	assert.True(t, IsInvalidLeaf(err))

	_, err = Normalize(Domain{Term{Op: OpEq, Right: Int(1)}})
	assert.True(t, IsInvalidLeaf(err))
}

func TestDistributeNot(t *testing.T) {
	eqLike := MustT("d", "=like", "x%")

	tests := []struct {
		name string
		in   Domain
		want Domain
	}{
		{
			name: "negated term",
			in:   Domain{OperatorNot, MustT("a", "=", 1)},
			want: Domain{MustT("a", "!=", 1)},
		},
		{
			name: "de morgan",
			in:   Domain{OperatorNot, OperatorAnd, termA, termB},
			want: Domain{OperatorOr, MustT("a", ">=", 1), MustT("b", "not like", "x")},
		},
		{
			name: "double negation",
			in:   Domain{OperatorNot, OperatorNot, termA},
			want: Domain{termA},
		},
		{
			name: "sentinels swap",
			in:   Domain{OperatorNot, TrueLeaf},
			want: Domain{FalseLeaf},
		},
		{
			name: "operator without complement",
			in:   Domain{OperatorNot, eqLike},
			want: Domain{OperatorNot, eqLike},
		},
		{
			name: "nested",
			in:   Domain{OperatorAnd, OperatorNot, OperatorOr, termA, termB, termC},
			want: Domain{OperatorAnd, OperatorAnd, MustT("a", ">=", 1), MustT("b", "not like", "x"), termC},
		},
		{
			name: "membership",
			in:   Domain{OperatorNot, termC},
			want: Domain{MustT("c", "not in", []int{1, 2})},
		},
		{
			name: "no negation",
			in:   Domain{OperatorOr, termA, termB},
			want: Domain{OperatorOr, termA, termB},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistributeNot(tt.in)
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
		})
	}
}

func TestDistributeNotInvolution(t *testing.T) {
	d := Domain{OperatorOr, termA, OperatorAnd, termB, termC}

	once := DistributeNot(append(Domain{OperatorNot}, d...))
	twice := DistributeNot(append(Domain{OperatorNot}, once...))

	assert.True(t, d.Equal(twice), "got %s", twice)
}

func TestCombine(t *testing.T) {
	d := Domain{termA, termB}
	normalized, err := Normalize(d)
	require.NoError(t, err)

	t.Run("and identity", func(t *testing.T) {
		got, err := And(TrueDomain, d)
		require.NoError(t, err)
		assert.True(t, normalized.Equal(got))
	})
	t.Run("and absorption", func(t *testing.T) {
		got, err := And(FalseDomain, d)
		require.NoError(t, err)
		assert.True(t, FalseDomain.Equal(got))
	})
	t.Run("or identity", func(t *testing.T) {
		got, err := Or(FalseDomain, d)
		require.NoError(t, err)
		assert.True(t, normalized.Equal(got))
	})
	t.Run("or absorption", func(t *testing.T) {
		got, err := Or(d, TrueDomain)
		require.NoError(t, err)
		assert.True(t, TrueDomain.Equal(got))
	})
	t.Run("nothing left", func(t *testing.T) {
		got, err := And()
		require.NoError(t, err)
		assert.True(t, TrueDomain.Equal(got))

		got, err = Or(FalseDomain, FalseDomain)
		require.NoError(t, err)
		assert.True(t, FalseDomain.Equal(got))
	})
	t.Run("three operands", func(t *testing.T) {
		got, err := Or(Domain{termA}, Domain{termB}, Domain{termC})
		require.NoError(t, err)
		want := Domain{OperatorOr, OperatorOr, termA, termB, termC}
		assert.True(t, want.Equal(got), "got %s", got)
	})
	t.Run("operands are normalized", func(t *testing.T) {
		got, err := And(d, Domain{termC})
		require.NoError(t, err)
		want := Domain{OperatorAnd, OperatorAnd, termA, termB, termC}
		assert.True(t, want.Equal(got), "got %s", got)
	})
	t.Run("malformed operand", func(t *testing.T) {
		_, err := And(Domain{OperatorOr, termA})
		assert.True(t, IsSyntaxError(err))
	})
}

func TestIsFalse(t *testing.T) {
	tests := []struct {
		name string
		in   Domain
		want Truth
	}{
		{"false leaf", FalseDomain, DefinitelyFalse},
		{"true leaf", TrueDomain, DefinitelyTrue},
		{"empty", Domain{}, DefinitelyTrue},
		{"unknown term", Domain{termA}, Unknown},
		{"and with false", Domain{OperatorAnd, termA, FalseLeaf}, DefinitelyFalse},
		{"or with true", Domain{OperatorOr, termA, TrueLeaf}, DefinitelyTrue},
		{"or with false", Domain{OperatorOr, termA, FalseLeaf}, Unknown},
		{"not false", Domain{OperatorNot, FalseLeaf}, DefinitelyTrue},
		{"in empty", Domain{MustT("ID", "in", []int{})}, DefinitelyFalse},
		{"not in empty", Domain{MustT("ID", "not in", []int{})}, DefinitelyTrue},
		{"in values", Domain{MustT("ID", "in", []int{1})}, Unknown},
		{"implicit and", Domain{termA, MustT("ID", "in", []int{})}, DefinitelyFalse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IsFalse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := IsFalse(Domain{OperatorAnd})
	assert.True(t, IsSyntaxError(err))
}
