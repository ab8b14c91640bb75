package domain

import (
	"testing"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Henka-Programmer/Marin/internal/sqlquery"
)

func TestParse(t *testing.T) {
	d, err := Parse("|", []any{"Name", "=", "henka"}, [3]any{"ID", "in", []int{10, 13, 2}})
	require.NoError(t, err)

	want := Domain{
		OperatorOr,
		Term{Left: "Name", Op: OpEq, Right: String("henka")},
		Term{Left: "ID", Op: OpIn, Right: List{Int(10), Int(13), Int(2)}},
	}
	assert.True(t, want.Equal(d), "got %s", d)
}

func TestParseSentinelsAndNesting(t *testing.T) {
	inner := Domain{OperatorNot, termA}

	d, err := Parse("&", []any{1, "=", 1}, inner)
	require.NoError(t, err)

	want := Domain{OperatorAnd, TrueLeaf, OperatorNot, termA}
	assert.True(t, want.Equal(d), "got %s", d)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		elem any
	}{
		{"unknown operator", "^"},
		{"short term", []any{"a", "="}},
		{"integer column", []any{5, "=", 1}},
		{"non-string operator", []any{"a", 1, 1}},
		{"unknown term operator", []any{"a", "~", 1}},
		{"unsupported value", []any{"a", "=", struct{}{}}},
		{"nested list", []any{"a", "in", []any{[]int{1}}}},
		{"unsupported element", 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.elem)
			require.Error(t, err)
			assert.True(t, IsInvalidLeaf(err), "unexpected error %v", err)
		})
	}
}

func TestTermOperatorIsCaseInsensitive(t *testing.T) {
	term := MustT("Name", " NOT ILIKE ", "x")
	assert.Equal(t, OpNotILike, term.Op)
}

func TestValueOf(t *testing.T) {
	ts := time.Date(2020, 5, 1, 8, 0, 0, 0, time.UTC)
	id := uuid.MustParse("6f1c1d0a-3f5e-4b8a-9a55-0f4c2f3f9c11")
	q := sqlquery.New("partner", "")
	dec := apd.New(1250, -2)

	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Null{}},
		{"bool", true, Bool(true)},
		{"int", 7, Int(7)},
		{"uint16", uint16(7), Int(7)},
		{"float", 2.5, Float(2.5)},
		{"string", "x", String("x")},
		{"bytes", []byte("x"), String("x")},
		{"time", ts, Time{ts}},
		{"uuid", id, String("6f1c1d0a-3f5e-4b8a-9a55-0f4c2f3f9c11")},
		{"decimal", dec, DecimalOf(dec)},
		{"query", q, SubQuery{Query: q}},
		{"list", []string{"a", "b"}, List{String("a"), String("b")}},
		{"value", Int(3), Int(3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValueOf(tt.in)
			require.NoError(t, err)
			assert.True(t, EqualValues(tt.want, got), "got %#v", got)
		})
	}

	_, err := ValueOf(uint64(1 << 63))
	assert.Error(t, err)
}

func TestDateOnly(t *testing.T) {
	want := Date{Year: 1990, Month: time.January, Day: 1}

	tests := []struct {
		name string
		in   Value
		ok   bool
	}{
		{"date", want, true},
		{"iso string", String("1990-01-01"), true},
		{"midnight", Time{time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)}, true},
		{"not midnight", Time{time.Date(1990, 1, 1, 0, 0, 1, 0, time.UTC)}, false},
		{"datetime string", String("1990-01-01T10:00:00Z"), false},
		{"ten chars but not a date", String("1990-13-01"), false},
		{"int", Int(19900101), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DateOnly(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, want, got)
			}
		})
	}
}

func TestDecimal(t *testing.T) {
	a, err := NewDecimal("12.50")
	require.NoError(t, err)
	b, err := NewDecimal("12.5")
	require.NoError(t, err)

	assert.True(t, EqualValues(a, b))
	assert.Equal(t, "12.50", a.String())

	v, err := a.Value()
	require.NoError(t, err)
	assert.Equal(t, "12.50", v)

	_, err = NewDecimal("twelve")
	assert.Error(t, err)
}

func TestNative(t *testing.T) {
	assert.Nil(t, Native(Null{}))
	assert.Equal(t, int64(3), Native(Int(3)))
	assert.Equal(t, time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), Native(Date{Year: 1990, Month: time.January, Day: 1}))
	assert.Equal(t, []any{"a", int64(1)}, Native(List{String("a"), Int(1)}))
}

func TestDomainString(t *testing.T) {
	d := Domain{OperatorOr, MustT("Name", "=", "henka"), MustT("ID", "in", []int{10, 13})}
	assert.Equal(t, `["|", ("Name", "=", "henka"), ("ID", "in", [10, 13])]`, d.String())
}
