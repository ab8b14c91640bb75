package sqlquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocatorCreate(t *testing.T) {
	a := mustAllocator()

	p1, err := a.Create("Name", "string", "henka")
	require.NoError(t, err)
	p2, err := a.Create("Name", "string", "alice")
	require.NoError(t, err)
	p3, err := a.Create("Birthday", "datetime", nil)
	require.NoError(t, err)

	assert.Equal(t, "pName", p1.Name)
	assert.Equal(t, "pName2", p2.Name)
	assert.Equal(t, "pBirthday", p3.Name)
	assert.Equal(t, "string", p1.Type)
	assert.Equal(t, "henka", p1.Value)
}

func TestAllocatorCreateList(t *testing.T) {
	a := mustAllocator()

	params, err := a.CreateList("ID", "int", []any{int64(10), int64(13), int64(2)})
	require.NoError(t, err)
	require.Len(t, params, 3)
	assert.Equal(t, []string{"pID1", "pID2", "pID3"}, names(params))

	next, err := a.Create("ID", "int", int64(7))
	require.NoError(t, err)
	assert.Equal(t, "pID4", next.Name)
}

func TestAllocatorCountersAreCaseInsensitive(t *testing.T) {
	a := mustAllocator()

	p1, err := a.Create("name", "", 1)
	require.NoError(t, err)
	p2, err := a.Create("NAME", "", 2)
	require.NoError(t, err)

	assert.Equal(t, "pname", p1.Name)
	assert.Equal(t, "pNAME2", p2.Name)
}

func TestAllocatorAvoidsCollisions(t *testing.T) {
	a := mustAllocator()

	// "ID2" as a column name produces pID2, which the second ID param must
	// then skip.
	p, err := a.Create("ID2", "", 1)
	require.NoError(t, err)
	assert.Equal(t, "pID2", p.Name)

	first, err := a.Create("ID", "", 1)
	require.NoError(t, err)
	second, err := a.Create("ID", "", 2)
	require.NoError(t, err)
	assert.Equal(t, "pID", first.Name)
	assert.Equal(t, "pID3", second.Name)
}

func TestAllocatorNormalizesNames(t *testing.T) {
	a := mustAllocator()

	p, err := a.Create("first name", "", "x")
	require.NoError(t, err)
	assert.Equal(t, "pfirstname", p.Name)

	p, err = a.Create("a-b", "", "x")
	require.NoError(t, err)
	assert.Equal(t, "pa_b", p.Name)

	_, err = a.Create("   ", "", "x")
	assert.ErrorIs(t, err, ErrEmptyParamName)
}

func TestAllocatorCustomFormat(t *testing.T) {
	a, err := NewAllocator("arg_{column}")
	require.NoError(t, err)

	p1, err := a.Create("Name", "", 1)
	require.NoError(t, err)
	p2, err := a.Create("Name", "", 2)
	require.NoError(t, err)
	assert.Equal(t, "arg_Name", p1.Name)
	assert.Equal(t, "arg_Name2", p2.Name)

	_, err = NewAllocator("p{counter}")
	assert.Error(t, err)
}

func TestAllocatorAdopt(t *testing.T) {
	a := mustAllocator()

	own, err := a.Create("ID", "", 1)
	require.NoError(t, err)

	adopted := a.Adopt(Param{Name: "pID", Value: 2})
	assert.NotEqual(t, own.Name, adopted.Name)
	assert.Equal(t, "pID_2", adopted.Name)

	fresh := a.Adopt(Param{Name: "pOther", Value: 3})
	assert.Equal(t, "pOther", fresh.Name)
	assert.True(t, a.Used("pOther"))
}

func names(params []Param) []string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = p.Name
	}
	return out
}
