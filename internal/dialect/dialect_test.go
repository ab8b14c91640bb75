package dialect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestLookup(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"", NameSQLServer},
		{"sqlserver", NameSQLServer},
		{"MSSQL", NameSQLServer},
		{"sqlite", NameSQLite},
		{" libsql ", NameSQLite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Lookup(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Name())
		})
	}

	_, err := Lookup("oracle")
	assert.ErrorContains(t, err, "unknown dialect")
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, "[users]", SQLServer{}.QuoteIdent("users"))
	assert.Equal(t, "[odd]]name]", SQLite{}.QuoteIdent("odd]name"))
}

func TestOperatorFoldsLikeFamily(t *testing.T) {
	for _, d := range []Dialect{SQLServer{}, SQLite{}} {
		assert.Equal(t, "like", d.Operator("ilike"))
		assert.Equal(t, "like", d.Operator("=like"))
		assert.Equal(t, "like", d.Operator("=ilike"))
		assert.Equal(t, "not like", d.Operator("not ilike"))
		assert.Equal(t, "!=", d.Operator("!="))
		assert.Equal(t, "not in", d.Operator("not in"))
	}
}

func TestDateOnlyValue(t *testing.T) {
	ts := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, ts, SQLServer{}.DateOnlyValue(ts))
	assert.Equal(t, "1990-01-01", SQLite{}.DateOnlyValue(ts))
	assert.Equal(t, "CONVERT(DATE, [u].[d])", SQLServer{}.TruncateDate("[u].[d]"))
	assert.Equal(t, "date([u].[d])", SQLite{}.TruncateDate("[u].[d]"))
}

func TestPaginateSQLServer(t *testing.T) {
	d := SQLServer{}
	assert.Equal(t, "", d.Paginate("", nil, nil))
	assert.Equal(t, " ORDER BY [ID]", d.Paginate("[ID]", nil, nil))
	assert.Equal(t, " ORDER BY [ID] OFFSET 20 ROWS FETCH NEXT 10 ROWS ONLY", d.Paginate("[ID]", intPtr(10), intPtr(20)))
	assert.Equal(t, " ORDER BY (SELECT NULL) OFFSET 0 ROWS FETCH NEXT 5 ROWS ONLY", d.Paginate("", intPtr(5), nil))
	assert.Equal(t, " ORDER BY (SELECT NULL) OFFSET 3 ROWS", d.Paginate("", nil, intPtr(3)))
}

func TestPaginateSQLite(t *testing.T) {
	d := SQLite{}
	assert.Equal(t, "", d.Paginate("", nil, nil))
	assert.Equal(t, " ORDER BY [ID] LIMIT 10 OFFSET 20", d.Paginate("[ID]", intPtr(10), intPtr(20)))
	assert.Equal(t, " LIMIT 5", d.Paginate("", intPtr(5), nil))
	assert.Equal(t, " LIMIT -1 OFFSET 3", d.Paginate("", nil, intPtr(3)))
}
