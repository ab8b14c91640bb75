package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Henka-Programmer/Marin/internal/dialect"
	"github.com/Henka-Programmer/Marin/internal/domain"
	"github.com/Henka-Programmer/Marin/internal/sqlquery"
	"github.com/Henka-Programmer/Marin/internal/testutil"
)

// TestSQLiteExecution runs compiled predicates against the seeded database
// to check NULL handling end to end.
func TestSQLiteExecution(t *testing.T) {
	db := testutil.SeededDB(t)

	tests := []struct {
		name   string
		domain domain.Domain
		want   []int64
	}{
		{"or with in list", domain.MustParse("|", []any{"Name", "=", "henka"}, []any{"ID", "in", []int{10, 13, 2}}), []int64{1, 2, 10, 13}},
		{"date only", domain.Domain{domain.MustT("Birthday", "=", "1990-01-01")}, []int64{1, 10}},
		{"boolean false", domain.Domain{domain.MustT("Flag", "=", false)}, []int64{2, 10, 20}},
		{"boolean true keeps non-null", domain.Domain{domain.MustT("Flag", "=", true)}, []int64{1, 2, 13, 20}},
		{"inequality keeps nulls", domain.Domain{domain.MustT("Name", "!=", "henka")}, []int64{2, 10, 13, 20}},
		{"ilike", domain.Domain{domain.MustT("Name", "ilike", "hen")}, []int64{1, 20}},
		{"not like keeps nulls", domain.Domain{domain.MustT("Name", "not like", "hen")}, []int64{2, 10, 13}},
		{"not in keeps nulls", domain.Domain{domain.MustT("ID", "not in", []int{1, 2})}, []int64{10, 13, 20}},
		{"in with null", domain.Domain{domain.MustT("parent_id", "in", []any{1, nil})}, []int64{1, 2, 10, 20}},
		{"in with false is not null", domain.Domain{domain.MustT("Name", "in", []any{"henka", false})}, []int64{1}},
		{"not in with null", domain.Domain{domain.MustT("parent_id", "not in", []any{1, nil})}, []int64{13}},
		{"in empty", domain.Domain{domain.MustT("ID", "in", []int{})}, []int64{}},
		{"not in empty", domain.Domain{domain.MustT("ID", "not in", []int{})}, []int64{1, 2, 10, 13, 20}},
		{"greater than", domain.Domain{domain.MustT("Score", ">", 5)}, []int64{1, 2}},
		{"datetime", domain.Domain{domain.MustT("Birthday", ">", "2000-01-01T12:00:00Z")}, []int64{20}},
		{"negated and", domain.MustParse("!", "&", []any{"Flag", "=", true}, []any{"Score", ">", 5}), []int64{2, 10, 13, 20}},
		{"null", domain.Domain{domain.MustT("Name", "=", nil)}, []int64{13}},
		{"empty", domain.Domain{}, []int64{1, 2, 10, 13, 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := Compile(tt.domain, testutil.UsersModel(), quiet, WithDialect(dialect.SQLite{}))
			require.NoError(t, err)

			expr.Query.SetOrder("[users].[ID]")
			stmt, params := expr.Select("ID")
			assert.Equal(t, tt.want, testutil.IDs(t, db, stmt, sqlquery.Args(params)...), stmt)
		})
	}
}

func TestSQLiteSubQuery(t *testing.T) {
	db := testutil.SeededDB(t)

	sub := sqlquery.New("partner", "", sqlquery.WithDialect(dialect.SQLite{}))
	_, err := Compile(domain.Domain{domain.MustT("Name", "=", "acme")}, testutil.PartnerModel(), quiet, WithQuery(sub))
	require.NoError(t, err)

	d := domain.Domain{
		domain.OperatorAnd,
		domain.Term{Left: "parent_id", Op: domain.OpIn, Right: domain.SubQuery{Query: sub, Columns: []string{"id"}}},
		domain.MustT("Name", "=", "alice"),
	}
	expr, err := Compile(d, testutil.UsersModel(), quiet, WithDialect(dialect.SQLite{}))
	require.NoError(t, err)

	stmt, params := expr.Select("ID")
	assert.Equal(t, []int64{2}, testutil.IDs(t, db, stmt, sqlquery.Args(params)...))
}

func TestSQLiteJoin(t *testing.T) {
	db := testutil.SeededDB(t)

	q := sqlquery.New("users", "", sqlquery.WithDialect(dialect.SQLite{}))
	alias, err := q.LeftJoin(sqlquery.JoinSpec{
		LHSAlias: "users", LHSColumn: "parent_id",
		Table: "partner", Column: "id", Link: "parent_id",
	})
	require.NoError(t, err)

	_, err = Compile(domain.Domain{domain.MustT("Name", "=", "acme")}, testutil.PartnerModel(), quiet,
		WithQuery(q), WithAlias(alias))
	require.NoError(t, err)

	q.SetOrder("[users].[ID]").SetLimit(1).SetOffset(1)
	stmt, params := q.Select("users.ID")
	assert.Equal(t, []int64{10}, testutil.IDs(t, db, stmt, sqlquery.Args(params)...))
}
