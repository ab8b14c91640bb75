package catalog

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureSchema = `
CREATE TABLE users (
	ID INTEGER PRIMARY KEY,
	Name TEXT,
	Flag BOOLEAN,
	Birthday DATETIME,
	Joined DATE,
	Score REAL,
	Balance DECIMAL(10, 2),
	Token UUID NOT NULL,
	Avatar BLOB
);
CREATE TABLE partner (id INTEGER PRIMARY KEY, name VARCHAR(64) NOT NULL);
CREATE VIEW active_users AS SELECT ID, Name FROM users WHERE Flag = TRUE;
`

func memoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open(DriverSQLite, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(fixtureSchema)
	require.NoError(t, err)
	return db
}

func TestIntrospect(t *testing.T) {
	db := memoryDB(t)

	c, err := Introspect(context.Background(), db)
	require.NoError(t, err)

	names := []string{}
	for _, m := range c.Models() {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"active_users", "partner", "users"}, names)

	users, err := c.Model("users")
	require.NoError(t, err)

	want := map[string]ScalarType{
		"ID":       TypeInt,
		"Name":     TypeString,
		"Flag":     TypeBool,
		"Birthday": TypeDateTime,
		"Joined":   TypeDate,
		"Score":    TypeFloat,
		"Balance":  TypeDecimal,
		"Token":    TypeUUID,
		"Avatar":   TypeBytes,
	}
	for name, typ := range want {
		col, ok := users.Column(name)
		require.True(t, ok, name)
		assert.Equal(t, typ, col.Type, name)
	}

	id, _ := users.Column("ID")
	assert.True(t, id.PrimaryKey)
	assert.False(t, id.Nullable)

	token, _ := users.Column("Token")
	assert.False(t, token.Nullable)

	name, _ := users.Column("Name")
	assert.True(t, name.Nullable)
}

func TestIntrospectSelectedTables(t *testing.T) {
	db := memoryDB(t)

	c, err := Introspect(context.Background(), db, "partner")
	require.NoError(t, err)
	require.Len(t, c.Models(), 1)
	assert.Equal(t, "partner", c.Models()[0].Name)

	_, err = Introspect(context.Background(), db, "ghost")
	assert.ErrorIs(t, err, ErrModelNotFound)
}

func TestOpenDatabaseIsReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")

	setup, err := sql.Open(DriverSQLite, path)
	require.NoError(t, err)
	_, err = setup.Exec("CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)")
	require.NoError(t, err)
	require.NoError(t, setup.Close())

	db, err := OpenDatabase("sqlite://" + path)
	require.NoError(t, err)
	defer db.Close()

	c, err := Introspect(context.Background(), db)
	require.NoError(t, err)
	_, err = c.Model("notes")
	assert.NoError(t, err)

	_, err = db.Exec("INSERT INTO notes (body) VALUES ('x')")
	assert.Error(t, err)
}

func TestDriverFor(t *testing.T) {
	tests := []struct {
		dsn, driver, source string
	}{
		{"app.db", DriverSQLite, "app.db"},
		{"sqlite://data/app.db", DriverSQLite, "data/app.db"},
		{"file:test.db?cache=shared", DriverSQLite, "file:test.db?cache=shared"},
		{"libsql://db.turso.io?authToken=x", DriverLibSQL, "libsql://db.turso.io?authToken=x"},
		{"https://db.turso.io", DriverLibSQL, "https://db.turso.io"},
	}
	for _, tt := range tests {
		driver, source := DriverFor(tt.dsn)
		assert.Equal(t, tt.driver, driver, tt.dsn)
		assert.Equal(t, tt.source, source, tt.dsn)
	}
}

func TestScalarTypeForDeclared(t *testing.T) {
	assert.Equal(t, TypeInt, ScalarTypeForDeclared("bigint"))
	assert.Equal(t, TypeString, ScalarTypeForDeclared("NVARCHAR(50)"))
	assert.Equal(t, TypeBytes, ScalarTypeForDeclared(""))
	assert.Equal(t, TypeFloat, ScalarTypeForDeclared("double precision"))
	assert.Equal(t, TypeDecimal, ScalarTypeForDeclared("NUMERIC"))
	assert.Equal(t, TypeBool, ScalarTypeForDeclared("bit"))
	assert.Equal(t, TypeDateTime, ScalarTypeForDeclared("timestamp with time zone"))
}
