// Package testutil provides shared models and databases for tests.
package testutil

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Henka-Programmer/Marin/internal/catalog"
)

// UsersModel returns the users model used across tests.
//
//	users(ID int pk, Name string, Flag bool, Birthday datetime,
//	      parent_id int, Score float, Token uuid, Credit decimal)
func UsersModel() *catalog.Model {
	return catalog.MustModel("users", "users",
		catalog.Column{Name: "ID", Type: catalog.TypeInt, PrimaryKey: true},
		catalog.Column{Name: "Name", Type: catalog.TypeString, Nullable: true},
		catalog.Column{Name: "Flag", Type: catalog.TypeBool, Nullable: true},
		catalog.Column{Name: "Birthday", Type: catalog.TypeDateTime, Nullable: true},
		catalog.Column{Name: "parent_id", Type: catalog.TypeInt, Nullable: true},
		catalog.Column{Name: "Score", Type: catalog.TypeFloat, Nullable: true},
		catalog.Column{Name: "Token", Type: catalog.TypeUUID, Nullable: true},
		catalog.Column{Name: "Credit", Type: catalog.TypeDecimal, Nullable: true},
	)
}

// PartnerModel returns the partner model users.parent_id points to.
func PartnerModel() *catalog.Model {
	return catalog.MustModel("partner", "partner",
		catalog.Column{Name: "id", Type: catalog.TypeInt, PrimaryKey: true},
		catalog.Column{Name: "Name", Type: catalog.TypeString},
	)
}

// Catalog returns a catalog holding UsersModel and PartnerModel.
func Catalog() *catalog.Catalog {
	c, err := catalog.New(UsersModel(), PartnerModel())
	if err != nil {
		panic(err)
	}
	return c
}

const seedSQL = `
CREATE TABLE users (
	ID INTEGER PRIMARY KEY,
	Name TEXT,
	Flag BOOLEAN,
	Birthday DATETIME,
	parent_id INTEGER,
	Score REAL,
	Token TEXT,
	Credit TEXT
);
CREATE TABLE partner (id INTEGER PRIMARY KEY, Name TEXT NOT NULL);

INSERT INTO users (ID, Name, Flag, Birthday, parent_id, Score) VALUES
	(1,  'henka',     1,    '1990-01-01 08:30:00', NULL, 9.5),
	(2,  'alice',     0,    '1985-06-15 00:00:00', 1,    7.0),
	(10, 'bob',       NULL, '1990-01-01 00:00:00', 1,    NULL),
	(13, NULL,        1,    NULL,                  2,    3.0),
	(20, 'Henrietta', 0,    '2001-12-31 23:59:59', NULL, 5.0);

INSERT INTO partner (id, Name) VALUES (1, 'acme'), (2, 'globex');
`

// SeededDB returns an in-memory SQLite database holding the users and
// partner tables with a fixed set of rows:
//
//	ID  Name       Flag  Birthday             parent_id  Score
//	1   henka      1     1990-01-01 08:30:00  NULL       9.5
//	2   alice      0     1985-06-15 00:00:00  1          7.0
//	10  bob        NULL  1990-01-01 00:00:00  1          NULL
//	13  NULL       1     NULL                 2          3.0
//	20  Henrietta  0     2001-12-31 23:59:59  NULL       5.0
//
// The database is closed when the test ends.
func SeededDB(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(seedSQL); err != nil {
		t.Fatalf("seed sqlite: %v", err)
	}
	return db
}

// IDs runs query and collects the first column of every row as int64.
func IDs(t testing.TB, db *sql.DB, query string, args ...any) []int64 {
	t.Helper()

	rows, err := db.Query(query, args...)
	if err != nil {
		t.Fatalf("query %q: %v", query, err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			t.Fatalf("scan: %v", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows: %v", err)
	}
	return ids
}
