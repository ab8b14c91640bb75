package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// Driver names registered by the imported database drivers.
const (
	DriverSQLite = "sqlite3"
	DriverLibSQL = "libsql"
)

var remotePrefixes = []string{"libsql://", "https://", "http://", "wss://", "ws://"}

// DriverFor picks the driver for dsn. Remote libSQL URLs (libsql://,
// https://, ws://) use the libSQL client; everything else is a local SQLite
// file or URI. A "sqlite://" prefix is stripped.
func DriverFor(dsn string) (driver, source string) {
	for _, p := range remotePrefixes {
		if strings.HasPrefix(dsn, p) {
			return DriverLibSQL, dsn
		}
	}
	return DriverSQLite, strings.TrimPrefix(dsn, "sqlite://")
}

// OpenDatabase opens and pings the database at dsn.
//
// Local SQLite connections are limited to one and switched to read-only
// with PRAGMA query_only, since introspection never writes.
func OpenDatabase(dsn string) (*sql.DB, error) {
	driver, source := DriverFor(dsn)

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if _, err := db.Exec("PRAGMA query_only = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragmas: %w", err)
		}
	}
	return db, nil
}

const introspectQuery = `
	SELECT m.name, l.name, l.type, l."notnull", l.pk
	FROM sqlite_master m
	JOIN pragma_table_info(m.name) l
	WHERE m.type IN ('table', 'view') AND m.name NOT LIKE 'sqlite_%'
	ORDER BY m.name ASC, l.cid ASC`

// Introspect builds a catalog from the schema of db. When tables is
// non-empty only those tables (or views) are included; naming a table that
// does not exist is an error.
func Introspect(ctx context.Context, db *sql.DB, tables ...string) (*Catalog, error) {
	rows, err := db.QueryContext(ctx, introspectQuery)
	if err != nil {
		return nil, fmt.Errorf("introspect schema: %w", err)
	}
	defer rows.Close()

	wanted := make(map[string]bool, len(tables))
	for _, t := range tables {
		wanted[t] = true
	}

	var (
		order   []string
		columns = make(map[string][]Column)
	)
	for rows.Next() {
		var (
			table, name, declared string
			notNull, pk           int
		)
		if err := rows.Scan(&table, &name, &declared, &notNull, &pk); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		if len(wanted) > 0 && !wanted[table] {
			continue
		}
		if _, seen := columns[table]; !seen {
			order = append(order, table)
		}
		columns[table] = append(columns[table], Column{
			Name:       name,
			Type:       ScalarTypeForDeclared(declared),
			Nullable:   notNull == 0 && pk == 0,
			PrimaryKey: pk > 0,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("introspect schema: %w", err)
	}

	for _, t := range tables {
		if _, ok := columns[t]; !ok {
			return nil, fmt.Errorf("%w: table %s", ErrModelNotFound, t)
		}
	}

	c := &Catalog{}
	for _, table := range order {
		m, err := NewModel(table, table, columns[table]...)
		if err != nil {
			return nil, err
		}
		if err := c.Add(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ScalarTypeForDeclared maps a declared SQL column type to a ScalarType
// using SQLite's affinity rules, refined for booleans, dates and uuids.
func ScalarTypeForDeclared(declared string) ScalarType {
	t := strings.ToUpper(strings.TrimSpace(declared))
	switch {
	case strings.Contains(t, "UUID"), strings.Contains(t, "UNIQUEIDENTIFIER"):
		return TypeUUID
	case strings.Contains(t, "BOOL"), t == "BIT":
		return TypeBool
	case strings.Contains(t, "DATETIME"), strings.Contains(t, "TIMESTAMP"):
		return TypeDateTime
	case strings.Contains(t, "DATE"):
		return TypeDate
	case strings.Contains(t, "TIME"):
		return TypeDateTime
	case strings.Contains(t, "INT"):
		return TypeInt
	case strings.Contains(t, "CHAR"), strings.Contains(t, "CLOB"), strings.Contains(t, "TEXT"):
		return TypeString
	case t == "", strings.Contains(t, "BLOB"):
		return TypeBytes
	case strings.Contains(t, "REAL"), strings.Contains(t, "FLOA"), strings.Contains(t, "DOUB"):
		return TypeFloat
	default:
		return TypeDecimal
	}
}
