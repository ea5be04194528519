package db

import (
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
)

// Dialect は接続先DBの種類。SQLの方言差分はここに閉じ込める。
type Dialect string

const (
	MySQL    Dialect = "mysql"
	SQLite   Dialect = "sqlite3"
	Postgres Dialect = "postgres"
)

func ParseDialect(s string) (Dialect, error) {
	switch Dialect(s) {
	case MySQL, SQLite, Postgres:
		return Dialect(s), nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", s)
	}
}

// DriverName is the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	switch d {
	case Postgres:
		return "pgx"
	case SQLite:
		return sqliteDriverName
	default:
		return string(d)
	}
}

// ForUpdate returns the row-lock suffix for SELECTs inside a transaction.
// SQLite has no row locks; the single writer connection serialises transactions instead.
func (d Dialect) ForUpdate() string {
	if d == SQLite {
		return ""
	}
	return " FOR UPDATE"
}

func (d Dialect) SupportsReturning() bool {
	return d != MySQL
}

// Goqu returns a query builder bound to the dialect, emitting placeholders instead of literals.
func (d Dialect) Goqu() goqu.DialectWrapper {
	return goqu.Dialect(string(d))
}
