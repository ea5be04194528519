package db

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	sqlite3 "github.com/mattn/go-sqlite3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// sqliteDriverName は LOWER() を Unicode 対応版に差し替えた SQLite ドライバ。
// 組み込みの LOWER() は ASCII しか小文字化しない。
const sqliteDriverName = "sqlite3_unicode"

func init() {
	sql.Register(sqliteDriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("lower", sqliteLower, true)
		},
	})
	sqlx.BindDriver(sqliteDriverName, sqlx.QUESTION)
}

// Fold is the case-insensitive comparison key for search text: compatibility
// forms are folded (ＡＢＣ → ABC) and the result lower-cased.
func Fold(s string) string {
	// Caser は状態を持つので呼び出しごとに作る
	return cases.Lower(language.Und).String(norm.NFKC.String(s))
}

func sqliteLower(v any) any {
	switch s := v.(type) {
	case string:
		return Fold(s)
	case []byte:
		if s == nil {
			return nil // NULL
		}
		return Fold(string(s))
	default:
		return v
	}
}
