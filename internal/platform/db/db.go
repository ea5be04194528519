package db

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

// Handle is the process-wide storage handle: opened once at startup and
// passed by reference into every component that touches the database.
type Handle struct {
	*sqlx.DB
	Dialect Dialect
}

func Connect(ctx context.Context, c DatabaseConfig) (*Handle, error) {
	dialect, err := ParseDialect(c.Driver)
	if err != nil {
		return nil, err
	}

	dsn, err := buildDSN(dialect, c)
	if err != nil {
		return nil, err
	}

	conn, err := sqlx.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}

	tunePool(dialect, conn)

	return &Handle{DB: conn, Dialect: dialect}, nil
}

func buildDSN(d Dialect, c DatabaseConfig) (string, error) {
	switch d {
	case MySQL:
		mc := mysql.NewConfig()
		mc.User = c.Username
		mc.Passwd = c.Password
		mc.Net = "tcp"
		mc.Addr = fmt.Sprintf("%s:%d", c.Host, c.Port)
		mc.DBName = c.DBName
		mc.ParseTime = true
		mc.Loc = time.UTC
		mc.Timeout = 3 * time.Second
		mc.ReadTimeout = 5 * time.Second
		mc.WriteTimeout = 5 * time.Second
		return mc.FormatDSN(), nil
	case Postgres:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.Username, c.Password),
			Host:     c.Host + ":" + strconv.Itoa(c.Port),
			Path:     "/" + c.DBName,
			RawQuery: "sslmode=disable&timezone=UTC",
		}
		return u.String(), nil
	case SQLite:
		// 初回起動でも開けるようにディレクトリを作っておく
		if dir := filepath.Dir(c.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return "", fmt.Errorf("create db dir: %w", err)
			}
		}
		return fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1&_journal_mode=WAL", c.Path), nil
	}
	return "", fmt.Errorf("unsupported database driver %q", d)
}

func tunePool(d Dialect, conn *sqlx.DB) {
	if d == SQLite {
		// SQLite は単一ライター。接続を1本にして SQLITE_BUSY を避ける
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
		return
	}
	// 接続プール（合算がサーバの max_connections を超えないよう配分する）
	conn.SetMaxOpenConns(80)
	conn.SetMaxIdleConns(20)
	conn.SetConnMaxLifetime(30 * time.Minute)
	conn.SetConnMaxIdleTime(5 * time.Minute)
}
