package db

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
database:
  driver: sqlite3
  path: /tmp/x.db
`))
	require.NoError(t, err)
	assert.Equal(t, ModeDev, cfg.Mode)
	assert.Equal(t, ":8443", cfg.Server.Addr)
	assert.Equal(t, 14*24*time.Hour, cfg.LoanPeriod())
	assert.Equal(t, 7, cfg.Loans.DueSoonDays)
	assert.Equal(t, time.UTC, cfg.Location())
	assert.False(t, cfg.TLSEnabled())
}

func TestParseConfig_Full(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
version: "2.1.0"
mode: release
server:
  addr: ":9000"
certificate:
  cert: server.crt
  key: server.key
database:
  driver: postgres
  host: db
  port: 5432
  user: app
  password: pw
  dbname: bookhive
auth:
  jwt_secret: s3cret
loans:
  period_days: 21
  due_soon_days: 3
  timezone: Asia/Tokyo
`))
	require.NoError(t, err)
	assert.Equal(t, "app", cfg.DB.Username)
	assert.Equal(t, 21*24*time.Hour, cfg.LoanPeriod())
	assert.Equal(t, "Asia/Tokyo", cfg.Location().String())
	assert.True(t, cfg.TLSEnabled())
}

func TestParseConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"mode":     "mode: staging\ndatabase: {driver: sqlite3, path: x.db}",
		"driver":   "database: {driver: oracle}",
		"sqlite":   "database: {driver: sqlite3}",
		"timezone": "database: {driver: sqlite3, path: x.db}\nloans: {timezone: Mars/Olympus}",
		"secret":   "mode: release\ndatabase: {driver: sqlite3, path: x.db}",
		"yaml":     "database: [",
		"period":   "database: {driver: sqlite3, path: x.db}\nloans: {period_days: 0}",
		"due_soon": "database: {driver: sqlite3, path: x.db}\nloans: {due_soon_days: -1}",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestParseConfig_ExplicitZeroDueSoonDays(t *testing.T) {
	cfg, err := ParseConfig([]byte("database: {driver: sqlite3, path: x.db}\nloans: {due_soon_days: 0, timezone: Asia/Tokyo}"))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Loans.DueSoonDays)
	assert.Equal(t, 14*24*time.Hour, cfg.LoanPeriod())
}

func TestParseConfig_EnvOverrides(t *testing.T) {
	t.Setenv(envJWTSecret, "from-env")
	t.Setenv(envDBPassword, "db-env")

	cfg, err := ParseConfig([]byte("mode: release\ndatabase: {driver: mysql, password: file}"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "db-env", cfg.DB.Password)
}

func TestLoadConfig_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: {driver: sqlite3, path: a.db}"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "a.db", cfg.DB.Path)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBuildDSN(t *testing.T) {
	dsn, err := buildDSN(MySQL, DatabaseConfig{Host: "db", Port: 3306, Username: "u", Password: "p", DBName: "lib"})
	require.NoError(t, err)
	assert.Contains(t, dsn, "u:p@tcp(db:3306)/lib")
	assert.Contains(t, dsn, "parseTime=true")

	dsn, err = buildDSN(Postgres, DatabaseConfig{Host: "db", Port: 5432, Username: "u", Password: "p", DBName: "lib"})
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/lib?sslmode=disable&timezone=UTC", dsn)

	dsn, err = buildDSN(SQLite, DatabaseConfig{Path: filepath.Join(t.TempDir(), "sub", "x.db")})
	require.NoError(t, err)
	assert.Contains(t, dsn, "_foreign_keys=1")
}

func TestDialect(t *testing.T) {
	assert.Equal(t, "pgx", Postgres.DriverName())
	assert.Equal(t, "", SQLite.ForUpdate())
	assert.Equal(t, " FOR UPDATE", MySQL.ForUpdate())
	assert.False(t, MySQL.SupportsReturning())

	q, args, err := SQLite.Goqu().From("loans").Where(goqu.Ex{"status": "pending"}).Prepared(true).ToSQL()
	require.NoError(t, err)
	assert.Contains(t, q, "FROM `loans`")
	assert.Contains(t, q, "`status` = ?")
	assert.Equal(t, []any{"pending"}, args)

	_, err = ParseDialect("oracle")
	assert.Error(t, err)
}
