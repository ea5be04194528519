package db

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata" // loans.timezone をOSのzoneinfoに依存させない

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "config/config.yaml"

	ModeDev     = "dev"
	ModeRelease = "release"

	defaultAddr        = ":8443"
	defaultLoanDays    = 14
	defaultDueSoonDays = 7
	defaultTimezone    = "UTC"

	envJWTSecret  = "BOOKHIVE_JWT_SECRET"
	envDBPassword = "BOOKHIVE_DB_PASSWORD"
)

type DatabaseConfig struct {
	Driver      string `yaml:"driver"`
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Username    string `yaml:"user"`
	Password    string `yaml:"password"`
	DBName      string `yaml:"dbname"`
	Path        string `yaml:"path"` // sqlite3 のみ
	AutoMigrate bool   `yaml:"auto_migrate"`
}

type Certs struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// LoanConfig holds the circulation policy knobs.
type LoanConfig struct {
	PeriodDays  int    `yaml:"period_days"`
	DueSoonDays int    `yaml:"due_soon_days"`
	Timezone    string `yaml:"timezone"`
}

type Config struct {
	Version     string         `yaml:"version"`
	Mode        string         `yaml:"mode"`
	Server      ServerConfig   `yaml:"server"`
	DB          DatabaseConfig `yaml:"database"`
	Certificate Certs          `yaml:"certificate"`
	Auth        AuthConfig     `yaml:"auth"`
	Loans       LoanConfig     `yaml:"loans"`
}

func LoadConfig(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(buf)
}

// ParseConfig decodes YAML, applies defaults and env overrides, then validates.
func ParseConfig(buf []byte) (*Config, error) {
	// 数値の既定値は先に入れておく（明示的な 0 を未設定と区別するため）
	cfg := Config{Loans: LoanConfig{PeriodDays: defaultLoanDays, DueSoonDays: defaultDueSoonDays}}
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if v := os.Getenv(envJWTSecret); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv(envDBPassword); v != "" {
		cfg.DB.Password = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = ModeDev
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaultAddr
	}
	if c.DB.Driver == "" {
		c.DB.Driver = string(MySQL)
	}
	if c.Loans.Timezone == "" {
		c.Loans.Timezone = defaultTimezone
	}
}

func (c *Config) Validate() error {
	if c.Mode != ModeDev && c.Mode != ModeRelease {
		return fmt.Errorf("invalid mode %q: must be %s or %s", c.Mode, ModeDev, ModeRelease)
	}
	if _, err := ParseDialect(c.DB.Driver); err != nil {
		return err
	}
	if c.DB.Driver == string(SQLite) && c.DB.Path == "" {
		return fmt.Errorf("database.path is required for sqlite3")
	}
	if c.Loans.PeriodDays <= 0 {
		return fmt.Errorf("loans.period_days must be > 0")
	}
	if c.Loans.DueSoonDays < 0 {
		return fmt.Errorf("loans.due_soon_days must be >= 0")
	}
	if _, err := time.LoadLocation(c.Loans.Timezone); err != nil {
		return fmt.Errorf("loans.timezone: %w", err)
	}
	if c.Mode == ModeRelease && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required in release mode")
	}
	return nil
}

// LoanPeriod is the fixed span between issue date and due date.
func (c *Config) LoanPeriod() time.Duration {
	return time.Duration(c.Loans.PeriodDays) * 24 * time.Hour
}

// Location is validated by Validate, so the fallback only covers hand-built configs.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Loans.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// TLSEnabled reports whether both certificate files are configured.
func (c *Config) TLSEnabled() bool {
	return c.Certificate.Cert != "" && c.Certificate.Key != ""
}
