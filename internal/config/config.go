// Package config holds the settings of the chiefofstaff server.
//
// Values are layered: Default, then an optional YAML file, then command
// line flags and environment variables (see cmdflags.Apply).
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/andrebq/chiefofstaff/credstore"
	"github.com/andrebq/chiefofstaff/internal/logutil"
	"github.com/andrebq/chiefofstaff/password"
	"gopkg.in/yaml.v3"
)

type (
	Config struct {
		Bind     string   `yaml:"bind"`
		Database Database `yaml:"database"`
		Cookie   Cookie   `yaml:"cookie"`
		Password Password `yaml:"password"`
		// SessionCacheTTL of zero disables the session cache
		SessionCacheTTL time.Duration `yaml:"session_cache_ttl"`
		CORSOrigins     []string      `yaml:"cors_origins"`
		FrontendURL     string        `yaml:"frontend_url"`
		Log             Log           `yaml:"log"`
	}

	Database struct {
		Driver       string `yaml:"driver"`
		DSN          string `yaml:"dsn"`
		Migrate      bool   `yaml:"migrate"`
		MaxOpenConns int    `yaml:"max_open_conns"`
	}

	Cookie struct {
		Secure bool `yaml:"secure"`
	}

	Password struct {
		Scheme     string                `yaml:"scheme"`
		BcryptCost int                   `yaml:"bcrypt_cost"`
		Argon2     password.Argon2Params `yaml:"argon2"`
	}

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	}

	Invalid struct {
		Field  string
		Reason string
	}
)

func (i Invalid) Error() string {
	return fmt.Sprintf("invalid configuration for %v: %v", i.Field, i.Reason)
}

func Default() Config {
	return Config{
		Bind: "127.0.0.1:8000",
		Database: Database{
			Driver:  string(credstore.SQLite3),
			DSN:     "chiefofstaff.db",
			Migrate: true,
		},
		Password: Password{
			Scheme:     password.SchemeBcrypt,
			BcryptCost: 12,
			Argon2:     password.DefaultArgon2Params(),
		},
		SessionCacheTTL: time.Minute,
		CORSOrigins:     []string{"http://localhost:3000"},
		Log: Log{
			Level:  "info",
			Format: logutil.FormatJSON,
		},
	}
}

// LoadFile overlays the YAML document at path on top of cfg. Keys missing
// from the file keep their current value.
func LoadFile(cfg *Config, path string) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to read config file %v, cause %w", path, err)
	}
	if err := yaml.Unmarshal(buf, cfg); err != nil {
		return fmt.Errorf("unable to parse config file %v, cause %w", path, err)
	}
	return nil
}

func (c Config) Validate() error {
	if c.Bind == "" {
		return Invalid{Field: "bind", Reason: "must not be empty"}
	}
	if _, err := credstore.ParseDialect(c.Database.Driver); err != nil {
		return Invalid{Field: "database.driver", Reason: err.Error()}
	}
	if c.Database.DSN == "" {
		return Invalid{Field: "database.dsn", Reason: "must not be empty"}
	}
	if _, err := c.Hasher(); err != nil {
		return Invalid{Field: "password.scheme", Reason: err.Error()}
	}
	if c.SessionCacheTTL < 0 {
		return Invalid{Field: "session_cache_ttl", Reason: "must not be negative"}
	}
	if c.FrontendURL != "" {
		u, err := url.Parse(c.FrontendURL)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return Invalid{Field: "frontend_url", Reason: "must be an absolute http(s) url"}
		}
	}
	if _, err := logutil.New(nil, c.Log.Level, c.Log.Format); err != nil {
		return Invalid{Field: "log", Reason: err.Error()}
	}
	return nil
}

// Hasher builds the password hasher described by the configuration.
func (c Config) Hasher() (password.Hasher, error) {
	chain, err := password.Named(c.Password.Scheme, c.Password.BcryptCost, c.Password.Argon2)
	if err != nil {
		return nil, err
	}
	return chain, nil
}

func (c Config) StoreOptions() credstore.Options {
	return credstore.Options{
		Driver:       c.Database.Driver,
		DSN:          c.Database.DSN,
		Migrate:      c.Database.Migrate,
		MaxOpenConns: c.Database.MaxOpenConns,
	}
}
