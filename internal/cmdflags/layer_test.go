package cmdflags

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/andrebq/chiefofstaff/internal/config"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func runLayer(t *testing.T, l *Layer, args ...string) config.Config {
	var cfg config.Config
	app := &cli.App{
		Name:  "test",
		Flags: l.Flags(),
		Action: func(c *cli.Context) error {
			var err error
			cfg, err = l.Load(c)
			return err
		},
	}
	require.NoError(t, app.Run(append([]string{"test"}, args...)))
	return cfg
}

func TestLayerPrecedence(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/cos")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
bind: 0.0.0.0:9000
database:
  driver: postgres
session_cache_ttl: 5m
cors_origins: [https://file.example.com]
`), 0600))

	cfg := runLayer(t, Server(), "--config", path, "--bind", "127.0.0.1:7000", "--secure-cookie")
	require.Equal(t, "127.0.0.1:7000", cfg.Bind, "flags win over the file")
	require.Equal(t, "postgres", cfg.Database.Driver, "file wins over defaults")
	require.Equal(t, "postgres://env/cos", cfg.Database.DSN, "environment is applied")
	require.Equal(t, 5*time.Minute, cfg.SessionCacheTTL, "unset flags keep the file value")
	require.Equal(t, []string{"https://file.example.com"}, cfg.CORSOrigins)
	require.True(t, cfg.Cookie.Secure)
}

func TestLayerSlices(t *testing.T) {
	cfg := runLayer(t, Server(), "--cors-origin", "https://a.example.com", "--cors-origin", "https://b.example.com")
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
}

func TestLayerInvalid(t *testing.T) {
	l := Database()
	app := &cli.App{
		Name:  "test",
		Flags: l.Flags(),
		Action: func(c *cli.Context) error {
			_, err := l.Load(c)
			return err
		},
	}
	err := app.Run([]string{"test", "--db-driver", "mysql"})
	require.ErrorAs(t, err, &config.Invalid{})
}
