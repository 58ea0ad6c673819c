package cmdflags

import (
	"time"

	"github.com/urfave/cli/v2"
)

func ConfigFile(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "config",
		Usage:       "Path to a YAML configuration file",
		EnvVars:     []string{"COS_CONFIG"},
		Destination: out,
		Value:       *out,
	}
}

func Bind(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "bind",
		Aliases:     []string{"b"},
		Usage:       "Address to listen for HTTP requests",
		EnvVars:     []string{"COS_BIND"},
		Destination: out,
		Value:       *out,
	}
}

func DatabaseDriver(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "db-driver",
		Usage:       "Database driver, sqlite3 or postgres",
		EnvVars:     []string{"COS_DB_DRIVER"},
		Destination: out,
		Value:       *out,
	}
}

func DatabaseDSN(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "db",
		Aliases:     []string{"database-url"},
		Usage:       "Database connection string, a file path for sqlite3",
		EnvVars:     []string{"DATABASE_URL", "COS_DATABASE_URL"},
		Destination: out,
		Value:       *out,
	}
}

func Migrate(out *bool) cli.Flag {
	return &cli.BoolFlag{
		Name:        "migrate",
		Usage:       "Apply pending schema migrations when opening the database",
		EnvVars:     []string{"COS_MIGRATE"},
		Destination: out,
		Value:       *out,
	}
}

func SecureCookie(out *bool) cli.Flag {
	return &cli.BoolFlag{
		Name:        "secure-cookie",
		Usage:       "Mark the session cookie as Secure, required when served over TLS",
		EnvVars:     []string{"COS_COOKIE_SECURE"},
		Destination: out,
		Value:       *out,
	}
}

func PasswordScheme(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "password-scheme",
		Usage:       "Scheme used to hash new passwords, bcrypt or argon2id",
		EnvVars:     []string{"COS_PASSWORD_SCHEME"},
		Destination: out,
		Value:       *out,
	}
}

func BcryptCost(out *int) cli.Flag {
	return &cli.IntFlag{
		Name:        "bcrypt-cost",
		Usage:       "Cost factor for bcrypt digests",
		EnvVars:     []string{"COS_BCRYPT_COST"},
		Destination: out,
		Value:       *out,
	}
}

func SessionCacheTTL(out *time.Duration) cli.Flag {
	return &cli.DurationFlag{
		Name:        "session-cache-ttl",
		Usage:       "How long resolved sessions are cached in memory, 0 disables the cache",
		EnvVars:     []string{"COS_SESSION_CACHE_TTL"},
		Destination: out,
		Value:       *out,
	}
}

func CORSOrigins(def []string) cli.Flag {
	return &cli.StringSliceFlag{
		Name:    "cors-origin",
		Usage:   "Origin allowed to call the API with credentials, may be repeated",
		EnvVars: []string{"COS_CORS_ORIGINS"},
		Value:   cli.NewStringSlice(def...),
	}
}

func FrontendURL(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "frontend-url",
		Usage:       "Requests not handled by the API are proxied to this URL",
		EnvVars:     []string{"COS_FRONTEND_URL"},
		Destination: out,
		Value:       *out,
	}
}

func LogLevel(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "log-level",
		Usage:       "Minimum level of log messages",
		EnvVars:     []string{"COS_LOG_LEVEL"},
		Destination: out,
		Value:       *out,
	}
}

func LogFormat(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "log-format",
		Usage:       "Log output, json or console",
		EnvVars:     []string{"COS_LOG_FORMAT"},
		Destination: out,
		Value:       *out,
	}
}
