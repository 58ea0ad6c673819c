package cmdflags

import (
	"context"

	"github.com/andrebq/chiefofstaff/internal/config"
	"github.com/andrebq/chiefofstaff/internal/logutil"
	"github.com/urfave/cli/v2"
)

type (
	// Layer binds flags to a scratch configuration and copies only the
	// flags the user actually set on top of a loaded configuration, so a
	// flag default never overrides a value from the config file.
	Layer struct {
		file     string
		scratch  config.Config
		bindings []binding
	}

	binding struct {
		name  string
		flag  cli.Flag
		apply func(c *cli.Context, from *config.Config, to *config.Config)
	}
)

// Database returns the flags needed to open the credential store.
func Database() *Layer {
	l := &Layer{scratch: config.Default()}
	l.database()
	l.logging()
	return l
}

// Server returns every flag the serve command understands.
func Server() *Layer {
	l := Database()
	s := &l.scratch
	l.bind("bind", Bind(&s.Bind), func(_ *cli.Context, from, to *config.Config) { to.Bind = from.Bind })
	l.bind("secure-cookie", SecureCookie(&s.Cookie.Secure), func(_ *cli.Context, from, to *config.Config) { to.Cookie.Secure = from.Cookie.Secure })
	l.bind("password-scheme", PasswordScheme(&s.Password.Scheme), func(_ *cli.Context, from, to *config.Config) { to.Password.Scheme = from.Password.Scheme })
	l.bind("bcrypt-cost", BcryptCost(&s.Password.BcryptCost), func(_ *cli.Context, from, to *config.Config) { to.Password.BcryptCost = from.Password.BcryptCost })
	l.bind("session-cache-ttl", SessionCacheTTL(&s.SessionCacheTTL), func(_ *cli.Context, from, to *config.Config) { to.SessionCacheTTL = from.SessionCacheTTL })
	l.bind("cors-origin", CORSOrigins(s.CORSOrigins), func(c *cli.Context, _, to *config.Config) { to.CORSOrigins = c.StringSlice("cors-origin") })
	l.bind("frontend-url", FrontendURL(&s.FrontendURL), func(_ *cli.Context, from, to *config.Config) { to.FrontendURL = from.FrontendURL })
	return l
}

// Passwords returns the flags needed to hash passwords outside the server.
func Passwords() *Layer {
	l := Database()
	s := &l.scratch
	l.bind("password-scheme", PasswordScheme(&s.Password.Scheme), func(_ *cli.Context, from, to *config.Config) { to.Password.Scheme = from.Password.Scheme })
	l.bind("bcrypt-cost", BcryptCost(&s.Password.BcryptCost), func(_ *cli.Context, from, to *config.Config) { to.Password.BcryptCost = from.Password.BcryptCost })
	return l
}

func (l *Layer) database() {
	s := &l.scratch
	l.bind("db-driver", DatabaseDriver(&s.Database.Driver), func(_ *cli.Context, from, to *config.Config) { to.Database.Driver = from.Database.Driver })
	l.bind("db", DatabaseDSN(&s.Database.DSN), func(_ *cli.Context, from, to *config.Config) { to.Database.DSN = from.Database.DSN })
	l.bind("migrate", Migrate(&s.Database.Migrate), func(_ *cli.Context, from, to *config.Config) { to.Database.Migrate = from.Database.Migrate })
}

func (l *Layer) logging() {
	s := &l.scratch
	l.bind("log-level", LogLevel(&s.Log.Level), func(_ *cli.Context, from, to *config.Config) { to.Log.Level = from.Log.Level })
	l.bind("log-format", LogFormat(&s.Log.Format), func(_ *cli.Context, from, to *config.Config) { to.Log.Format = from.Log.Format })
}

func (l *Layer) bind(name string, flag cli.Flag, apply func(*cli.Context, *config.Config, *config.Config)) {
	l.bindings = append(l.bindings, binding{name: name, flag: flag, apply: apply})
}

func (l *Layer) Flags() []cli.Flag {
	flags := []cli.Flag{ConfigFile(&l.file)}
	for _, b := range l.bindings {
		flags = append(flags, b.flag)
	}
	return flags
}

// Load returns the defaults, overlaid by the config file (when given),
// overlaid by the flags set in c. The result is validated.
func (l *Layer) Load(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if l.file != "" {
		if err := config.LoadFile(&cfg, l.file); err != nil {
			return cfg, err
		}
	}
	for _, b := range l.bindings {
		if c.IsSet(b.name) {
			b.apply(c, &l.scratch, &cfg)
		}
	}
	return cfg, cfg.Validate()
}

// Setup loads the configuration and returns a context carrying the logger
// it describes.
func (l *Layer) Setup(c *cli.Context) (config.Config, context.Context, error) {
	cfg, err := l.Load(c)
	if err != nil {
		return cfg, c.Context, err
	}
	logger, err := logutil.New(c.App.ErrWriter, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return cfg, c.Context, err
	}
	return cfg, logutil.WithLogger(c.Context, logger), nil
}
