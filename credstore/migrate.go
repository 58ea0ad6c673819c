package credstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/andrebq/chiefofstaff/internal/logutil"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

type (
	gooseLogger struct {
		log zerolog.Logger
	}
)

//go:embed migrations
var migrations embed.FS

var (
	// goose keeps its configuration in package globals
	gooseLock sync.Mutex

	// gooseUp is a seam for tests
	gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
		return goose.UpContext(ctx, db, dir)
	}
)

// Migrate brings the schema of db up to date for the given dialect.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	dir, err := fs.Sub(migrations, "migrations/"+string(dialect))
	if err != nil {
		return fmt.Errorf("unable to locate migrations for %v, cause %w", dialect, err)
	}
	gooseLock.Lock()
	defer gooseLock.Unlock()
	goose.SetBaseFS(dir)
	goose.SetLogger(gooseLogger{log: logutil.GetOrDefault(ctx).With().Str("component", "migrations").Logger()})
	if err := goose.SetDialect(string(dialect)); err != nil {
		return fmt.Errorf("unable to configure migration dialect, cause %w", err)
	}
	if err := gooseUp(ctx, db, "."); err != nil {
		return fmt.Errorf("unable to apply migrations, cause %w", err)
	}
	return nil
}

func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.log.Info().Msgf(strings.TrimSpace(format), v...)
}

func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	g.log.Fatal().Msgf(strings.TrimSpace(format), v...)
}
