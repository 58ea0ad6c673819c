package credstore

import (
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mattn/go-sqlite3"
)

type (
	Dialect string

	UnknownDialect struct {
		Name string
	}
)

const (
	SQLite3  = Dialect("sqlite3")
	Postgres = Dialect("postgres")

	pgUniqueViolation = "23505"
)

func (u UnknownDialect) Error() string {
	return "unknown database driver: " + u.Name
}

func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "sqlite", "sqlite3":
		return SQLite3, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	}
	return "", UnknownDialect{Name: name}
}

// driverName is the database/sql driver registered for the dialect
func (d Dialect) driverName() string {
	if d == Postgres {
		return "pgx"
	}
	return "sqlite3"
}

// rebind converts ? placeholders into the $n form postgres expects.
// Queries in this package never carry a literal ? inside strings.
func (d Dialect) rebind(query string) string {
	if d != Postgres {
		return query
	}
	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}
