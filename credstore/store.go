package credstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andrebq/chiefofstaff/internal/logutil"
	"github.com/google/uuid"
)

type (
	// Store persists users. Every method operates on a single record and
	// is atomic with respect to that record.
	Store interface {
		FindByID(ctx context.Context, id string) (*User, error)
		FindByEmail(ctx context.Context, email string) (*User, error)
		FindBySessionToken(ctx context.Context, token string) (*User, error)
		// Insert assigns a new id to u and persists it.
		Insert(ctx context.Context, u *User) (*User, error)
		// Update writes the given fields and returns the updated user.
		// An empty Fields only checks that the user exists.
		Update(ctx context.Context, id string, fields Fields) (*User, error)
		Ping(ctx context.Context) error
		Close() error
	}

	Options struct {
		Driver       string
		DSN          string
		Migrate      bool
		MaxOpenConns int
	}

	// SQL is a Store backed by database/sql.
	SQL struct {
		db      *sql.DB
		dialect Dialect
		now     func() time.Time
	}

	scanner interface {
		Scan(dest ...interface{}) error
	}
)

const userColumns = `id, email, password_hash, full_name, is_active, is_superuser, last_login, session_token, created_at, updated_at`

// Open connects to the database described by opts and, when requested,
// applies pending migrations.
func Open(ctx context.Context, opts Options) (*SQL, error) {
	dialect, err := ParseDialect(opts.Driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(dialect.driverName(), opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("unable to open %v database, cause %w", dialect, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to reach %v database, cause %w", dialect, err)
	}
	if opts.Migrate {
		if err := Migrate(ctx, db, dialect); err != nil {
			db.Close()
			return nil, err
		}
	}
	maxConns := opts.MaxOpenConns
	if maxConns == 0 && dialect == SQLite3 {
		// sqlite allows a single writer
		maxConns = 1
	}
	db.SetMaxOpenConns(maxConns)
	return NewSQL(db, dialect), nil
}

// NewSQL wraps an already open database, the schema must be up to date.
func NewSQL(db *sql.DB, dialect Dialect) *SQL {
	return &SQL{
		db:      db,
		dialect: dialect,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *SQL) DB() *sql.DB { return s.db }

func (s *SQL) Dialect() Dialect { return s.dialect }

func (s *SQL) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQL) Close() error {
	return s.db.Close()
}

func (s *SQL) FindByID(ctx context.Context, id string) (*User, error) {
	if !validID(id) {
		return nil, UserNotFound{Key: id}
	}
	return s.findOne(ctx, "id", id)
}

func (s *SQL) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.findOne(ctx, "email", email)
}

func (s *SQL) FindBySessionToken(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, UserNotFound{Key: token}
	}
	return s.findOne(ctx, "session_token", token)
}

func (s *SQL) findOne(ctx context.Context, column string, value string) (*User, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.rebind(`select `+userColumns+` from users where `+column+` = ?`), value)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, UserNotFound{Key: value}
	} else if err != nil {
		return nil, fmt.Errorf("unable to find user by %v, cause %w", column, err)
	}
	return u, nil
}

func (s *SQL) Insert(ctx context.Context, u *User) (*User, error) {
	if _, err := s.FindByEmail(ctx, u.Email); err == nil {
		return nil, EmailTaken{Email: u.Email}
	} else if !errors.As(err, &UserNotFound{}) {
		return nil, err
	}
	now := s.now()
	nu := *u
	nu.ID = uuid.NewString()
	nu.CreatedAt = now
	nu.UpdatedAt = now
	_, err := s.db.ExecContext(ctx, s.dialect.rebind(`insert into users(`+userColumns+`) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		nu.ID, nu.Email, nu.PasswordHash, nullString(nu.FullName), nu.IsActive, nu.IsSuperuser,
		nullTime(nu.LastLogin), nullString(nu.SessionToken), nu.CreatedAt, nu.UpdatedAt)
	if isUniqueViolation(err) {
		return nil, EmailTaken{Email: u.Email}
	} else if err != nil {
		return nil, fmt.Errorf("unable to insert user, cause %w", err)
	}
	log := logutil.GetOrDefault(ctx)
	log.Debug().Str("userID", nu.ID).Msg("User inserted")
	return &nu, nil
}

func (s *SQL) Update(ctx context.Context, id string, fields Fields) (*User, error) {
	if fields.Empty() {
		return s.FindByID(ctx, id)
	}
	if !validID(id) {
		return nil, UserNotFound{Key: id}
	}
	var sets []string
	var args []interface{}
	add := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}
	if fields.PasswordHash != nil {
		add("password_hash", *fields.PasswordHash)
	}
	if fields.FullName != nil {
		add("full_name", *fields.FullName)
	}
	if fields.IsActive != nil {
		add("is_active", *fields.IsActive)
	}
	if fields.LastLogin != nil {
		add("last_login", fields.LastLogin.UTC())
	}
	if token, ok := fields.SessionToken(); ok {
		add("session_token", nullString(token))
	}
	add("updated_at", s.now())
	args = append(args, id)

	query := `update users set ` + strings.Join(sets, ", ") + ` where id = ?`
	res, err := s.db.ExecContext(ctx, s.dialect.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("unable to update user %v, cause %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("unable to update user %v, cause %w", id, err)
	} else if affected == 0 {
		return nil, UserNotFound{Key: id}
	}
	return s.FindByID(ctx, id)
}

func scanUser(row scanner) (*User, error) {
	var u User
	var fullName, token sql.NullString
	var lastLogin sql.NullTime
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &fullName, &u.IsActive, &u.IsSuperuser,
		&lastLogin, &token, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if fullName.Valid {
		u.FullName = &fullName.String
	}
	if token.Valid {
		u.SessionToken = &token.String
	}
	if lastLogin.Valid {
		t := lastLogin.Time.UTC()
		u.LastLogin = &t
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}

// validID rejects ids that could never have been issued by Insert, postgres
// would fail the whole query on them.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
