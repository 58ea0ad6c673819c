package authprogram_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/andrebq/chiefofstaff/authprogram"
	"github.com/andrebq/chiefofstaff/credstore"
	"github.com/andrebq/chiefofstaff/internal/testutil"
	"github.com/andrebq/chiefofstaff/password"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func acquireService(ctx context.Context, t *testing.T, opts ...authprogram.Option) (*authprogram.Service, *credstore.SQL, func()) {
	store, cleanup := testutil.AcquireStore(ctx, t)
	return authprogram.New(store, password.NewBcrypt(bcrypt.MinCost), opts...), store, cleanup
}

func seqTokens() authprogram.TokenIssuer {
	n := 0
	return func() (string, error) {
		n++
		return fmt.Sprintf("T%d", n), nil
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, store, cleanup := acquireService(ctx, t)
	defer cleanup()

	name := "Alice"
	u, err := svc.Register(ctx, "alice@example.com", "pw123", &name)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", u.Email)
	require.True(t, u.IsActive)
	require.False(t, u.IsSuperuser)
	require.Nil(t, u.SessionToken)
	require.NotEqual(t, "pw123", u.PasswordHash)

	stored, err := store.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, stored.ID)

	_, err = svc.Register(ctx, "alice@example.com", "other", nil)
	require.ErrorIs(t, err, authprogram.ErrAlreadyRegistered)
	var authErr authprogram.Error
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, "Email already registered", authErr.Message)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, cleanup := acquireService(ctx, t)
	defer cleanup()

	for _, email := range []string{"", "alice", "alice@", "@example.com", "Alice <alice@example.com>", " alice@example.com", "alice@localhost"} {
		_, err := svc.Register(ctx, email, "pw", nil)
		require.ErrorIs(t, err, authprogram.Error{Kind: authprogram.InvalidInput}, "email %q", email)
	}
	_, err := svc.Register(ctx, "alice@example.com", "", nil)
	require.ErrorIs(t, err, authprogram.Error{Kind: authprogram.InvalidInput})
}

func TestLoginLogout(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc, _, cleanup := acquireService(ctx, t,
		authprogram.WithTokenIssuer(seqTokens()),
		authprogram.WithClock(func() time.Time { return clock }))
	defer cleanup()

	_, err := svc.Register(ctx, "alice@example.com", "pw123", nil)
	require.NoError(t, err)

	u, t1, err := svc.Login(ctx, "alice@example.com", "pw123")
	require.NoError(t, err)
	require.Equal(t, "T1", t1)
	require.Equal(t, t1, *u.SessionToken)
	require.True(t, clock.Equal(*u.LastLogin))

	me, err := svc.Authenticate(ctx, t1)
	require.NoError(t, err)
	require.Equal(t, u.ID, me.ID)

	_, t2, err := svc.Login(ctx, "alice@example.com", "pw123")
	require.NoError(t, err)
	require.NotEqual(t, t1, t2)

	_, err = svc.Authenticate(ctx, t1)
	require.ErrorIs(t, err, authprogram.ErrInvalidSession)
	me, err = svc.Authenticate(ctx, t2)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, me))
	_, err = svc.Authenticate(ctx, t2)
	require.ErrorIs(t, err, authprogram.ErrInvalidSession)

	_, err = svc.Authenticate(ctx, "")
	require.ErrorIs(t, err, authprogram.ErrNotAuthenticated)
}

func TestLoginDoesNotLeakAccounts(t *testing.T) {
	ctx := context.Background()
	svc, _, cleanup := acquireService(ctx, t)
	defer cleanup()
	_, err := svc.Register(ctx, "alice@example.com", "pw123", nil)
	require.NoError(t, err)

	_, _, unknown := svc.Login(ctx, "bob@example.com", "pw123")
	_, _, wrong := svc.Login(ctx, "alice@example.com", "pw123x")
	require.ErrorIs(t, unknown, authprogram.ErrInvalidCredentials)
	require.ErrorIs(t, wrong, authprogram.ErrInvalidCredentials)
	require.Equal(t, unknown.Error(), wrong.Error())

	// case sensitive match
	_, _, err = svc.Login(ctx, "Alice@example.com", "pw123")
	require.ErrorIs(t, err, authprogram.ErrInvalidCredentials)
}

func TestInactiveUser(t *testing.T) {
	ctx := context.Background()
	svc, store, cleanup := acquireService(ctx, t)
	defer cleanup()
	_, err := svc.Register(ctx, "alice@example.com", "pw123", nil)
	require.NoError(t, err)
	u, token, err := svc.Login(ctx, "alice@example.com", "pw123")
	require.NoError(t, err)

	inactive := false
	_, err = store.Update(ctx, u.ID, credstore.Fields{IsActive: &inactive})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, token)
	require.ErrorIs(t, err, authprogram.ErrInvalidSession)
	_, _, err = svc.Login(ctx, "alice@example.com", "pw123")
	require.ErrorIs(t, err, authprogram.ErrInvalidCredentials)
}

func TestLoginUpgradesDigest(t *testing.T) {
	ctx := context.Background()
	store, cleanup := testutil.AcquireStore(ctx, t)
	defer cleanup()

	legacy := authprogram.New(store, password.NewBcrypt(bcrypt.MinCost))
	_, err := legacy.Register(ctx, "alice@example.com", "pw123", nil)
	require.NoError(t, err)

	argon := password.NewArgon2id(password.Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1})
	svc := authprogram.New(store, password.NewChain(argon, password.NewBcrypt(bcrypt.MinCost)))
	u, _, err := svc.Login(ctx, "alice@example.com", "pw123")
	require.NoError(t, err)
	require.True(t, argon.Recognizes(u.PasswordHash), "digest should be upgraded, got %v", u.PasswordHash)

	_, _, err = svc.Login(ctx, "alice@example.com", "pw123")
	require.NoError(t, err)
}

func TestLogoutUnknownUser(t *testing.T) {
	ctx := context.Background()
	svc, _, cleanup := acquireService(ctx, t)
	defer cleanup()
	err := svc.Logout(ctx, &credstore.User{ID: "4a1b3f4e-9f52-4c7e-a3c5-2a9b2b0c9d11"})
	require.ErrorIs(t, err, authprogram.ErrInvalidSession)
}

func TestTokenIssuerFailure(t *testing.T) {
	ctx := context.Background()
	svc, _, cleanup := acquireService(ctx, t, authprogram.WithTokenIssuer(func() (string, error) {
		return "", errors.New("entropy exhausted")
	}))
	defer cleanup()
	_, err := svc.Register(ctx, "alice@example.com", "pw123", nil)
	require.NoError(t, err)
	_, _, err = svc.Login(ctx, "alice@example.com", "pw123")
	require.Error(t, err)
	var authErr authprogram.Error
	require.False(t, errors.As(err, &authErr), "internal failures are not client errors")

	_, err = svc.Authenticate(ctx, "anything")
	require.ErrorIs(t, err, authprogram.ErrInvalidSession)
}
