package authprogram

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/andrebq/chiefofstaff/credstore"
	"github.com/andrebq/chiefofstaff/internal/logutil"
	"github.com/andrebq/chiefofstaff/password"
)

type (
	// Service drives users from anonymous to authenticated and back.
	Service struct {
		store  credstore.Store
		hasher password.Hasher
		tokens TokenIssuer
		now    func() time.Time

		dummyOnce   sync.Once
		dummyDigest string
	}

	Option func(*Service)
)

const maxEmailLength = 255

func WithTokenIssuer(issuer TokenIssuer) Option {
	return func(s *Service) { s.tokens = issuer }
}

// WithClock replaces the clock used to record last_login.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(store credstore.Store, hasher password.Hasher, opts ...Option) *Service {
	s := &Service{
		store:  store,
		hasher: hasher,
		tokens: RandomTokens,
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Register creates an active user without a session.
func (s *Service) Register(ctx context.Context, email, passwd string, fullName *string) (*credstore.User, error) {
	if err := validEmail(email); err != nil {
		return nil, err
	}
	if passwd == "" {
		return nil, invalidInput("Password must not be empty")
	}
	_, err := s.store.FindByEmail(ctx, email)
	if err == nil {
		return nil, ErrAlreadyRegistered
	} else if !errors.As(err, &credstore.UserNotFound{}) {
		return nil, fmt.Errorf("unable to check if email is registered, cause %w", err)
	}
	digest, err := s.hasher.Hash(passwd)
	if errors.Is(err, password.ErrTooLong) {
		return nil, invalidInput("Password is too long").withCause(err)
	} else if err != nil {
		return nil, fmt.Errorf("unable to hash password, cause %w", err)
	}
	user, err := s.store.Insert(ctx, &credstore.User{
		Email:        email,
		PasswordHash: digest,
		FullName:     fullName,
		IsActive:     true,
	})
	if errors.As(err, &credstore.EmailTaken{}) {
		// lost a race against another register call
		return nil, ErrAlreadyRegistered.withCause(err)
	} else if err != nil {
		return nil, fmt.Errorf("unable to save new user, cause %w", err)
	}
	log := logutil.GetOrDefault(ctx)
	log.Info().Str("userID", user.ID).Str("email", user.Email).Msg("User registered")
	return user, nil
}

// Login checks the credentials and starts a new session for the user,
// ending any session the user already had.
func (s *Service) Login(ctx context.Context, email, passwd string) (*credstore.User, string, error) {
	if err := validEmail(email); err != nil {
		return nil, "", err
	}
	user, err := s.store.FindByEmail(ctx, email)
	if errors.As(err, &credstore.UserNotFound{}) {
		s.burnVerify(passwd)
		return nil, "", ErrInvalidCredentials
	} else if err != nil {
		return nil, "", fmt.Errorf("unable to find user, cause %w", err)
	}
	if !s.hasher.Verify(passwd, user.PasswordHash) || !user.IsActive {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens()
	if err != nil {
		return nil, "", fmt.Errorf("unable to issue session token, cause %w", err)
	}
	now := s.now().UTC()
	fields := credstore.Fields{LastLogin: &now}.SetSessionToken(&token)
	if s.hasher.NeedsRehash(user.PasswordHash) {
		if digest, err := s.hasher.Hash(passwd); err == nil {
			fields.PasswordHash = &digest
		} else {
			log := logutil.GetOrDefault(ctx)
			log.Warn().Err(err).Str("userID", user.ID).Msg("Unable to upgrade password digest")
		}
	}
	user, err = s.store.Update(ctx, user.ID, fields)
	if errors.As(err, &credstore.UserNotFound{}) {
		// deleted while logging in
		return nil, "", ErrInvalidCredentials.withCause(err)
	} else if err != nil {
		return nil, "", fmt.Errorf("unable to save session, cause %w", err)
	}
	log := logutil.GetOrDefault(ctx)
	log.Info().Str("userID", user.ID).Bool("rehashed", fields.PasswordHash != nil).Msg("User logged in")
	return user, token, nil
}

// Authenticate returns the user currently holding token.
func (s *Service) Authenticate(ctx context.Context, token string) (*credstore.User, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	user, err := s.store.FindBySessionToken(ctx, token)
	if errors.As(err, &credstore.UserNotFound{}) {
		return nil, ErrInvalidSession
	} else if err != nil {
		return nil, fmt.Errorf("unable to lookup session, cause %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidSession
	}
	return user, nil
}

// Logout ends the session of user.
func (s *Service) Logout(ctx context.Context, user *credstore.User) error {
	_, err := s.store.Update(ctx, user.ID, credstore.Fields{}.SetSessionToken(nil))
	if errors.As(err, &credstore.UserNotFound{}) {
		return ErrInvalidSession.withCause(err)
	} else if err != nil {
		return fmt.Errorf("unable to clear session, cause %w", err)
	}
	log := logutil.GetOrDefault(ctx)
	log.Info().Str("userID", user.ID).Msg("User logged out")
	return nil
}

// burnVerify spends the same effort as checking a real password so
// unknown emails can't be told apart by response time.
func (s *Service) burnVerify(passwd string) {
	s.dummyOnce.Do(func() {
		s.dummyDigest, _ = s.hasher.Hash("not a real password")
	})
	s.hasher.Verify(passwd, s.dummyDigest)
}

func validEmail(email string) error {
	if email == "" || len(email) > maxEmailLength || strings.TrimSpace(email) != email {
		return invalidInput("Invalid email address")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return invalidInput("Invalid email address")
	}
	at := strings.LastIndexByte(email, '@')
	if at < 1 || !strings.Contains(email[at+1:], ".") {
		return invalidInput("Invalid email address")
	}
	return nil
}
