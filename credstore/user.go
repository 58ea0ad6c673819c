// Package credstore keeps user credentials and the session token each
// user currently holds.
package credstore

import (
	"time"
)

type (
	// User is the persisted credential record. Only Public should ever be
	// sent to a client.
	User struct {
		ID           string
		Email        string
		PasswordHash string
		FullName     *string
		IsActive     bool
		IsSuperuser  bool
		LastLogin    *time.Time
		SessionToken *string
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}

	PublicUser struct {
		ID          string     `json:"id"`
		Email       string     `json:"email"`
		FullName    *string    `json:"full_name"`
		IsActive    bool       `json:"is_active"`
		IsSuperuser bool       `json:"is_superuser"`
		LastLogin   *time.Time `json:"last_login"`
	}

	// Fields is the set of columns changed by Store.Update, nil pointers
	// are left untouched.
	Fields struct {
		PasswordHash *string
		FullName     *string
		IsActive     *bool
		LastLogin    *time.Time

		// session token is tri-state (keep, set, clear) so it can't be a
		// plain pointer
		sessionTokenSet bool
		sessionToken    *string
	}
)

// SetSessionToken changes the token held by the user, nil clears it.
func (f Fields) SetSessionToken(token *string) Fields {
	f.sessionTokenSet = true
	f.sessionToken = token
	return f
}

// SessionToken returns the new token value and whether it should be
// written at all.
func (f Fields) SessionToken() (*string, bool) {
	return f.sessionToken, f.sessionTokenSet
}

func (f Fields) Empty() bool {
	return f.PasswordHash == nil &&
		f.FullName == nil &&
		f.IsActive == nil &&
		f.LastLogin == nil &&
		!f.sessionTokenSet
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
		LastLogin:   u.LastLogin,
	}
}

func (u *User) HasSession() bool {
	return u.SessionToken != nil && *u.SessionToken != ""
}
