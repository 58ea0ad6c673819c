package credstore

import "fmt"

type (
	// EmailTaken is returned by Insert when another user already
	// holds the email.
	EmailTaken struct {
		Email string
	}

	// UserNotFound is returned when no user matches Key, which is either
	// an id, an email or a session token depending on the lookup.
	UserNotFound struct {
		Key string
	}
)

func (e EmailTaken) Error() string {
	return fmt.Sprintf("email %v is already registered", e.Email)
}

func (u UserNotFound) Error() string {
	// key might be a session token
	return "user not found"
}
