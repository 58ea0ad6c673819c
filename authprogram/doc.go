// Package authprogram implements password based authentication backed by
// opaque session tokens.
//
// A user registers with an email and a password, the password is only ever
// kept as a salted digest. Logging in issues a fresh random token which is
// stored in the user record, replacing whatever token was there before, so
// a user holds at most one active session at any time.
//
// Tokens are not signed or self-describing, they are just hard to guess.
// Any request presenting the token is authenticated as the user that holds
// it, until that user logs out or logs in again.
//
// Login failures never reveal whether the email exists: an unknown email
// and a wrong password produce the same error and take roughly the same
// time.
package authprogram
