// Package password hashes and verifies user passwords.
//
// Digests are self-describing: the scheme, its cost parameters and the salt
// are all encoded in the digest string, which means a digest produced with
// an older configuration can still be verified after the configuration
// changes. NeedsRehash tells callers when a stored digest should be
// replaced by one produced with the current settings.
package password

import (
	"fmt"
	"strings"
)

type (
	// Hasher produces and checks password digests.
	Hasher interface {
		Hash(plain string) (string, error)
		// Verify reports whether plain matches digest. A malformed digest
		// never matches.
		Verify(plain, digest string) bool
		NeedsRehash(digest string) bool
	}

	// Scheme is a Hasher that can recognize its own digests.
	Scheme interface {
		Hasher
		Recognizes(digest string) bool
	}

	// Chain hashes new passwords with its preferred scheme and verifies
	// digests produced by any of the schemes it knows.
	Chain struct {
		preferred Scheme
		schemes   []Scheme
	}

	UnknownScheme struct {
		Name string
	}
)

const (
	SchemeBcrypt   = "bcrypt"
	SchemeArgon2id = "argon2id"
)

func (u UnknownScheme) Error() string {
	return fmt.Sprintf("unknown password scheme %q", u.Name)
}

func NewChain(preferred Scheme, others ...Scheme) *Chain {
	return &Chain{
		preferred: preferred,
		schemes:   append([]Scheme{preferred}, others...),
	}
}

// Named returns a Chain preferring the scheme called name. Both bcrypt and
// argon2id digests remain verifiable regardless of the preference.
func Named(name string, bcryptCost int, argon Argon2Params) (*Chain, error) {
	bc := NewBcrypt(bcryptCost)
	ar := NewArgon2id(argon)
	switch strings.ToLower(name) {
	case "", SchemeBcrypt:
		return NewChain(bc, ar), nil
	case SchemeArgon2id:
		return NewChain(ar, bc), nil
	}
	return nil, UnknownScheme{Name: name}
}

func (c *Chain) Hash(plain string) (string, error) {
	return c.preferred.Hash(plain)
}

func (c *Chain) Verify(plain, digest string) bool {
	s := c.schemeOf(digest)
	if s == nil {
		return false
	}
	return s.Verify(plain, digest)
}

func (c *Chain) NeedsRehash(digest string) bool {
	if !c.preferred.Recognizes(digest) {
		return true
	}
	return c.preferred.NeedsRehash(digest)
}

func (c *Chain) Recognizes(digest string) bool {
	return c.schemeOf(digest) != nil
}

func (c *Chain) schemeOf(digest string) Scheme {
	for _, s := range c.schemes {
		if s.Recognizes(digest) {
			return s
		}
	}
	return nil
}
