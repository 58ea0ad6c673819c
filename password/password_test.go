package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func fastArgon() Argon2Params {
	return Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}
}

func TestBcrypt(t *testing.T) {
	h := NewBcrypt(bcrypt.MinCost)
	d1, err := h.Hash("s3cret")
	require.NoError(t, err)
	d2, err := h.Hash("s3cret")
	require.NoError(t, err)
	require.NotEqual(t, d1, d2, "digests must be salted")
	require.NotContains(t, d1, "s3cret")

	require.True(t, h.Verify("s3cret", d1))
	require.True(t, h.Verify("s3cret", d2))
	require.False(t, h.Verify("s3cretx", d1))
	require.False(t, h.Verify("", d1))
	require.False(t, h.NeedsRehash(d1))
	require.True(t, NewBcrypt(bcrypt.MinCost+1).NeedsRehash(d1))
}

func TestBcryptCostClamp(t *testing.T) {
	require.Equal(t, bcrypt.DefaultCost, NewBcrypt(0).Cost())
	require.Equal(t, bcrypt.MinCost, NewBcrypt(1).Cost())
	require.Equal(t, bcrypt.MaxCost, NewBcrypt(99).Cost())
}

func TestBcryptTooLong(t *testing.T) {
	_, err := NewBcrypt(bcrypt.MinCost).Hash(strings.Repeat("a", 73))
	require.ErrorIs(t, err, ErrTooLong)
}

func TestArgon2id(t *testing.T) {
	h := NewArgon2id(fastArgon())
	d1, err := h.Hash("s3cret")
	require.NoError(t, err)
	d2, err := h.Hash("s3cret")
	require.NoError(t, err)
	require.NotEqual(t, d1, d2)
	require.True(t, strings.HasPrefix(d1, "$argon2id$v=19$m=1024,t=1,p=1$"), d1)

	require.True(t, h.Verify("s3cret", d1))
	require.False(t, h.Verify("s3cretx", d1))
	require.False(t, h.NeedsRehash(d1))

	other := NewArgon2id(Argon2Params{Memory: 2048, Iterations: 1, Parallelism: 1})
	require.True(t, other.NeedsRehash(d1))
	require.True(t, other.Verify("s3cret", d1), "parameters come from the digest")
}

func TestMalformedDigest(t *testing.T) {
	schemes := []Scheme{NewBcrypt(bcrypt.MinCost), NewArgon2id(fastArgon()), NewChain(NewBcrypt(bcrypt.MinCost), NewArgon2id(fastArgon()))}
	digests := []string{
		"",
		"plain",
		"$2a$",
		"$2a$04$short",
		"$argon2id$",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$",
	}
	for _, s := range schemes {
		for _, d := range digests {
			require.False(t, s.Verify("anything", d), "%T accepted %q", s, d)
			require.True(t, s.NeedsRehash(d), "%T should rehash %q", s, d)
		}
	}
}

func TestChain(t *testing.T) {
	bc := NewBcrypt(bcrypt.MinCost)
	ar := NewArgon2id(fastArgon())
	chain := NewChain(ar, bc)

	legacy, err := bc.Hash("pw")
	require.NoError(t, err)
	require.True(t, chain.Verify("pw", legacy))
	require.True(t, chain.NeedsRehash(legacy))

	fresh, err := chain.Hash("pw")
	require.NoError(t, err)
	require.True(t, ar.Recognizes(fresh))
	require.True(t, chain.Verify("pw", fresh))
	require.False(t, chain.NeedsRehash(fresh))
}

func TestNamed(t *testing.T) {
	c, err := Named("argon2id", bcrypt.MinCost, fastArgon())
	require.NoError(t, err)
	d, err := c.Hash("pw")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(d, "$argon2id$"))

	c, err = Named("", bcrypt.MinCost, fastArgon())
	require.NoError(t, err)
	d, err = c.Hash("pw")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(d, "$2a$"))

	_, err = Named("md5", 0, Argon2Params{})
	require.ErrorAs(t, err, &UnknownScheme{})
}
