package password

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

type (
	Bcrypt struct {
		cost int
	}
)

var (
	// ErrTooLong is returned by Hash when the scheme cannot represent the
	// whole password (bcrypt only looks at the first 72 bytes).
	ErrTooLong = errors.New("password: input is too long")
)

// NewBcrypt returns a bcrypt scheme using cost, clamped to the range bcrypt
// accepts. A zero cost selects bcrypt.DefaultCost.
func NewBcrypt(cost int) *Bcrypt {
	switch {
	case cost == 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &Bcrypt{cost: cost}
}

func (b *Bcrypt) Cost() int { return b.cost }

func (b *Bcrypt) Hash(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), b.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrTooLong
	} else if err != nil {
		return "", err
	}
	return string(digest), nil
}

func (b *Bcrypt) Verify(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}

func (b *Bcrypt) NeedsRehash(digest string) bool {
	cost, err := bcrypt.Cost([]byte(digest))
	if err != nil {
		return true
	}
	return cost != b.cost
}

func (b *Bcrypt) Recognizes(digest string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(digest, prefix) {
			return true
		}
	}
	return false
}
