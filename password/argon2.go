package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

type (
	Argon2Params struct {
		// Memory in KiB
		Memory      uint32 `yaml:"memory"`
		Iterations  uint32 `yaml:"iterations"`
		Parallelism uint8  `yaml:"parallelism"`
		SaltLength  uint32 `yaml:"salt_length"`
		KeyLength   uint32 `yaml:"key_length"`
	}

	Argon2id struct {
		params Argon2Params
		rand   io.Reader
	}
)

const argon2Prefix = "$argon2id$"

var (
	errMalformedArgon2 = errors.New("malformed argon2id digest")
)

// DefaultArgon2Params follows the OWASP baseline for argon2id.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// NewArgon2id returns an argon2id scheme. Zero fields in params are
// replaced by their DefaultArgon2Params counterpart.
func NewArgon2id(params Argon2Params) *Argon2id {
	def := DefaultArgon2Params()
	if params.Memory == 0 {
		params.Memory = def.Memory
	}
	if params.Iterations == 0 {
		params.Iterations = def.Iterations
	}
	if params.Parallelism == 0 {
		params.Parallelism = def.Parallelism
	}
	if params.SaltLength == 0 {
		params.SaltLength = def.SaltLength
	}
	if params.KeyLength == 0 {
		params.KeyLength = def.KeyLength
	}
	return &Argon2id{params: params, rand: rand.Reader}
}

func (a *Argon2id) Params() Argon2Params { return a.params }

// Hash returns the digest in PHC format:
//
//	$argon2id$v=19$m=65536,t=3,p=2$<salt>$<key>
func (a *Argon2id) Hash(plain string) (string, error) {
	salt := make([]byte, a.params.SaltLength)
	if _, err := io.ReadFull(a.rand, salt); err != nil {
		return "", fmt.Errorf("unable to read salt, cause %w", err)
	}
	key := argon2.IDKey([]byte(plain), salt, a.params.Iterations, a.params.Memory, a.params.Parallelism, a.params.KeyLength)
	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Prefix, argon2.Version,
		a.params.Memory, a.params.Iterations, a.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

func (a *Argon2id) Verify(plain, digest string) bool {
	params, salt, key, err := decodeArgon2(digest)
	if err != nil {
		return false
	}
	other := argon2.IDKey([]byte(plain), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)
	return subtle.ConstantTimeCompare(key, other) == 1
}

func (a *Argon2id) NeedsRehash(digest string) bool {
	params, _, _, err := decodeArgon2(digest)
	if err != nil {
		return true
	}
	return params.Memory != a.params.Memory ||
		params.Iterations != a.params.Iterations ||
		params.Parallelism != a.params.Parallelism ||
		params.KeyLength != a.params.KeyLength
}

func (a *Argon2id) Recognizes(digest string) bool {
	return strings.HasPrefix(digest, argon2Prefix)
}

func decodeArgon2(digest string) (Argon2Params, []byte, []byte, error) {
	var params Argon2Params
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return params, nil, nil, errMalformedArgon2
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return params, nil, nil, errMalformedArgon2
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Iterations, &params.Parallelism); err != nil {
		return params, nil, nil, errMalformedArgon2
	}
	// a zero parameter would make argon2.IDKey panic
	if params.Memory == 0 || params.Iterations == 0 || params.Parallelism == 0 {
		return params, nil, nil, errMalformedArgon2
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return params, nil, nil, errMalformedArgon2
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return params, nil, nil, errMalformedArgon2
	}
	params.SaltLength = uint32(len(salt))
	params.KeyLength = uint32(len(key))
	return params, salt, key, nil
}
