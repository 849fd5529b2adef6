package security

import (
	"errors"
	"fmt"

	"github.com/alexedwards/argon2id"
)

var (
	ErrMismatchedPassword = errors.New("password does not match")
	ErrInvalidHash        = errors.New("invalid password hash")
)

// 64 MiB, one pass, four lanes.
var hashParams = &argon2id.Params{
	Memory:      64 * 1024,
	Iterations:  1,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

// HashPassword hashes a plain text password with argon2id and returns it in
// the PHC string format: $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>.
func HashPassword(plain string) (string, error) {
	hash, err := argon2id.CreateHash(plain, hashParams)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return hash, nil
}

// CheckPassword verifies plain against hash using the parameters stored in
// the hash itself.
func CheckPassword(hash, plain string) error {
	match, err := argon2id.ComparePasswordAndHash(plain, hash)
	if err != nil {
		// malformed, wrong variant or wrong version
		return ErrInvalidHash
	}

	if !match {
		return ErrMismatchedPassword
	}

	return nil
}
