package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id cost parameters for newly derived hashes. Verification always reads
// the parameters back out of the stored PHC string, so changing these only
// affects hashes created afterwards.
const (
	Argon2Memory      = 19 * 1024 // KiB
	Argon2Iterations  = 2
	Argon2Parallelism = 1

	keyLength  = 32
	saltLength = 16
)

// maxArgon2Memory caps the memory parameter accepted from a stored hash.
const maxArgon2Memory = 1 << 20 // 1 GiB in KiB

var (
	// ErrPasswordMismatch is returned when the password does not derive the
	// stored digest.
	ErrPasswordMismatch = errors.New("password does not match")

	// ErrMalformedHash is returned when the stored string is not a PHC
	// argon2id hash this package can verify.
	ErrMalformedHash = errors.New("invalid hash format")
)

// HashPassword derives a PHC-format Argon2id hash string with a fresh random
// salt. The result carries algorithm, version, cost and salt, so it can be
// verified without any other stored parameters.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	digest := argon2.IDKey([]byte(password), salt, Argon2Iterations, Argon2Memory, Argon2Parallelism, keyLength)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		Argon2Memory,
		Argon2Iterations,
		Argon2Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	), nil
}

// VerifyPassword compares a plaintext password against a PHC-style Argon2id
// hash. It returns ErrPasswordMismatch on a wrong password and an error
// wrapping ErrMalformedHash when the stored string cannot be parsed.
func VerifyPassword(password, encodedHash string) error {
	// ["", "argon2id", "v=19", "m=X,t=Y,p=Z", "salt", "hash"]
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "" {
		return fmt.Errorf("%w: expected 6 parts", ErrMalformedHash)
	}
	if parts[1] != "argon2id" {
		return fmt.Errorf("%w: not argon2id", ErrMalformedHash)
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return fmt.Errorf("%w: wrong version", ErrMalformedHash)
	}

	var mem, iters uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return fmt.Errorf("%w: parameters: %v", ErrMalformedHash, err)
	}
	if mem == 0 || mem > maxArgon2Memory || iters == 0 || par == 0 {
		return fmt.Errorf("%w: parameters out of range", ErrMalformedHash)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("%w: salt: %v", ErrMalformedHash, err)
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 {
		return fmt.Errorf("%w: digest", ErrMalformedHash)
	}

	computed := argon2.IDKey([]byte(password), salt, iters, mem, par, uint32(len(expected))) // #nosec G115 -- digest length is tiny

	if subtle.ConstantTimeCompare(computed, expected) == 1 {
		return nil
	}
	return ErrPasswordMismatch
}

// GeneratePassword returns a random 16 character alphanumeric password, used
// by the operator CLI when creating accounts.
func GeneratePassword() (string, error) {
	return GenerateAlphanumeric(16)
}
