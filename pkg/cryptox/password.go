// Package cryptox holds the password hashing and opaque token primitives for
// the identity core. Password digests are Argon2id in PHC string format so
// the work factor travels with the digest and can be raised without
// invalidating existing credentials.
package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const saltLength = 16

var (
	// ErrPasswordMismatch is returned when a plaintext does not verify
	// against a digest. It is an expected outcome, not a fault.
	ErrPasswordMismatch = errors.New("cryptox: password does not match")

	// ErrDigestCorrupt is returned when a stored digest cannot be parsed.
	ErrDigestCorrupt = errors.New("cryptox: corrupt password digest")
)

// Argon2Params is the tunable work factor for Argon2id.
type Argon2Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	KeyLength   uint32
}

// DefaultArgon2Params follows the first OWASP recommended configuration
// (19 MiB, 2 iterations, 1 lane).
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Memory:      19 * 1024,
		Iterations:  2,
		Parallelism: 1,
		KeyLength:   32,
	}
}

// HashPassword derives a PHC-encoded Argon2id digest of password+pepper with
// a fresh random salt. The plaintext never appears in the returned value.
func HashPassword(password, pepper string, p Argon2Params) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	key := argon2.IDKey([]byte(password+pepper), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)

	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		p.Memory, p.Iterations, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyPassword checks a plaintext against a PHC-encoded Argon2id digest
// using the parameters embedded in the digest. Returns ErrPasswordMismatch
// on a clean mismatch and ErrDigestCorrupt when the digest is malformed.
func VerifyPassword(password, pepper, digest string) error {
	mem, iters, par, salt, want, err := decodeDigest(digest)
	if err != nil {
		return err
	}

	got := argon2.IDKey([]byte(password+pepper), salt, iters, mem, par, uint32(len(want)))
	if subtle.ConstantTimeCompare(got, want) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

// decodeDigest parses "$argon2id$v=19$m=X,t=Y,p=Z$salt$key".
func decodeDigest(digest string) (mem, iters uint32, par uint8, salt, key []byte, err error) {
	parts := make([]string, 0, 6)
	start := 0
	for i := range len(digest) {
		if digest[i] == '$' {
			parts = append(parts, digest[start:i])
			start = i + 1
		}
	}
	parts = append(parts, digest[start:])

	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" || parts[2] != "v=19" {
		return 0, 0, 0, nil, nil, ErrDigestCorrupt
	}

	if _, scanErr := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); scanErr != nil {
		return 0, 0, 0, nil, nil, ErrDigestCorrupt
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return 0, 0, 0, nil, nil, ErrDigestCorrupt
	}
	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return 0, 0, 0, nil, nil, ErrDigestCorrupt
	}

	return mem, iters, par, salt, key, nil
}
