// Package password hashes and checks user passwords.
//
// New hashes are argon2id in PHC string format. Hashes written by the
// previous version of the shop (hex SHA-256 of the raw password) are still
// accepted by Compare and reported as needing a rehash.
package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	ErrMismatch      = errors.New("password does not match")
	ErrInvalidFormat = errors.New("invalid password hash format")
)

type Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

var DefaultParams = Params{
	Time:    3,
	Memory:  64 * 1024,
	Threads: 1,
	KeyLen:  32,
	SaltLen: 16,
}

const legacyHashLen = sha256.Size * 2

var b64 = base64.RawStdEncoding

// Hash returns an encoded argon2id hash of pass with a fresh random salt.
func Hash(pass string) (string, error) {
	return HashWithParams(pass, DefaultParams)
}

func HashWithParams(pass string, p Params) (string, error) {
	const op = "password.Hash"

	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	key := argon2.IDKey([]byte(pass), salt, p.Time, p.Memory, p.Threads, p.KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.Memory, p.Time, p.Threads,
		b64.EncodeToString(salt),
		b64.EncodeToString(key),
	), nil
}

// Compare checks pass against encoded. rehash is true when the stored hash
// matched but was not produced with DefaultParams.
func Compare(encoded, pass string) (rehash bool, err error) {
	if isLegacy(encoded) {
		sum := sha256.Sum256([]byte(pass))
		if subtle.ConstantTimeCompare([]byte(hex.EncodeToString(sum[:])), []byte(strings.ToLower(encoded))) != 1 {
			return false, ErrMismatch
		}

		return true, nil
	}

	p, salt, key, err := decode(encoded)
	if err != nil {
		return false, err
	}

	got := argon2.IDKey([]byte(pass), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	if subtle.ConstantTimeCompare(got, key) != 1 {
		return false, ErrMismatch
	}

	return p != DefaultParams, nil
}

func isLegacy(encoded string) bool {
	if len(encoded) != legacyHashLen {
		return false
	}
	_, err := hex.DecodeString(encoded)

	return err == nil
}

func decode(encoded string) (Params, []byte, []byte, error) {
	const op = "password.decode"

	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return Params{}, nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidFormat)
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return Params{}, nil, nil, fmt.Errorf("%s: unsupported version: %w", op, ErrInvalidFormat)
	}

	var p Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return Params{}, nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidFormat)
	}
	// argon2.IDKey panics on zero time or threads
	if p.Memory == 0 || p.Time == 0 || p.Threads == 0 {
		return Params{}, nil, nil, fmt.Errorf("%s: zero cost parameter: %w", op, ErrInvalidFormat)
	}

	salt, err := b64.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, fmt.Errorf("%s: salt: %w", op, ErrInvalidFormat)
	}

	key, err := b64.DecodeString(parts[5])
	if err != nil {
		return Params{}, nil, nil, fmt.Errorf("%s: key: %w", op, ErrInvalidFormat)
	}

	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(key))

	return p, salt, key, nil
}
