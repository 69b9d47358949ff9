// Package password hashes and verifies password credentials with argon2id.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	// ErrMalformedCredential is returned when a stored credential cannot be
	// parsed as an argon2id hash string.
	ErrMalformedCredential = errors.New("malformed password credential")

	// ErrIncompatibleVersion is returned when a stored credential was produced
	// by an unsupported argon2 version.
	ErrIncompatibleVersion = errors.New("incompatible argon2 version")
)

const saltLength = 16

// Params are the argon2id cost parameters. They come from configuration so
// cost can be raised without code changes.
type Params struct {
	Memory  uint32 // KiB
	Time    uint32
	Threads uint8
	KeyLen  uint32
}

// DefaultParams returns cost parameters suitable for an interactive login.
func DefaultParams() Params {
	return Params{Memory: 64 * 1024, Time: 3, Threads: 2, KeyLen: 32}
}

// Hasher produces and verifies password credentials.
type Hasher struct {
	params Params
}

// NewHasher creates a Hasher with the given cost parameters.
func NewHasher(params Params) *Hasher {
	return &Hasher{params: params}
}

// Hash derives an irreversible credential from a plaintext password. A fresh
// random salt is generated on every call, so hashing the same password twice
// yields different credentials. The result is a self-describing string in the
// standard $argon2id$... format.
func (h *Hasher) Hash(plaintext string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(plaintext), salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)

	credential := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.params.Memory, h.params.Time, h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))
	return credential, nil
}

// Verify reports whether plaintext matches the stored credential. The
// comparison is constant-time so timing differences do not leak correctness.
// The credential's own embedded parameters are used, which keeps previously
// issued credentials verifiable after a cost change.
func (h *Hasher) Verify(plaintext, credential string) (bool, error) {
	params, salt, key, err := decodeCredential(credential)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey([]byte(plaintext), salt, params.Time, params.Memory, params.Threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, candidate) == 1, nil
}

func decodeCredential(credential string) (Params, []byte, []byte, error) {
	parts := strings.Split(credential, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return Params{}, nil, nil, ErrMalformedCredential
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return Params{}, nil, nil, ErrMalformedCredential
	}
	if version != argon2.Version {
		return Params{}, nil, nil, ErrIncompatibleVersion
	}

	var params Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Time, &params.Threads); err != nil {
		return Params{}, nil, nil, ErrMalformedCredential
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, ErrMalformedCredential
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return Params{}, nil, nil, ErrMalformedCredential
	}
	return params, salt, key, nil
}
