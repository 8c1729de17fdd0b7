// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SkillBridge Contributors

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2-HMAC-SHA256 parameters. The iteration count follows the OWASP
// minimum for PBKDF2 with SHA-256.
const (
	pbkdf2Iterations = 100_000
	pbkdf2SaltLen    = 16 // salt length in bytes
	pbkdf2KeyLen     = 32 // derived key length in bytes
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")

// PasswordHasher provides password hashing and verification.
type PasswordHasher interface {
	// Hash produces a salted, serialized credential hash of the password.
	Hash(password string) (string, error)

	// Verify checks if the password matches the stored hash.
	// Returns (true, nil) on match, (false, nil) on mismatch, or an error
	// on a malformed stored hash.
	Verify(password, stored string) (bool, error)
}

// PBKDF2Hasher implements PasswordHasher using PBKDF2-HMAC-SHA256.
// The serialized form is "saltHex:derivedHex". Two calls with the same
// password never produce the same output because the salt is random.
type PBKDF2Hasher struct{}

// NewPBKDF2Hasher creates a new PBKDF2Hasher.
func NewPBKDF2Hasher() *PBKDF2Hasher {
	return &PBKDF2Hasher{}
}

// Hash derives a key from the password with a fresh random salt.
func (h *PBKDF2Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, pbkdf2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}

	key := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, pbkdf2KeyLen, sha256.New)

	return hex.EncodeToString(salt) + ":" + hex.EncodeToString(key), nil
}

// Verify re-derives the key using the stored salt and compares it against
// the stored key in constant time.
func (h *PBKDF2Hasher) Verify(password, stored string) (bool, error) {
	saltHex, keyHex, found := strings.Cut(stored, ":")
	if !found {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("invalid credential hash format")
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}

	expected, err := hex.DecodeString(keyHex)
	if err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}
	if len(expected) == 0 {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("empty derived key")
	}

	computed := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, len(expected), sha256.New)

	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}
