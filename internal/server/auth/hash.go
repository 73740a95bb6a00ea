// Package auth implements credential handling for linkmark: salt generation,
// scrypt password hashing, and constant-time verification. All values that
// cross a package boundary are hex-encoded strings, stored per user next to
// the salt that produced them.
package auth

import (
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/scrypt"
	"golang.org/x/text/unicode/norm"

	"github.com/dmitrijs2005/linkmark/internal/common"
)

// scrypt cost parameters. Fixed: changing them invalidates every stored hash.
const (
	scryptN      = 16384
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64
)

const saltBytes = 16

// GenerateSalt returns 16 random bytes hex-encoded (128 bits of entropy).
// Salts are stored per user and never reused across users; collision checks
// are unnecessary at this entropy.
func GenerateSalt() (string, error) {
	return common.MakeRandHexString(saltBytes)
}

// HashPassword derives a 64-byte scrypt key from the password and salt and
// returns it hex-encoded. The password is NFC-normalized first so the same
// characters entered through different input methods hash identically.
func HashPassword(password, salt string) (string, error) {
	passwordBytes := []byte(norm.NFC.String(password))
	defer common.WipeByteArray(passwordBytes)

	key, err := scrypt.Key(passwordBytes, []byte(salt), scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(key)

	return hex.EncodeToString(key), nil
}

// ComparePassword recomputes the hash for the candidate password and compares
// it against storedHash in constant time. A stored hash that does not decode
// as hex, or decodes to a different length, yields false without error:
// corrupted stored data must not be distinguishable from a wrong password.
func ComparePassword(password, salt, storedHash string) (bool, error) {
	computed, err := HashPassword(password, salt)
	if err != nil {
		return false, err
	}

	computedBytes, err := hex.DecodeString(computed)
	if err != nil {
		return false, err
	}
	storedBytes, err := hex.DecodeString(storedHash)
	if err != nil {
		return false, nil
	}

	if len(computedBytes) != len(storedBytes) {
		return false, nil
	}
	return subtle.ConstantTimeCompare(computedBytes, storedBytes) == 1, nil
}
