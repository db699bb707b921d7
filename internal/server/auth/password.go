// Package auth holds the password and token primitives: bcrypt hashing with
// a legacy plaintext fallback, and the signed tokens that carry session ids.
package auth

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = bcrypt.DefaultCost

var hashPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// IsHashed reports whether stored looks like a bcrypt hash rather than a
// legacy plaintext password.
func IsHashed(stored string) bool {
	for _, p := range hashPrefixes {
		if strings.HasPrefix(stored, p) {
			return true
		}
	}
	return false
}

// HashPassword returns a freshly salted bcrypt hash. Costs outside bcrypt's
// range fall back to DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks password against a stored value. Hashes are
// verified with bcrypt. Anything else is treated as legacy plaintext and
// compared in constant time.
//
// TODO: drop the plaintext branch once every row in the user table has been
// rehashed by a password change.
func VerifyPassword(stored, password string) bool {
	if IsHashed(stored) {
		err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(password))
		return err == nil
	}
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

// IsTooLong reports whether err was caused by bcrypt's input limit.
func IsTooLong(err error) bool {
	return errors.Is(err, bcrypt.ErrPasswordTooLong)
}
