package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLen = 6
	// MaxPasswordBytes is where bcrypt stops reading input.
	MaxPasswordBytes = 72
)

// HashCost is the bcrypt work factor; tests lower it to bcrypt.MinCost.
var HashCost = 12

var ErrPasswordTooLong = errors.New("password longer than 72 bytes")

func HashPassword(p string) (string, error) {
	if len(p) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(p), HashCost)
	return string(b), err
}

// PasswordMatches reports whether plain is the password behind hash.
// A malformed hash never matches.
func PasswordMatches(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
