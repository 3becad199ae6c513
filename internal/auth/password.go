package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the cost factor for password hashing
const BcryptCost = 10

// dummyHash is compared against when no account matches, so unknown emails
// cost the same as wrong passwords.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("shop-api-timing-equaliser"), BcryptCost)

// ErrPasswordTooLong is returned for passwords over bcrypt's 72 byte input
// limit. Multibyte characters count by their encoded size.
var ErrPasswordTooLong = errors.New("password must not exceed 72 bytes")

func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	return string(b), err
}

func ComparePassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// CompareDummy spends the time of one hash comparison and always fails.
func CompareDummy(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
