package auth

import (
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost is the bcrypt work factor applied to stored
// credentials. Raising it slows every comparison, attacker and login
// alike.
const DefaultHashCost = 14

// HashPassword hashes a password at the default cost. Empty passwords
// are rejected before they reach the hasher.
func HashPassword(password string) (string, error) {
	return HashPasswordCost(password, DefaultHashCost)
}

// HashPasswordCost hashes a password at an explicit bcrypt cost. A cost
// outside the range bcrypt accepts falls back to the default.
func HashPasswordCost(password string, cost int) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultHashCost
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}

	return string(h), nil
}

// ComparePasswordAndHash checks a cleartext password against a stored
// hash, collapsing bcrypt's mismatch into the package sentinel.
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}

// RandomPasswordHash hashes a throwaway random password. It gives
// accounts without a usable credential something that can never
// compare equal.
func RandomPasswordHash() string {
	h, err := HashPassword(uuid.NewString())
	if err != nil {
		return RandomPasswordHash()
	}

	return h
}
