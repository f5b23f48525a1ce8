package utils

import (
	"errors"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignores everything past 72 bytes, so longer passwords are refused.
const maxPasswordBytes = 72

// PasswordCost reads BCRYPT_COST, falling back to bcrypt.DefaultCost when it
// is unset or outside bcrypt's accepted range.
func PasswordCost() int {
	cost, err := strconv.Atoi(os.Getenv("BCRYPT_COST"))
	if err != nil || cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return cost
}

func HashPassword(s string) ([]byte, error) {
	if len(s) > maxPasswordBytes {
		return nil, Invalidf("password must be at most %d bytes", maxPasswordBytes)
	}
	return bcrypt.GenerateFromPassword([]byte(s), PasswordCost())
}

// ComparePassword returns ErrorUnauthorized when the password does not match.
func ComparePassword(hashed string, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return Unauthorized("invalid email or password")
	}
	return err
}

// PasswordNeedsRehash reports whether hashed was produced with a cost other than
// the configured one, so a successful login can upgrade it.
func PasswordNeedsRehash(hashed string) bool {
	cost, err := bcrypt.Cost([]byte(hashed))
	if err != nil {
		return false
	}
	return cost != PasswordCost()
}
