package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const cost = 12 // bcrypt cost factor (higher = slower but more secure)

var ErrEmptyPassword = errors.New("password is empty")

// Hash hashes password using bcrypt
func Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

// Verify compares password with hash
func Verify(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
