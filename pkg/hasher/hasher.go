package hasher

import (
	"crypto/rand"
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const cost = 10

var (
	ErrEmptyPassword = errors.New("password is empty")
	// ErrPasswordTooLong is returned for input bcrypt would silently truncate.
	ErrPasswordTooLong = errors.New("password longer than 72 bytes")
)

// HashPassword returns the bcrypt hash to store as the API password hash.
func HashPassword(password string) (string, error) {
	switch {
	case password == "":
		return "", ErrEmptyPassword
	case len(password) > 72:
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func PasswordCorrect(password, hash string) bool {
	if password == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateToken returns n random bytes, base64 url encoded. Used as a
// signing secret when none is configured.
func GenerateToken(n int) (string, error) {
	if n <= 0 {
		return "", errors.New("token length must be positive")
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
