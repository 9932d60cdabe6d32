package auth

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Credentials is the single operator account.
type Credentials struct {
	username     string
	passwordHash []byte
}

// NewCredentials creates the operator account from a bcrypt hash.
func NewCredentials(username, passwordHash string) *Credentials {
	return &Credentials{username: username, passwordHash: []byte(passwordHash)}
}

// Configured reports whether a login is possible at all.
func (c *Credentials) Configured() bool {
	return c.username != "" && len(c.passwordHash) > 0
}

// Verify checks a username and password pair.
func (c *Credentials) Verify(username, password string) bool {
	if !c.Configured() || username == "" || password == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(c.passwordHash, []byte(password)) == nil
	return userOK && passOK
}
