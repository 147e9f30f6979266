package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// AdminAuthenticator checks the kitchen owner's credentials for the order
// back-office endpoints.
type AdminAuthenticator struct {
	username     string
	passwordHash []byte
}

func NewAdminAuthenticator(username, passwordHash string) *AdminAuthenticator {
	return &AdminAuthenticator{
		username:     username,
		passwordHash: []byte(passwordHash),
	}
}

// Enabled is false when no password hash is configured; every login fails then.
func (a *AdminAuthenticator) Enabled() bool {
	return len(a.passwordHash) > 0
}

func (a *AdminAuthenticator) Authenticate(username, password string) bool {
	if !a.Enabled() {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) == nil
	return userOK && passOK
}

// HashPassword produces a value suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
