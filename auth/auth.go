package auth

import (
	"crypto/subtle"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Authenticator checks the single admin credential. The password is only
// ever held as a bcrypt hash.
type Authenticator struct {
	username string
	hash     []byte
}

// New builds an Authenticator from either a bcrypt hash or a plain text
// password. The hash wins when both are given. With neither, every login
// attempt fails.
func New(username, password, passwordHash string) (*Authenticator, error) {
	a := &Authenticator{username: username}
	switch {
	case passwordHash != "":
		if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
			return nil, fmt.Errorf("ADMIN_PASSWORD_HASH is not a bcrypt hash: %w", err)
		}
		a.hash = []byte(passwordHash)
	case password != "":
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash admin password: %w", err)
		}
		a.hash = hash
	default:
		slog.Warn("No admin password configured, uploads are disabled")
	}
	return a, nil
}

func (a *Authenticator) Enabled() bool {
	return len(a.hash) > 0
}

func (a *Authenticator) Check(username, password string) bool {
	if !a.Enabled() {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(a.hash, []byte(password)) == nil
	return userOK && passOK
}
