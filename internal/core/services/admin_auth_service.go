package services

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by AdminAuthService.Login for any
// username/password mismatch. It never distinguishes which field was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AdminAuthService authenticates the single operator credential configured
// for the admin API (config.AdminUsername / config.AdminPasswordHash) and,
// on success, mints a session token.
type AdminAuthService struct {
	username     string
	passwordHash string
	tokens       *AdminTokenService
}

// NewAdminAuthService builds an AdminAuthService for one fixed operator
// identity.
func NewAdminAuthService(username, passwordHash string, tokens *AdminTokenService) *AdminAuthService {
	return &AdminAuthService{username: username, passwordHash: passwordHash, tokens: tokens}
}

// Login compares the supplied credentials against the configured operator
// account and returns a signed admin token on success.
func (s *AdminAuthService) Login(username, password string) (string, error) {
	if username != s.username {
		// Still run bcrypt against the configured hash to keep the failure
		// path's timing independent of whether the username matched.
		_ = bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password))
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(username)
}
