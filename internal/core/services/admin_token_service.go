package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lagrange-go/lagrange/internal/core/domain"
)

// AdminClaims is the JWT payload minted for an authenticated operator
// session against the admin API.
type AdminClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// AdminTokenService mints and verifies the bearer tokens the admin API
// issues on login and accepts on every subsequent admin request.
type AdminTokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewAdminTokenService builds a token service signing with secret and
// issuing tokens valid for ttl.
func NewAdminTokenService(secret string, ttl time.Duration) *AdminTokenService {
	return &AdminTokenService{secret: []byte(secret), ttl: ttl}
}

// Issue mints a signed token for username.
func (s *AdminTokenService) Issue(username string) (string, error) {
	claims := AdminClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "lagrange-admin",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("admin token: sign: %w", err)
	}
	return signed, nil
}

// Verify validates tokenString's signature and expiry and returns the
// principal it carries.
func (s *AdminTokenService) Verify(tokenString string) (domain.AdminPrincipal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return domain.AdminPrincipal{}, fmt.Errorf("admin token: %w", err)
	}

	claims, ok := token.Claims.(*AdminClaims)
	if !ok || !token.Valid {
		return domain.AdminPrincipal{}, fmt.Errorf("admin token: invalid claims")
	}

	return domain.AdminPrincipal{Username: claims.Username}, nil
}
