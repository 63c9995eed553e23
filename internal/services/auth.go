package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"eventify/internal/domain"
)

// adminSubject is the token subject of the configured admin.
const adminSubject = "admin"

type authService struct {
	admin     domain.AdminCredentials
	hasher    domain.PasswordHasher
	issuer    domain.TokenIssuer
	jwtExpiry time.Duration
}

// NewAuthService creates an AuthService for the single configured admin.
func NewAuthService(admin domain.AdminCredentials, hasher domain.PasswordHasher, issuer domain.TokenIssuer, jwtExpiry time.Duration) domain.AuthService {
	admin.Email = strings.TrimSpace(strings.ToLower(admin.Email))
	return &authService{
		admin:     admin,
		hasher:    hasher,
		issuer:    issuer,
		jwtExpiry: jwtExpiry,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	if s.admin.Email == "" || s.admin.PasswordHash == "" {
		return "", fmt.Errorf("%w: admin login is not configured", domain.ErrUnauthorized)
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if subtle.ConstantTimeCompare([]byte(email), []byte(s.admin.Email)) != 1 {
		return "", fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}
	if err := s.hasher.Compare(s.admin.PasswordHash, s.admin.PasswordSalt, password); err != nil {
		return "", fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}

	token, err := s.issuer.Issue(adminSubject, s.admin.Email, []string{domain.RoleAdmin}, s.jwtExpiry)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}
