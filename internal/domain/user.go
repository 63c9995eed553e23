package domain

import (
	"context"
	"time"
)

// RoleAdmin is the role carried by tokens allowed on the admin surface.
const RoleAdmin = "admin"

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, roles []string, expiry time.Duration) (string, error)
}

// TokenClaims is what a verified token says about its bearer.
type TokenClaims struct {
	UserID string
	Email  string
	Roles  []string
}

// HasRole reports whether the claims include role.
func (c *TokenClaims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// TokenVerifier verifies a token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*TokenClaims, error)
}

// AdminCredentials is the single configured admin identity.
type AdminCredentials struct {
	Email        string
	PasswordSalt string
	PasswordHash string
}

// AuthService authenticates the admin and issues access tokens.
type AuthService interface {
	Login(ctx context.Context, email, password string) (token string, err error)
}
