package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/member-sync/internal/database/models"
)

// Authenticator defines the identity provider operations.
type Authenticator interface {
	SignUp(ctx context.Context, input Credentials) (*Session, error)
	SignIn(ctx context.Context, input Credentials) (*Session, error)
	SignOut(ctx context.Context, token string) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// TokenService defines the interface for JWT token operations.
type TokenService interface {
	GenerateToken(userID uuid.UUID, email string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// RevocationStore remembers sessions ended before their expiry.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Compile-time interface satisfaction checks
var (
	_ Authenticator   = (*Service)(nil)
	_ TokenService    = (*JWTService)(nil)
	_ RevocationStore = (*RedisRevocations)(nil)
)
