package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/reviewdesk/internal/domain"
)

// JWTService defines operations for managing JWT authentication tokens.
type JWTService interface {
	// GenerateToken creates a signed JWT access token for the principal.
	GenerateToken(ctx context.Context, principal domain.Principal) (string, error)

	// ValidateToken validates the provided token string and extracts the claims.
	// Returns ErrExpiredToken, ErrTokenNotYetValid or ErrInvalidToken on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// TokenLifetime is how long issued tokens remain valid.
	TokenLifetime() time.Duration
}

// Claims represents the custom claims structure for the JWT tokens.
type Claims struct {
	// UserID is the admin or reviewer the token was issued for.
	UserID   uuid.UUID   `json:"uid,omitempty"`
	Username string      `json:"username,omitempty"`
	Role     domain.Role `json:"role,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}

// Principal returns the authenticated account described by the claims.
func (c *Claims) Principal() domain.Principal {
	return domain.Principal{ID: c.UserID, Username: c.Username, Role: c.Role}
}
