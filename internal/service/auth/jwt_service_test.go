package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/reviewdesk/internal/config"
	"github.com/phrazzld/reviewdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

func newTestService(t *testing.T, now func() time.Time) *hmacJWTService {
	t.Helper()
	svc, err := newJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 60}, now)
	require.NoError(t, err)
	return svc
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestNewJWTServiceValidation(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(config.AuthConfig{JWTSecret: "short", TokenLifetimeMinutes: 60})
	assert.Error(t, err)

	_, err = NewJWTService(config.AuthConfig{JWTSecret: testSecret})
	assert.Error(t, err)

	svc, err := NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 7 * 24 * 60})
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, svc.TokenLifetime())
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, fixedClock(fixedTime))
	principal := domain.Principal{ID: uuid.New(), Username: "kim", Role: domain.RoleReviewer}

	token, err := svc.GenerateToken(context.Background(), principal)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, principal, claims.Principal())
	assert.Equal(t, principal.ID.String(), claims.Subject)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)

	_, err = svc.GenerateToken(context.Background(), domain.Principal{ID: uuid.New(), Role: "guest"})
	assert.Error(t, err)
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	principal := domain.Principal{ID: uuid.New(), Username: "admin", Role: domain.RoleAdmin}

	tests := []struct {
		name      string
		setupFunc func(t *testing.T) (*hmacJWTService, string)
		wantErr   error
	}{
		{
			name: "valid token",
			setupFunc: func(t *testing.T) (*hmacJWTService, string) {
				svc := newTestService(t, fixedClock(fixedTime))
				token, err := svc.GenerateToken(context.Background(), principal)
				require.NoError(t, err)
				return svc, token
			},
		},
		{
			name: "within clock skew",
			setupFunc: func(t *testing.T) (*hmacJWTService, string) {
				gen := newTestService(t, fixedClock(fixedTime))
				token, err := gen.GenerateToken(context.Background(), principal)
				require.NoError(t, err)
				return newTestService(t, fixedClock(fixedTime.Add(time.Hour+time.Minute))), token
			},
		},
		{
			name: "expired token",
			setupFunc: func(t *testing.T) (*hmacJWTService, string) {
				gen := newTestService(t, fixedClock(fixedTime))
				token, err := gen.GenerateToken(context.Background(), principal)
				require.NoError(t, err)
				return newTestService(t, fixedClock(fixedTime.Add(2*time.Hour))), token
			},
			wantErr: ErrExpiredToken,
		},
		{
			name: "wrong secret",
			setupFunc: func(t *testing.T) (*hmacJWTService, string) {
				other, err := newJWTService(config.AuthConfig{
					JWTSecret:            "wrong-secret-that-is-long-enough-for-testing",
					TokenLifetimeMinutes: 60,
				}, fixedClock(fixedTime))
				require.NoError(t, err)
				token, err := other.GenerateToken(context.Background(), principal)
				require.NoError(t, err)
				return newTestService(t, fixedClock(fixedTime)), token
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "malformed token",
			setupFunc: func(t *testing.T) (*hmacJWTService, string) {
				return newTestService(t, fixedClock(fixedTime)), "not.a.jwt"
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "empty token",
			setupFunc: func(t *testing.T) (*hmacJWTService, string) {
				return newTestService(t, fixedClock(fixedTime)), ""
			},
			wantErr: ErrMissingToken,
		},
		{
			name: "unknown role",
			setupFunc: func(t *testing.T) (*hmacJWTService, string) {
				claims := jwtCustomClaims{
					UserID: uuid.New(),
					Role:   "superuser",
					RegisteredClaims: jwt.RegisteredClaims{
						IssuedAt:  jwt.NewNumericDate(fixedTime),
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
					},
				}
				token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
				require.NoError(t, err)
				return newTestService(t, fixedClock(fixedTime)), token
			},
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, token := tt.setupFunc(t)
			claims, err := svc.ValidateToken(context.Background(), token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, principal, claims.Principal())
		})
	}
}
