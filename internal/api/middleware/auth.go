package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/reviewdesk/internal/api/shared"
	"github.com/phrazzld/reviewdesk/internal/domain"
	"github.com/phrazzld/reviewdesk/internal/platform/logger"
	"github.com/phrazzld/reviewdesk/internal/redact"
	"github.com/phrazzld/reviewdesk/internal/service/auth"
)

// AuthMiddleware provides JWT authentication for routes.
type AuthMiddleware struct {
	jwtService auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(jwtService auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
	}
}

// TokenFromRequest returns the session token from the token cookie or, when
// there is no cookie, from an "Authorization: Bearer" header.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(shared.TokenCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Authenticate validates the session token and stores the principal in the
// request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := TokenFromRequest(r)
		if token == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken),
				errors.Is(err, auth.ErrInvalidToken),
				errors.Is(err, auth.ErrTokenNotYetValid):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			default:
				logger.FromContextOrDefault(r.Context(), slog.Default()).
					Error("failed to validate token", "error", redact.Error(err))
				shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			}
			return
		}

		principal := claims.Principal()
		ctx := shared.WithPrincipal(r.Context(), principal)
		log := logger.FromContextOrDefault(ctx, slog.Default()).With(
			slog.String("user_id", principal.ID.String()),
			slog.String("role", string(principal.Role)))
		ctx = logger.WithLogger(ctx, log)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole rejects authenticated requests whose role is not one of roles.
// It must run after Authenticate.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	required := make([]string, len(roles))
	for i, role := range roles {
		required[i] = string(role)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := shared.GetPrincipal(r.Context())
			if !ok {
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")
				return
			}
			for _, role := range roles {
				if principal.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			logger.FromContextOrDefault(r.Context(), slog.Default()).Warn("role check failed",
				slog.String("path", r.URL.Path),
				slog.String("user_role", string(principal.Role)),
				slog.Any("required_roles", required))

			shared.RespondWithJSON(w, r, http.StatusForbidden, shared.ForbiddenResponse{
				Error: "Forbidden",
				Message: fmt.Sprintf("Access denied. Required role: %s, but got: %s",
					strings.Join(required, " or "), principal.Role),
				UserRole:      string(principal.Role),
				RequiredRoles: required,
				TraceID:       shared.GetTraceID(r.Context()),
			})
		})
	}
}
