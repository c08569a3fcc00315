package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/reviewdesk/internal/api/middleware"
	"github.com/phrazzld/reviewdesk/internal/api/shared"
	"github.com/phrazzld/reviewdesk/internal/platform/logger"
	"github.com/phrazzld/reviewdesk/internal/service"
	"github.com/phrazzld/reviewdesk/internal/service/auth"
)

// AuthHandler handles login, logout and session checks.
type AuthHandler struct {
	authService  service.AuthService
	jwtService   auth.JWTService
	cookieSecure bool
	logger       *slog.Logger
	timeFunc     func() time.Time
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	authService service.AuthService,
	jwtService auth.JWTService,
	cookieSecure bool,
	logger *slog.Logger,
) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		authService:  authService,
		jwtService:   jwtService,
		cookieSecure: cookieSecure,
		logger:       logger.With(slog.String("component", "auth_handler")),
		timeFunc:     time.Now,
	}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}

	http.SetCookie(w, h.sessionCookie(result.Token, result.ExpiresAt))

	logger.FromContextOrDefault(r.Context(), h.logger).Info("login succeeded",
		slog.String("user_id", result.Principal.ID.String()),
		slog.String("role", string(result.Principal.Role)))

	shared.RespondWithJSON(w, r, http.StatusOK, LoginResponse{
		Success: true,
		Role:    result.Principal.Role,
		User: UserResponse{
			ID:       result.Principal.ID,
			Username: result.Principal.Username,
		},
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// Logout handles POST /api/auth/logout by expiring the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie := h.sessionCookie("", time.Unix(0, 0))
	cookie.MaxAge = -1
	http.SetCookie(w, cookie)
	shared.RespondWithJSON(w, r, http.StatusOK, SuccessResponse{Success: true})
}

// Verify handles GET /api/auth/verify. It is public so the client can ask
// whether its cookie is still valid.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromRequest(r)
	if token == "" {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	claims, err := h.jwtService.ValidateToken(r.Context(), token)
	if err != nil {
		HandleAPIError(w, r, err, "Authentication error")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, VerifyResponse{
		Authenticated: true,
		Role:          claims.Role,
		Username:      claims.Username,
	})
}

func (h *AuthHandler) sessionCookie(value string, expires time.Time) *http.Cookie {
	maxAge := int(expires.Sub(h.timeFunc()).Seconds())
	if value == "" || maxAge < 0 {
		maxAge = 0
	}
	return &http.Cookie{
		Name:     shared.TokenCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}
