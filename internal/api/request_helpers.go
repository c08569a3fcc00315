package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/reviewdesk/internal/api/shared"
	"github.com/phrazzld/reviewdesk/internal/domain"
	"github.com/phrazzld/reviewdesk/internal/platform/logger"
)

// principalFromRequest returns the account placed in the context by the
// authentication middleware. It writes a 401 and returns false when none is
// present.
func principalFromRequest(w http.ResponseWriter, r *http.Request) (domain.Principal, bool) {
	p, ok := shared.GetPrincipal(r.Context())
	if !ok || p.ID == uuid.Nil {
		logger.FromContextOrDefault(r.Context(), slog.Default()).
			Warn("principal not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return domain.Principal{}, false
	}
	return p, true
}

// decodeAndValidate reads a JSON body into req and validates it. On failure
// it writes a 400 and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := shared.DecodeJSON(r, req); err != nil {
		var verr *domain.ValidationError
		if errors.Is(err, shared.ErrEmptyBody) || errors.As(err, &verr) {
			HandleAPIError(w, r, err, "")
			return false
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, err, "")
		return false
	}
	return true
}

// parseID parses a UUID taken from a request field.
func parseID(field, raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, domain.NewValidationError(field, "is required", domain.ErrValidation)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(field, "has invalid format", domain.ErrInvalidID)
	}
	return id, nil
}

// getPathParam returns a trimmed chi URL parameter.
func getPathParam(r *http.Request, name string) string {
	return strings.TrimSpace(chi.URLParam(r, name))
}
