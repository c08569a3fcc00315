package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/reviewdesk/internal/api/shared"
	"github.com/phrazzld/reviewdesk/internal/cafeimport"
	"github.com/phrazzld/reviewdesk/internal/domain"
	"github.com/phrazzld/reviewdesk/internal/service"
	"github.com/phrazzld/reviewdesk/internal/service/auth"
	"github.com/phrazzld/reviewdesk/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrTaskNotOwned):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate),
		errors.Is(err, store.ErrUpdateFailed):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidFormat),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, cafeimport.ErrEmptyFile),
		errors.Is(err, cafeimport.ErrUnsupportedFormat),
		errors.Is(err, shared.ErrEmptyBody):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. Validation and transition messages are written
// for end users and are returned verbatim.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Error()
	}
	var transitionErr *domain.TransitionError
	if errors.As(err, &transitionErr) {
		return transitionErr.Error()
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, domain.ErrUnauthorized):
		return "Unauthorized"

	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, service.ErrTaskNotOwned):
		return "Task is assigned to another reviewer"

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, store.ErrReviewerNotFound):
		return "Reviewer not found"
	case errors.Is(err, store.ErrCafeNotFound):
		return "Cafe not found"
	case errors.Is(err, store.ErrSettlementNotFound):
		return "Settlement not found"
	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, store.ErrUsernameExists):
		return "Username already exists"
	case errors.Is(err, store.ErrCafeExists):
		return "이미 등록된 카페 링크입니다."
	case errors.Is(err, store.ErrTaskStatusChanged):
		return "Task was modified concurrently, please retry"
	case errors.Is(err, store.ErrDuplicate):
		return "Already exists"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"
	case errors.Is(err, cafeimport.ErrEmptyFile):
		return "파일이 비어있거나 올바르지 않습니다."
	case errors.Is(err, cafeimport.ErrUnsupportedFormat):
		return "Unsupported file format, upload .xlsx or .csv"
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	case errors.Is(err, domain.ErrInvalidFormat), errors.Is(err, domain.ErrInvalidID):
		return "Invalid request format"

	default:
		return "Internal server error"
	}
}

// HandleAPIError writes the response for err. A non-empty fallback replaces
// the generic message on 500 responses.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}

	var opts []shared.ResponseOption
	if status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
