package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/reviewdesk/internal/api/shared"
	"github.com/phrazzld/reviewdesk/internal/domain"
	"github.com/phrazzld/reviewdesk/internal/platform/logger"
	"github.com/phrazzld/reviewdesk/internal/service"
)

// ReviewerHandler serves the admin reviewer registry endpoints.
type ReviewerHandler struct {
	reviewerService service.ReviewerService
	logger          *slog.Logger
}

// NewReviewerHandler creates a new ReviewerHandler
func NewReviewerHandler(reviewerService service.ReviewerService, logger *slog.Logger) *ReviewerHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewerHandler{
		reviewerService: reviewerService,
		logger:          logger.With(slog.String("component", "reviewer_handler")),
	}
}

// CreateReviewer handles POST /api/admin/reviewers.
func (h *ReviewerHandler) CreateReviewer(w http.ResponseWriter, r *http.Request) {
	var req CreateReviewerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	reviewer, err := h.reviewerService.CreateReviewer(r.Context(), req.Username, req.Nickname, *req.UnitPrice)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create reviewer")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("reviewer created",
		slog.String("reviewer_id", reviewer.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, ReviewerEnvelope{Success: true, Reviewer: reviewer})
}

// ListReviewers handles GET /api/admin/reviewers.
func (h *ReviewerHandler) ListReviewers(w http.ResponseWriter, r *http.Request) {
	reviewers, err := h.reviewerService.ListReviewers(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list reviewers")
		return
	}
	if reviewers == nil {
		reviewers = []*domain.ReviewerSummary{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ReviewerListResponse{Reviewers: reviewers})
}

// UpdateReviewer handles POST /api/admin/reviewers/update.
func (h *ReviewerHandler) UpdateReviewer(w http.ResponseWriter, r *http.Request) {
	var req UpdateReviewerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	id, err := parseID("id", req.ID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	reviewer, err := h.reviewerService.UpdateReviewer(r.Context(), id, domain.ReviewerPatch{
		Nickname:  req.Nickname,
		UnitPrice: req.UnitPrice,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update reviewer")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ReviewerEnvelope{Success: true, Reviewer: reviewer})
}

// DeleteReviewer handles POST /api/admin/reviewers/delete.
func (h *ReviewerHandler) DeleteReviewer(w http.ResponseWriter, r *http.Request) {
	var req IDRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	id, err := parseID("id", req.ID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.reviewerService.DeleteReviewer(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete reviewer")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, SuccessResponse{Success: true})
}
