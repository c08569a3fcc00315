package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/reviewdesk/internal/api/shared"
	"github.com/phrazzld/reviewdesk/internal/domain"
	"github.com/phrazzld/reviewdesk/internal/platform/logger"
	"github.com/phrazzld/reviewdesk/internal/service"
)

// MonthParam is the route parameter holding a YYYY-MM month.
const MonthParam = "month"

// SettlementHandler serves reviewer my-page and admin settlement endpoints.
type SettlementHandler struct {
	settlementService service.SettlementService
	logger            *slog.Logger
}

// NewSettlementHandler creates a new SettlementHandler
func NewSettlementHandler(settlementService service.SettlementService, logger *slog.Logger) *SettlementHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettlementHandler{
		settlementService: settlementService,
		logger:            logger.With(slog.String("component", "settlement_handler")),
	}
}

// Summary handles GET /api/reviewer/mypage/summary.
func (h *SettlementHandler) Summary(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	summary, err := h.settlementService.Summary(r.Context(), principal.ID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load summary")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, summary)
}

// MonthDetail handles GET /api/reviewer/settlements/{month}.
func (h *SettlementHandler) MonthDetail(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	detail, err := h.settlementService.MonthDetail(r.Context(), principal.ID, getPathParam(r, MonthParam))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load settlement")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, detail)
}

// ListSettlements handles GET /api/admin/settlements?month=.
func (h *SettlementHandler) ListSettlements(w http.ResponseWriter, r *http.Request) {
	month := strings.TrimSpace(r.URL.Query().Get("month"))
	rows, err := h.settlementService.ListSettlements(r.Context(), month)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list settlements")
		return
	}
	if rows == nil {
		rows = []*domain.SettlementView{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, SettlementListResponse{
		Month:       domain.Month(month),
		Settlements: rows,
	})
}

// Reconcile handles GET /api/admin/settlements/reconcile.
func (h *SettlementHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	drifts, err := h.settlementService.Reconcile(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to reconcile settlements")
		return
	}
	if len(drifts) > 0 {
		logger.FromContextOrDefault(r.Context(), h.logger).Warn("settlement drift detected",
			slog.Int("drifts", len(drifts)))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ReconcileResponse{
		Consistent: len(drifts) == 0,
		Drifts:     drifts,
	})
}
