package api

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/reviewdesk/internal/api/shared"
	"github.com/phrazzld/reviewdesk/internal/cafeimport"
	"github.com/phrazzld/reviewdesk/internal/domain"
	"github.com/phrazzld/reviewdesk/internal/platform/logger"
	"github.com/phrazzld/reviewdesk/internal/service"
)

// MaxUploadBytes bounds bulk import uploads.
const MaxUploadBytes = 10 << 20

// ImportFormField is the multipart field carrying the bulk import file.
const ImportFormField = "file"

// CafeHandler serves the admin cafe registry endpoints.
type CafeHandler struct {
	cafeService service.CafeService
	location    *time.Location
	logger      *slog.Logger
	timeFunc    func() time.Time
}

// NewCafeHandler creates a new CafeHandler. Export filenames are dated in loc.
func NewCafeHandler(cafeService service.CafeService, loc *time.Location, logger *slog.Logger) *CafeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &CafeHandler{
		cafeService: cafeService,
		location:    loc,
		logger:      logger.With(slog.String("component", "cafe_handler")),
		timeFunc:    time.Now,
	}
}

// CreateCafe handles POST /api/admin/cafes.
func (h *CafeHandler) CreateCafe(w http.ResponseWriter, r *http.Request) {
	var req CreateCafeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	cafe, err := h.cafeService.CreateCafe(r.Context(), req.Input())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create cafe")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, CafeEnvelope{Success: true, Cafe: cafe})
}

// ListCafes handles GET /api/admin/cafes?region=.
func (h *CafeHandler) ListCafes(w http.ResponseWriter, r *http.Request) {
	listing, err := h.cafeService.ListCafes(r.Context(), r.URL.Query().Get("region"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list cafes")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, listing)
}

// DeleteCafes handles POST /api/admin/cafes/delete.
func (h *CafeHandler) DeleteCafes(w http.ResponseWriter, r *http.Request) {
	var req DeleteCafesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	ids := make([]uuid.UUID, 0, len(req.CafeIDs))
	for _, raw := range req.CafeIDs {
		id, err := parseID("cafe_ids", raw)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		ids = append(ids, id)
	}

	deleted, err := h.cafeService.DeleteCafes(r.Context(), ids)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete cafes")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, DeleteResponse{Success: true, Deleted: deleted})
}

// DeleteAllCafes handles POST /api/admin/cafes/delete-all.
func (h *CafeHandler) DeleteAllCafes(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.cafeService.DeleteAllCafes(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete cafes")
		return
	}
	logger.FromContextOrDefault(r.Context(), h.logger).Warn("all cafes deleted",
		slog.Int64("deleted", deleted))
	shared.RespondWithJSON(w, r, http.StatusOK, DeleteResponse{Success: true, Deleted: deleted})
}

// BulkImport handles POST /api/admin/cafes/bulk-import with a multipart
// upload in the "file" field.
func (h *CafeHandler) BulkImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			shared.RespondWithErrorAndLog(w, r, http.StatusRequestEntityTooLarge, "File is too large", err)
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid multipart form", err)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile(ImportFormField)
	if err != nil {
		HandleAPIError(w, r, domain.NewValidationError(ImportFormField, "파일이 없습니다.", nil), "")
		return
	}
	defer func() { _ = file.Close() }()

	rows, err := cafeimport.Parse(file, header.Filename)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to read import file")
		return
	}

	result, err := h.cafeService.ImportCafes(r.Context(), rows)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to import cafes")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("cafe import finished",
		slog.String("filename", header.Filename),
		slog.Int("total", result.Total),
		slog.Int("imported", result.Imported),
		slog.Int("failed", result.Failed))
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// ExportText handles GET /api/admin/cafes/export-txt?region=.
func (h *CafeHandler) ExportText(w http.ResponseWriter, r *http.Request) {
	region := strings.TrimSpace(r.URL.Query().Get("region"))
	listing, err := h.cafeService.ListCafes(r.Context(), region)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to export cafes")
		return
	}

	var buf bytes.Buffer
	if err := cafeimport.WriteText(&buf, listing.Cafes); err != nil {
		HandleAPIError(w, r, err, "Failed to export cafes")
		return
	}

	filename := cafeimport.ExportFilename(region, h.timeFunc().In(h.location))
	shared.RespondWithAttachment(w, r, filename, "text/plain; charset=utf-8", buf.Bytes())
}

// Template handles GET /api/admin/cafes/template.
func (h *CafeHandler) Template(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := cafeimport.WriteTemplate(&buf); err != nil {
		HandleAPIError(w, r, err, "Failed to build template")
		return
	}
	shared.RespondWithAttachment(w, r, cafeimport.TemplateFilename, cafeimport.XLSXContentType, buf.Bytes())
}
