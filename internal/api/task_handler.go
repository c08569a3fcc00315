package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/reviewdesk/internal/api/shared"
	"github.com/phrazzld/reviewdesk/internal/domain"
	"github.com/phrazzld/reviewdesk/internal/platform/logger"
	"github.com/phrazzld/reviewdesk/internal/service"
	"github.com/phrazzld/reviewdesk/internal/store"
)

// TaskHandler serves the admin and reviewer task endpoints.
type TaskHandler struct {
	taskService service.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		taskService: taskService,
		logger:      logger.With(slog.String("component", "task_handler")),
	}
}

// CreateTask handles POST /api/admin/tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	params, err := req.Params()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), params)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("task created",
		slog.String("task_id", task.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, taskEnvelope(task))
}

// ListTasks handles GET /api/admin/tasks?status=&reviewer_id=.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	var filter store.TaskFilter

	query := r.URL.Query()
	if s := strings.TrimSpace(query.Get("status")); s != "" {
		status, err := domain.ParseTaskStatus(s)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		filter.Status = status
	}
	if s := strings.TrimSpace(query.Get("reviewer_id")); s != "" {
		id, err := parseID("reviewer_id", s)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		filter.ReviewerID = id
	}

	views, err := h.taskService.ListTasks(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{Tasks: taskViewsToResponse(views)})
}

// ApproveTask handles POST /api/admin/tasks/approve.
func (h *TaskHandler) ApproveTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.decodeTaskID(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.ApproveTask(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to approve task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskEnvelope(task))
}

// RejectTask handles POST /api/admin/tasks/reject.
func (h *TaskHandler) RejectTask(w http.ResponseWriter, r *http.Request) {
	var req RejectTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	taskID, err := parseID("task_id", req.TaskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.taskService.RejectTask(r.Context(), taskID, req.RejectionReason)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to reject task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskEnvelope(task))
}

// ReassignTask handles POST /api/admin/tasks/reassign.
func (h *TaskHandler) ReassignTask(w http.ResponseWriter, r *http.Request) {
	var req ReassignTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	taskID, err := parseID("task_id", req.TaskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	reviewerID, err := parseID("reviewer_id", req.ReviewerID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.taskService.ReassignTask(r.Context(), taskID, reviewerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to reassign task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskEnvelope(task))
}

// UpdateTask handles POST /api/admin/tasks/update.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var req UpdateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	taskID, err := parseID("task_id", req.TaskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	patch, err := req.Patch()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.taskService.UpdateGuide(r.Context(), taskID, patch)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskEnvelope(task))
}

// DeleteTask handles POST /api/admin/tasks/delete.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.decodeTaskID(w, r)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), taskID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, SuccessResponse{Success: true})
}

// ListReviewerTasks handles GET /api/reviewer/tasks.
func (h *TaskHandler) ListReviewerTasks(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	views, err := h.taskService.ListReviewerTasks(r.Context(), principal.ID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{Tasks: taskViewsToResponse(views)})
}

// StartTask handles POST /api/reviewer/tasks/start.
func (h *TaskHandler) StartTask(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}
	taskID, ok := h.decodeTaskID(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.StartTask(r.Context(), principal.ID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskEnvelope(task))
}

// SubmitTask handles POST /api/reviewer/tasks/submit.
func (h *TaskHandler) SubmitTask(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}
	var req SubmitTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	taskID, err := parseID("task_id", req.TaskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.taskService.SubmitTask(r.Context(), principal.ID, taskID, req.SubmitLink)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskEnvelope(task))
}

// DeclineTask handles POST /api/reviewer/tasks/decline.
func (h *TaskHandler) DeclineTask(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}
	var req DeclineTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	taskID, err := parseID("task_id", req.TaskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.taskService.DeclineTask(r.Context(), principal.ID, taskID, req.DeclineReason)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to decline task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskEnvelope(task))
}

func (h *TaskHandler) decodeTaskID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	var req TaskIDRequest
	if !decodeAndValidate(w, r, &req) {
		return uuid.Nil, false
	}
	id, err := parseID("task_id", req.TaskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return uuid.Nil, false
	}
	return id, true
}
