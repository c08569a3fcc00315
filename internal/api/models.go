package api

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/reviewdesk/internal/domain"
	"github.com/phrazzld/reviewdesk/internal/service"
)

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned by a successful login. The token is also set as
// an HttpOnly cookie.
type LoginResponse struct {
	Success   bool         `json:"success"`
	Role      domain.Role  `json:"role"`
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expires_at"`
}

// UserResponse identifies the logged-in account.
type UserResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// VerifyResponse reports the state of the caller's session.
type VerifyResponse struct {
	Authenticated bool        `json:"authenticated"`
	Role          domain.Role `json:"role,omitempty"`
	Username      string      `json:"username,omitempty"`
}

// SuccessResponse acknowledges a mutation that returns no entity.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// CreateTaskRequest defines the payload for creating a task. Exactly one of
// cafe_id, cafe_link or is_region_arbitrary selects the target.
type CreateTaskRequest struct {
	ReviewerID        string          `json:"reviewer_id"         validate:"required,uuid"`
	TaskType          domain.TaskType `json:"task_type"           validate:"required"`
	CafeID            string          `json:"cafe_id"             validate:"omitempty,uuid"`
	CafeLink          string          `json:"cafe_link"`
	IsRegionArbitrary bool            `json:"is_region_arbitrary"`
	RegionArbitrary   string          `json:"region_arbitrary"`
	Deadline          string          `json:"deadline"`
	BusinessName      string          `json:"business_name"`
	PlaceAddress      string          `json:"place_address"`
	NeedPhoto         bool            `json:"need_photo"`
	SpecialNote       string          `json:"special_note"`
	TitleGuide        string          `json:"title_guide"`
	ContentGuide      string          `json:"content_guide"`
	CommentGuide      string          `json:"comment_guide"`
}

// Params converts the request into domain task parameters.
func (r CreateTaskRequest) Params() (domain.NewTaskParams, error) {
	reviewerID, err := parseID("reviewer_id", r.ReviewerID)
	if err != nil {
		return domain.NewTaskParams{}, err
	}

	var cafeID *uuid.UUID
	if strings.TrimSpace(r.CafeID) != "" {
		id, err := parseID("cafe_id", r.CafeID)
		if err != nil {
			return domain.NewTaskParams{}, err
		}
		cafeID = &id
	}

	target, err := domain.NewTarget(cafeID, r.CafeLink, r.IsRegionArbitrary, r.RegionArbitrary)
	if err != nil {
		return domain.NewTaskParams{}, err
	}

	var deadline *domain.Date
	if d := strings.TrimSpace(r.Deadline); d != "" {
		parsed, err := domain.ParseDate(d)
		if err != nil {
			return domain.NewTaskParams{}, err
		}
		deadline = &parsed
	}

	return domain.NewTaskParams{
		ReviewerID: reviewerID,
		Type:       r.TaskType,
		Target:     target,
		Deadline:   deadline,
		Guide: domain.Guide{
			BusinessName: strings.TrimSpace(r.BusinessName),
			PlaceAddress: strings.TrimSpace(r.PlaceAddress),
			NeedPhoto:    r.NeedPhoto,
			SpecialNote:  strings.TrimSpace(r.SpecialNote),
			TitleGuide:   strings.TrimSpace(r.TitleGuide),
			ContentGuide: strings.TrimSpace(r.ContentGuide),
			CommentGuide: strings.TrimSpace(r.CommentGuide),
		},
	}, nil
}

// TaskIDRequest is the payload of task operations that only need the task.
type TaskIDRequest struct {
	TaskID string `json:"task_id" validate:"required,uuid"`
}

// RejectTaskRequest defines the payload for rejecting a submission.
type RejectTaskRequest struct {
	TaskID          string `json:"task_id"          validate:"required,uuid"`
	RejectionReason string `json:"rejection_reason"`
}

// ReassignTaskRequest defines the payload for moving a task to another reviewer.
type ReassignTaskRequest struct {
	TaskID     string `json:"task_id"     validate:"required,uuid"`
	ReviewerID string `json:"reviewer_id" validate:"required,uuid"`
}

// SubmitTaskRequest defines the payload for submitting a posted link.
type SubmitTaskRequest struct {
	TaskID     string `json:"task_id"     validate:"required,uuid"`
	SubmitLink string `json:"submit_link" validate:"required"`
}

// DeclineTaskRequest defines the payload for a reviewer declining a task.
type DeclineTaskRequest struct {
	TaskID        string `json:"task_id" validate:"required,uuid"`
	DeclineReason string `json:"decline_reason"`
}

// OptionalDate distinguishes an omitted deadline from an explicit null or
// empty string.
type OptionalDate struct {
	Set   bool
	Value string
}

// UnmarshalJSON records that the field was present.
func (o *OptionalDate) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = ""
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return domain.NewValidationError("deadline", "must be a string in the YYYY-MM-DD format", domain.ErrInvalidFormat)
	}
	return nil
}

// Update converts the field into a domain deadline change.
func (o OptionalDate) Update() (domain.DeadlineUpdate, error) {
	if !o.Set {
		return domain.DeadlineUpdate{}, nil
	}
	v := strings.TrimSpace(o.Value)
	if v == "" {
		return domain.DeadlineUpdate{Present: true}, nil
	}
	d, err := domain.ParseDate(v)
	if err != nil {
		return domain.DeadlineUpdate{}, err
	}
	return domain.DeadlineUpdate{Present: true, Value: &d}, nil
}

// UpdateTaskRequest defines a partial update of a task's guide fields.
type UpdateTaskRequest struct {
	TaskID       string       `json:"task_id"       validate:"required,uuid"`
	CafeLink     *string      `json:"cafe_link"`
	BusinessName *string      `json:"business_name"`
	PlaceAddress *string      `json:"place_address"`
	NeedPhoto    *bool        `json:"need_photo"`
	SpecialNote  *string      `json:"special_note"`
	TitleGuide   *string      `json:"title_guide"`
	ContentGuide *string      `json:"content_guide"`
	CommentGuide *string      `json:"comment_guide"`
	Deadline     OptionalDate `json:"deadline"`
}

// Patch converts the request into a domain guide patch.
func (r UpdateTaskRequest) Patch() (domain.GuidePatch, error) {
	deadline, err := r.Deadline.Update()
	if err != nil {
		return domain.GuidePatch{}, err
	}
	return domain.GuidePatch{
		BusinessName: r.BusinessName,
		PlaceAddress: r.PlaceAddress,
		SpecialNote:  r.SpecialNote,
		TitleGuide:   r.TitleGuide,
		ContentGuide: r.ContentGuide,
		CommentGuide: r.CommentGuide,
		CafeLink:     r.CafeLink,
		NeedPhoto:    r.NeedPhoto,
		Deadline:     deadline,
	}, nil
}

// TaskResponse is the wire form of a task. Listing fields are filled when
// the task comes from a joined view.
type TaskResponse struct {
	ID                uuid.UUID         `json:"id"`
	ReviewerID        uuid.UUID         `json:"reviewer_id"`
	TaskType          domain.TaskType   `json:"task_type"`
	Status            domain.TaskStatus `json:"status"`
	CafeID            *uuid.UUID        `json:"cafe_id"`
	CafeLink          string            `json:"cafe_link,omitempty"`
	IsRegionArbitrary bool              `json:"is_region_arbitrary"`
	RegionArbitrary   string            `json:"region_arbitrary,omitempty"`
	Deadline          *domain.Date      `json:"deadline"`
	domain.Guide
	SubmitLink       string     `json:"submit_link,omitempty"`
	RejectionReason  string     `json:"rejection_reason,omitempty"`
	SettlementAmount *int64     `json:"settlement_amount"`
	AssignedAt       time.Time  `json:"assigned_at"`
	ApprovedAt       *time.Time `json:"approved_at"`
	CreatedAt        time.Time  `json:"created_at"`

	ReviewerUsername  string `json:"reviewer_username,omitempty"`
	ReviewerNickname  string `json:"reviewer_nickname,omitempty"`
	CafeName          string `json:"cafe_name,omitempty"`
	AllowReview       *bool  `json:"allow_review,omitempty"`
	AllowBusinessName *bool  `json:"allow_business_name,omitempty"`
	AllowAfterPost    *bool  `json:"allow_after_post,omitempty"`
}

func taskToResponse(t *domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:               t.ID,
		ReviewerID:       t.ReviewerID,
		TaskType:         t.Type,
		Status:           t.Status,
		Deadline:         t.Deadline,
		Guide:            t.Guide,
		SubmitLink:       t.SubmitLink,
		RejectionReason:  t.RejectionReason,
		SettlementAmount: t.SettlementAmount,
		AssignedAt:       t.AssignedAt,
		ApprovedAt:       t.ApprovedAt,
		CreatedAt:        t.CreatedAt,
	}
	switch target := t.Target.(type) {
	case domain.CafeTarget:
		id := target.CafeID
		resp.CafeID = &id
	case domain.LinkTarget:
		resp.CafeLink = target.Link
	case domain.RegionTarget:
		resp.IsRegionArbitrary = true
		resp.RegionArbitrary = target.Region
	}
	return resp
}

func taskViewToResponse(v *domain.TaskView) TaskResponse {
	resp := taskToResponse(v.Task)
	resp.ReviewerUsername = v.ReviewerUsername
	resp.ReviewerNickname = v.ReviewerNickname
	if v.Cafe != nil {
		perms := v.Cafe.Permissions
		resp.CafeName = v.Cafe.Name
		resp.CafeLink = v.Cafe.Link
		resp.AllowReview = &perms.AllowReview
		resp.AllowBusinessName = &perms.AllowBusinessName
		resp.AllowAfterPost = &perms.AllowAfterPost
	}
	return resp
}

func taskViewsToResponse(views []*domain.TaskView) []TaskResponse {
	out := make([]TaskResponse, 0, len(views))
	for _, v := range views {
		out = append(out, taskViewToResponse(v))
	}
	return out
}

// TaskEnvelope wraps a single task in mutation responses.
type TaskEnvelope struct {
	Success bool          `json:"success"`
	Task    *TaskResponse `json:"task,omitempty"`
}

func taskEnvelope(t *domain.Task) TaskEnvelope {
	if t == nil {
		return TaskEnvelope{Success: true}
	}
	resp := taskToResponse(t)
	return TaskEnvelope{Success: true, Task: &resp}
}

// TaskListResponse wraps task listings.
type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
}

// CreateReviewerRequest defines the payload for registering a reviewer.
type CreateReviewerRequest struct {
	Username  string `json:"username"   validate:"required"`
	Nickname  string `json:"nickname"   validate:"required"`
	UnitPrice *int64 `json:"unit_price" validate:"required,gte=0"`
}

// UpdateReviewerRequest changes a reviewer's nickname and/or unit price.
type UpdateReviewerRequest struct {
	ID        string  `json:"id"         validate:"required,uuid"`
	Nickname  *string `json:"nickname"`
	UnitPrice *int64  `json:"unit_price"`
}

// IDRequest is the payload of registry deletions.
type IDRequest struct {
	ID string `json:"id" validate:"required,uuid"`
}

// ReviewerEnvelope wraps a single reviewer in mutation responses.
type ReviewerEnvelope struct {
	Success  bool             `json:"success"`
	Reviewer *domain.Reviewer `json:"reviewer"`
}

// ReviewerListResponse wraps the reviewer listing.
type ReviewerListResponse struct {
	Reviewers []*domain.ReviewerSummary `json:"reviewers"`
}

// CreateCafeRequest defines the payload for registering a cafe. Omitted
// permission flags default to allowed.
type CreateCafeRequest struct {
	Name              string `json:"name"`
	Region            string `json:"region"`
	CafeLink          string `json:"cafe_link" validate:"required"`
	AllowReview       *bool  `json:"allow_review"`
	AllowBusinessName *bool  `json:"allow_business_name"`
	AllowAfterPost    *bool  `json:"allow_after_post"`
	RequireApproval   *bool  `json:"require_approval"`
	Notes             string `json:"notes"`
}

// Input converts the request into the service input.
func (r CreateCafeRequest) Input() service.CafeInput {
	perms := domain.DefaultPermissions
	setFlag(&perms.AllowReview, r.AllowReview)
	setFlag(&perms.AllowBusinessName, r.AllowBusinessName)
	setFlag(&perms.AllowAfterPost, r.AllowAfterPost)
	setFlag(&perms.RequireApproval, r.RequireApproval)
	return service.CafeInput{
		Name:        r.Name,
		Region:      r.Region,
		Link:        r.CafeLink,
		Permissions: perms,
		Notes:       r.Notes,
	}
}

func setFlag(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

// DeleteCafesRequest lists the cafes to delete.
type DeleteCafesRequest struct {
	CafeIDs []string `json:"cafe_ids" validate:"required,min=1,dive,uuid"`
}

// CafeEnvelope wraps a single cafe in mutation responses.
type CafeEnvelope struct {
	Success bool         `json:"success"`
	Cafe    *domain.Cafe `json:"cafe"`
}

// DeleteResponse reports how many rows a deletion removed.
type DeleteResponse struct {
	Success bool  `json:"success"`
	Deleted int64 `json:"deleted"`
}

// SettlementListResponse wraps the admin settlement overview.
type SettlementListResponse struct {
	Month       domain.Month             `json:"month,omitempty"`
	Settlements []*domain.SettlementView `json:"settlements"`
}

// ReconcileResponse reports settlement rows that disagree with approved tasks.
type ReconcileResponse struct {
	Consistent bool                     `json:"consistent"`
	Drifts     []domain.SettlementDrift `json:"drifts"`
}
