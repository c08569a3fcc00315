package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the position of a task in its lifecycle.
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusOngoing   TaskStatus = "ongoing"
	TaskStatusSubmitted TaskStatus = "submitted"
	TaskStatusApproved  TaskStatus = "approved"
	TaskStatusRejected  TaskStatus = "rejected"
	TaskStatusDeclined  TaskStatus = "declined"
)

// TaskStatuses lists every status in reviewer display priority.
var TaskStatuses = []TaskStatus{
	TaskStatusPending,
	TaskStatusOngoing,
	TaskStatusSubmitted,
	TaskStatusApproved,
	TaskStatusRejected,
	TaskStatusDeclined,
}

// ParseTaskStatus validates a status string.
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(s)
	if !status.IsValid() {
		return "", NewValidationError("status", "unknown task status "+s, ErrInvalidFormat)
	}
	return status, nil
}

// IsValid reports whether s is a known status.
func (s TaskStatus) IsValid() bool {
	for _, known := range TaskStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// TaskType is the kind of content a reviewer is asked to produce. The wire
// values are the Korean labels used by operators.
type TaskType string

// Task types
const (
	TaskTypeQuestion  TaskType = "질문"
	TaskTypeAfterPost TaskType = "후기"
	TaskTypeReview    TaskType = "리뷰"
	TaskTypeComment   TaskType = "댓글"
	TaskTypeInfo      TaskType = "정보"
)

var taskTypeAliases = map[string]TaskType{
	"question":   TaskTypeQuestion,
	"after_post": TaskTypeAfterPost,
	"afterpost":  TaskTypeAfterPost,
	"review":     TaskTypeReview,
	"comment":    TaskTypeComment,
	"info":       TaskTypeInfo,
}

// ParseTaskType accepts either the Korean label or its English alias.
func ParseTaskType(s string) (TaskType, error) {
	s = strings.TrimSpace(s)
	switch t := TaskType(s); t {
	case TaskTypeQuestion, TaskTypeAfterPost, TaskTypeReview, TaskTypeComment, TaskTypeInfo:
		return t, nil
	}
	if t, ok := taskTypeAliases[strings.ToLower(s)]; ok {
		return t, nil
	}
	return "", NewValidationError("task_type", "unknown task type "+s, ErrInvalidFormat)
}

// UnmarshalJSON implements json.Unmarshaler so request bodies may use aliases.
func (t *TaskType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return NewValidationError("task_type", "must be a string", ErrInvalidFormat)
	}
	parsed, err := ParseTaskType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Guide carries the instructions an admin attaches to a task.
type Guide struct {
	BusinessName string `json:"business_name,omitempty"`
	PlaceAddress string `json:"place_address,omitempty"`
	NeedPhoto    bool   `json:"need_photo"`
	SpecialNote  string `json:"special_note,omitempty"`
	TitleGuide   string `json:"title_guide,omitempty"`
	ContentGuide string `json:"content_guide,omitempty"`
	CommentGuide string `json:"comment_guide,omitempty"`
}

// DefaultDeclineReason is recorded when a reviewer declines without a reason.
const DefaultDeclineReason = "리뷰어가 작업을 거절했습니다."

// Task is a unit of work assigned to one reviewer.
type Task struct {
	ID               uuid.UUID
	ReviewerID       uuid.UUID
	Target           Target
	Type             TaskType
	Status           TaskStatus
	Deadline         *Date
	Guide            Guide
	SubmitLink       string
	RejectionReason  string
	SettlementAmount *int64
	AssignedAt       time.Time
	ApprovedAt       *time.Time
	CreatedAt        time.Time
}

// NewTaskParams holds the inputs for NewTask.
type NewTaskParams struct {
	ReviewerID uuid.UUID
	Type       TaskType
	Target     Target
	Deadline   *Date
	Guide      Guide
}

// NewTask creates a pending task. Cafe permission checks are done separately
// by Cafe.Permits because they need the cafe record.
func NewTask(p NewTaskParams, now time.Time) (*Task, error) {
	now = now.UTC()
	t := &Task{
		ID:         uuid.New(),
		ReviewerID: p.ReviewerID,
		Target:     p.Target,
		Type:       p.Type,
		Status:     TaskStatusPending,
		Deadline:   p.Deadline,
		Guide:      p.Guide,
		AssignedAt: now,
		CreatedAt:  now,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the task's structural invariants.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return NewValidationError("id", "is required", ErrInvalidID)
	}
	if t.ReviewerID == uuid.Nil {
		return NewValidationError("reviewer_id", "is required", ErrInvalidID)
	}
	if _, err := ParseTaskType(string(t.Type)); err != nil {
		return err
	}
	if !t.Status.IsValid() {
		return NewValidationError("status", "unknown task status "+string(t.Status), ErrInvalidFormat)
	}
	if err := ValidateTarget(t.Target); err != nil {
		return err
	}
	approved := t.Status == TaskStatusApproved
	if approved != (t.ApprovedAt != nil) || (t.ApprovedAt != nil) != (t.SettlementAmount != nil) {
		return NewValidationError("status", "approval timestamp and settlement amount must be set together with approved status", nil)
	}
	return nil
}

// Start moves a pending task to ongoing. It reports whether anything changed;
// starting a task that is past pending is a no-op.
func (t *Task) Start() bool {
	if t.Status != TaskStatusPending {
		return false
	}
	t.Status = TaskStatusOngoing
	return true
}

// SubmitResult describes what Submit did.
type SubmitResult struct {
	Changed      bool
	PreviousLink string
	Overwrote    bool
}

// Submit records the completion link and marks the task submitted.
// Resubmitting the same link to a submitted or approved task is a no-op.
func (t *Task) Submit(link string) (SubmitResult, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return SubmitResult{}, NewValidationError("submit_link", "is required", nil)
	}

	if link == t.SubmitLink && (t.Status == TaskStatusSubmitted || t.Status == TaskStatusApproved) {
		return SubmitResult{}, nil
	}

	switch t.Status {
	case TaskStatusPending, TaskStatusOngoing, TaskStatusSubmitted, TaskStatusRejected:
	default:
		return SubmitResult{}, newTransitionError("submit", t.Status)
	}

	res := SubmitResult{Changed: true, PreviousLink: t.SubmitLink}
	res.Overwrote = t.SubmitLink != "" && t.SubmitLink != link
	t.SubmitLink = link
	t.Status = TaskStatusSubmitted
	t.RejectionReason = ""
	return res, nil
}

// Decline lets the reviewer give the task back. Only pending and ongoing
// tasks can be declined.
func (t *Task) Decline(reason string) error {
	if t.Status != TaskStatusPending && t.Status != TaskStatusOngoing {
		return newTransitionError("decline", t.Status)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultDeclineReason
	}
	t.Status = TaskStatusDeclined
	t.RejectionReason = reason
	return nil
}

// Approve freezes the settlement amount and marks the task approved.
// Only submitted tasks can be approved.
func (t *Task) Approve(amount int64, now time.Time) error {
	if t.Status != TaskStatusSubmitted {
		return newTransitionError("approve", t.Status)
	}
	if amount < 0 {
		return NewValidationError("settlement_amount", "cannot be negative", nil)
	}
	approvedAt := now.UTC()
	t.Status = TaskStatusApproved
	t.ApprovedAt = &approvedAt
	t.SettlementAmount = &amount
	return nil
}

// Reject sends the task back to the reviewer with a reason.
func (t *Task) Reject(reason string) error {
	if t.Status == TaskStatusApproved {
		return newTransitionError("reject", t.Status)
	}
	t.Status = TaskStatusRejected
	t.RejectionReason = strings.TrimSpace(reason)
	return nil
}

// Reassign hands the task to another reviewer. A declined task re-enters the
// queue as pending.
func (t *Task) Reassign(reviewerID uuid.UUID, now time.Time) error {
	if reviewerID == uuid.Nil {
		return NewValidationError("reviewer_id", "is required", ErrInvalidID)
	}
	if t.Status == TaskStatusApproved {
		return newTransitionError("reassign", t.Status)
	}
	if t.Status == TaskStatusDeclined {
		t.Status = TaskStatusPending
		t.RejectionReason = ""
	}
	t.ReviewerID = reviewerID
	t.AssignedAt = now.UTC()
	return nil
}

// CheckDeletable refuses to delete approved tasks. Their amounts are already
// part of a settlement, which is never decremented.
func (t *Task) CheckDeletable() error {
	if t.Status == TaskStatusApproved {
		return newTransitionError("delete", t.Status)
	}
	return nil
}

// DeadlineUpdate is a tri-state deadline change: absent, cleared, or set.
type DeadlineUpdate struct {
	Present bool
	Value   *Date
}

// GuidePatch is a partial update of a task's guide fields. Nil pointers and
// empty strings leave the stored value unchanged.
type GuidePatch struct {
	BusinessName *string
	PlaceAddress *string
	SpecialNote  *string
	TitleGuide   *string
	ContentGuide *string
	CommentGuide *string
	CafeLink     *string
	NeedPhoto    *bool
	Deadline     DeadlineUpdate
}

// ApplyGuide applies a guide patch. Guides can only change before the
// reviewer submits.
func (t *Task) ApplyGuide(p GuidePatch) error {
	if t.Status != TaskStatusPending && t.Status != TaskStatusOngoing {
		return newTransitionError("update the guide of", t.Status)
	}

	if link, ok := nonEmpty(p.CafeLink); ok {
		if _, isLink := t.Target.(LinkTarget); !isLink {
			return NewValidationError("cafe_link", "can only be changed on tasks targeting a manual link", nil)
		}
		t.Target = LinkTarget{Link: link}
	}

	setIfPresent(&t.Guide.BusinessName, p.BusinessName)
	setIfPresent(&t.Guide.PlaceAddress, p.PlaceAddress)
	setIfPresent(&t.Guide.SpecialNote, p.SpecialNote)
	setIfPresent(&t.Guide.TitleGuide, p.TitleGuide)
	setIfPresent(&t.Guide.ContentGuide, p.ContentGuide)
	setIfPresent(&t.Guide.CommentGuide, p.CommentGuide)
	if p.NeedPhoto != nil {
		t.Guide.NeedPhoto = *p.NeedPhoto
	}
	if p.Deadline.Present {
		t.Deadline = p.Deadline.Value
	}
	return nil
}

func nonEmpty(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	v := strings.TrimSpace(*s)
	return v, v != ""
}

func setIfPresent(dst *string, src *string) {
	if v, ok := nonEmpty(src); ok {
		*dst = v
	}
}

// CafeSummary is the cafe information joined onto task listings.
type CafeSummary struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Region      string      `json:"region,omitempty"`
	Link        string      `json:"cafe_link"`
	Permissions Permissions `json:"permissions"`
}

// TaskView is a task with the reviewer and cafe fields listings need.
type TaskView struct {
	*Task
	ReviewerUsername string
	ReviewerNickname string
	Cafe             *CafeSummary
}
