package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the kind of account making a request.
type Role string

// Account roles
const (
	RoleAdmin    Role = "admin"
	RoleReviewer Role = "reviewer"
)

// Reviewer is a person who carries out tasks and gets paid per approval.
type Reviewer struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Nickname     string    `json:"nickname"`
	UnitPrice    int64     `json:"unit_price"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewReviewer creates a reviewer with an already hashed password.
func NewReviewer(username, nickname string, unitPrice int64, passwordHash string, now time.Time) (*Reviewer, error) {
	r := &Reviewer{
		ID:           uuid.New(),
		Username:     strings.TrimSpace(username),
		PasswordHash: passwordHash,
		Nickname:     strings.TrimSpace(nickname),
		UnitPrice:    unitPrice,
		CreatedAt:    now.UTC(),
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks required reviewer fields.
func (r *Reviewer) Validate() error {
	if r.ID == uuid.Nil {
		return NewValidationError("id", "is required", ErrInvalidID)
	}
	if r.Username == "" {
		return NewValidationError("username", "is required", nil)
	}
	if r.Nickname == "" {
		return NewValidationError("nickname", "is required", nil)
	}
	if r.UnitPrice < 0 {
		return NewValidationError("unit_price", "cannot be negative", nil)
	}
	if r.PasswordHash == "" {
		return NewValidationError("password", "is required", nil)
	}
	return nil
}

// ReviewerSummary is a reviewer with the number of tasks assigned to them.
type ReviewerSummary struct {
	Reviewer
	TaskCount int `json:"task_count"`
}

// ReviewerPatch is a partial reviewer update.
type ReviewerPatch struct {
	Nickname  *string
	UnitPrice *int64
}

// Validate requires at least one field and checks the supplied ones.
func (p ReviewerPatch) Validate() error {
	if p.Nickname == nil && p.UnitPrice == nil {
		return NewValidationError("", "nothing to update", nil)
	}
	if p.Nickname != nil && strings.TrimSpace(*p.Nickname) == "" {
		return NewValidationError("nickname", "cannot be empty", nil)
	}
	if p.UnitPrice != nil && *p.UnitPrice < 0 {
		return NewValidationError("unit_price", "cannot be negative", nil)
	}
	return nil
}

// Admin is an operator account.
type Admin struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// NewAdmin creates an admin with an already hashed password.
func NewAdmin(username, passwordHash string, now time.Time) (*Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, NewValidationError("username", "is required", nil)
	}
	if passwordHash == "" {
		return nil, NewValidationError("password", "is required", nil)
	}
	return &Admin{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now.UTC(),
	}, nil
}

// Principal is an authenticated account of either role.
type Principal struct {
	ID       uuid.UUID
	Username string
	Role     Role
}
