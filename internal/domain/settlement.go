package domain

import (
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/google/uuid"
)

var monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// Month is a calendar month key in YYYY-MM form.
type Month string

// ParseMonth validates a YYYY-MM string.
func ParseMonth(s string) (Month, error) {
	if !monthPattern.MatchString(s) {
		return "", NewValidationError("month", "must use the YYYY-MM format", ErrInvalidFormat)
	}
	if _, err := time.Parse("2006-01", s); err != nil {
		return "", NewValidationError("month", "is not a valid calendar month", ErrInvalidFormat)
	}
	return Month(s), nil
}

// MonthOf returns the month containing t in the given location.
func MonthOf(t time.Time, loc *time.Location) Month {
	if loc == nil {
		loc = time.UTC
	}
	return Month(t.In(loc).Format("2006-01"))
}

// String returns the YYYY-MM form.
func (m Month) String() string {
	return string(m)
}

// Settlement is the monthly payout aggregate for one reviewer.
type Settlement struct {
	ID          uuid.UUID `json:"id"`
	ReviewerID  uuid.UUID `json:"reviewer_id"`
	Month       Month     `json:"month"`
	TaskCount   int       `json:"task_count"`
	TotalAmount int64     `json:"total_amount"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SettlementView is a settlement row joined with its reviewer for admin listings.
type SettlementView struct {
	Settlement
	ReviewerUsername string `json:"reviewer_username"`
	ReviewerNickname string `json:"reviewer_nickname"`
}

// PricingPolicy decides how much an approved task pays.
type PricingPolicy struct {
	// CommentRate is the flat amount paid for comment tasks.
	CommentRate int64
	// DefaultUnitPrice applies when a reviewer has no unit price configured.
	DefaultUnitPrice int64
}

// DefaultPricing matches the rates the business has always used.
var DefaultPricing = PricingPolicy{CommentRate: 1000, DefaultUnitPrice: 3000}

// AmountFor returns the settlement amount for a task of the given type done
// by a reviewer with the given unit price.
func (p PricingPolicy) AmountFor(taskType TaskType, unitPrice int64) int64 {
	if taskType == TaskTypeComment {
		return p.CommentRate
	}
	if unitPrice <= 0 {
		return p.DefaultUnitPrice
	}
	return unitPrice
}

// Approval is the settlement-relevant projection of an approved task.
type Approval struct {
	TaskID     uuid.UUID
	ReviewerID uuid.UUID
	Amount     int64
	ApprovedAt time.Time
}

// SettlementKey identifies one settlement row.
type SettlementKey struct {
	ReviewerID uuid.UUID
	Month      Month
}

// SettlementTotals holds the count and sum for one settlement key.
type SettlementTotals struct {
	TaskCount   int   `json:"task_count"`
	TotalAmount int64 `json:"total_amount"`
}

// AggregateApprovals recomputes settlement totals from scratch by grouping
// approvals by reviewer and month of approval in loc.
func AggregateApprovals(approvals []Approval, loc *time.Location) map[SettlementKey]SettlementTotals {
	totals := make(map[SettlementKey]SettlementTotals)
	for _, a := range approvals {
		key := SettlementKey{ReviewerID: a.ReviewerID, Month: MonthOf(a.ApprovedAt, loc)}
		t := totals[key]
		t.TaskCount++
		t.TotalAmount += a.Amount
		totals[key] = t
	}
	return totals
}

// SettlementDrift reports a mismatch between a stored settlement row and the
// totals recomputed from approved tasks.
type SettlementDrift struct {
	ReviewerID uuid.UUID        `json:"reviewer_id"`
	Month      Month            `json:"month"`
	Stored     SettlementTotals `json:"stored"`
	Expected   SettlementTotals `json:"expected"`
}

// DiffSettlements compares stored settlement rows with recomputed totals.
// The result is sorted by month then reviewer ID.
func DiffSettlements(stored []*Settlement, expected map[SettlementKey]SettlementTotals) []SettlementDrift {
	seen := make(map[SettlementKey]bool, len(stored))
	var drifts []SettlementDrift

	for _, s := range stored {
		key := SettlementKey{ReviewerID: s.ReviewerID, Month: s.Month}
		seen[key] = true
		got := SettlementTotals{TaskCount: s.TaskCount, TotalAmount: s.TotalAmount}
		want := expected[key]
		if got != want {
			drifts = append(drifts, SettlementDrift{
				ReviewerID: s.ReviewerID,
				Month:      s.Month,
				Stored:     got,
				Expected:   want,
			})
		}
	}

	for key, want := range expected {
		if seen[key] {
			continue
		}
		drifts = append(drifts, SettlementDrift{
			ReviewerID: key.ReviewerID,
			Month:      key.Month,
			Expected:   want,
		})
	}

	sort.Slice(drifts, func(i, j int) bool {
		if drifts[i].Month != drifts[j].Month {
			return drifts[i].Month < drifts[j].Month
		}
		return drifts[i].ReviewerID.String() < drifts[j].ReviewerID.String()
	})
	return drifts
}

// ApprovedTask is an approved task as shown in a reviewer's settlement pages.
type ApprovedTask struct {
	ID               uuid.UUID `json:"id"`
	TaskType         TaskType  `json:"task_type"`
	CafeName         string    `json:"cafe_name,omitempty"`
	Link             string    `json:"link,omitempty"`
	SubmitLink       string    `json:"submit_link,omitempty"`
	SettlementAmount int64     `json:"settlement_amount"`
	ApprovedAt       time.Time `json:"approved_at"`
}

// StatusCounts maps each task status to the number of tasks in it.
type StatusCounts map[TaskStatus]int

// Total returns the number of tasks across all statuses.
func (c StatusCounts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// SettlementSummary is the reviewer's my-page overview.
type SettlementSummary struct {
	Counts              StatusCounts    `json:"counts"`
	TotalTasks          int             `json:"total_tasks"`
	Settlements         []*Settlement   `json:"settlements"`
	CurrentMonth        Month           `json:"current_month"`
	CurrentMonthTotal   int64           `json:"current_month_total"`
	RecentApprovedTasks []*ApprovedTask `json:"recent_approved_tasks"`
}

// SettlementDetail is one month of a reviewer's settlement.
type SettlementDetail struct {
	Month      Month           `json:"month"`
	Settlement *Settlement     `json:"settlement"`
	Tasks      []*ApprovedTask `json:"tasks"`
}

// Validate checks the settlement's invariants.
func (s *Settlement) Validate() error {
	if s.ReviewerID == uuid.Nil {
		return NewValidationError("reviewer_id", "is required", ErrInvalidID)
	}
	if _, err := ParseMonth(string(s.Month)); err != nil {
		return err
	}
	if s.TaskCount < 0 || s.TotalAmount < 0 {
		return NewValidationError("settlement", fmt.Sprintf("negative totals for %s", s.Month), nil)
	}
	return nil
}
