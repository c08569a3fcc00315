package domain

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UnassignedRegion labels cafes without a region in exports.
const UnassignedRegion = "미지정"

// Permissions are the posting rules a cafe imposes on tasks.
type Permissions struct {
	AllowReview       bool `json:"allow_review"`
	AllowBusinessName bool `json:"allow_business_name"`
	AllowAfterPost    bool `json:"allow_after_post"`
	RequireApproval   bool `json:"require_approval"`
}

// DefaultPermissions allows everything, matching new cafe defaults.
var DefaultPermissions = Permissions{
	AllowReview:       true,
	AllowBusinessName: true,
	AllowAfterPost:    true,
	RequireApproval:   true,
}

// Cafe is a venue where reviewers post.
type Cafe struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Region      string      `json:"region,omitempty"`
	Link        string      `json:"cafe_link"`
	Permissions Permissions `json:"permissions"`
	Notes       string      `json:"notes,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// NewCafe creates a cafe. An empty name is derived from the link.
func NewCafe(name, region, link string, perms Permissions, notes string, now time.Time) (*Cafe, error) {
	link = strings.TrimSpace(link)
	name = strings.TrimSpace(name)
	if name == "" {
		name = DeriveCafeName(link)
	}
	c := &Cafe{
		ID:          uuid.New(),
		Name:        name,
		Region:      strings.TrimSpace(region),
		Link:        link,
		Permissions: perms,
		Notes:       strings.TrimSpace(notes),
		CreatedAt:   now.UTC(),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the cafe's required fields.
func (c *Cafe) Validate() error {
	if c.ID == uuid.Nil {
		return NewValidationError("id", "is required", ErrInvalidID)
	}
	if c.Link == "" {
		return NewValidationError("cafe_link", "is required", nil)
	}
	if c.Name == "" {
		return NewValidationError("name", "is required", nil)
	}
	return nil
}

// DeriveCafeName picks a display name for a cafe link: the last non-empty
// path segment, else the host, else the link itself.
func DeriveCafeName(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return link
	}
	segments := strings.Split(u.Path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if s := strings.TrimSpace(segments[i]); s != "" {
			return s
		}
	}
	return u.Hostname()
}

// Permits checks a task type and business name against the cafe's rules.
func (c *Cafe) Permits(taskType TaskType, businessName string) error {
	if taskType == TaskTypeReview && !c.Permissions.AllowReview {
		return NewValidationError("task_type", "this cafe does not allow reviews", nil)
	}
	if taskType == TaskTypeAfterPost && !c.Permissions.AllowAfterPost {
		return NewValidationError("task_type", "this cafe does not allow after posts", nil)
	}
	if strings.TrimSpace(businessName) != "" && !c.Permissions.AllowBusinessName {
		return NewValidationError("business_name", "this cafe does not allow business names", nil)
	}
	return nil
}

// RegionOrDefault returns the region or the unassigned label.
func (c *Cafe) RegionOrDefault() string {
	if c.Region == "" {
		return UnassignedRegion
	}
	return c.Region
}
