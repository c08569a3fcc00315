package domain

import (
	"strings"

	"github.com/google/uuid"
)

// TargetKind names the variant of a Target.
type TargetKind string

// Target kinds
const (
	TargetKindCafe   TargetKind = "cafe"
	TargetKindLink   TargetKind = "link"
	TargetKindRegion TargetKind = "region"
)

// Target is where a task is to be carried out. It is a closed sum type:
// CafeTarget, LinkTarget and RegionTarget are its only variants.
type Target interface {
	Kind() TargetKind
	isTarget()
}

// CafeTarget points at a registered cafe.
type CafeTarget struct {
	CafeID uuid.UUID
}

// LinkTarget points at a link that is not registered as a cafe.
type LinkTarget struct {
	Link string
}

// RegionTarget leaves the venue to the reviewer within a region.
type RegionTarget struct {
	Region string
}

func (CafeTarget) Kind() TargetKind   { return TargetKindCafe }
func (LinkTarget) Kind() TargetKind   { return TargetKindLink }
func (RegionTarget) Kind() TargetKind { return TargetKindRegion }

func (CafeTarget) isTarget()   {}
func (LinkTarget) isTarget()   {}
func (RegionTarget) isTarget() {}

// NewTarget builds a Target from the three mutually exclusive request
// fields. Exactly one of them must be provided.
func NewTarget(cafeID *uuid.UUID, link string, regionArbitrary bool, region string) (Target, error) {
	link = strings.TrimSpace(link)
	region = strings.TrimSpace(region)

	provided := 0
	if cafeID != nil {
		provided++
	}
	if link != "" {
		provided++
	}
	if regionArbitrary {
		provided++
	}
	if provided != 1 {
		return nil, NewValidationError("target", "exactly one of cafe_id, cafe_link or is_region_arbitrary is required", nil)
	}

	var target Target
	switch {
	case cafeID != nil:
		target = CafeTarget{CafeID: *cafeID}
	case link != "":
		target = LinkTarget{Link: link}
	default:
		target = RegionTarget{Region: region}
	}
	if err := ValidateTarget(target); err != nil {
		return nil, err
	}
	return target, nil
}

// ValidateTarget checks the payload of a target variant.
func ValidateTarget(t Target) error {
	switch v := t.(type) {
	case CafeTarget:
		if v.CafeID == uuid.Nil {
			return NewValidationError("cafe_id", "is required", ErrInvalidID)
		}
	case LinkTarget:
		if strings.TrimSpace(v.Link) == "" {
			return NewValidationError("cafe_link", "is required", nil)
		}
	case RegionTarget:
		if strings.TrimSpace(v.Region) == "" {
			return NewValidationError("region_arbitrary", "a region is required for region tasks", nil)
		}
	case nil:
		return NewValidationError("target", "is required", nil)
	default:
		return NewValidationError("target", "unsupported target", nil)
	}
	return nil
}
