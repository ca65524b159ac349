// internal/catalog/domain.go
package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"courtdesk/internal/schedule"
)

var (
	ErrNotFound    = errors.New("plan not found")
	ErrInvalidPlan = errors.New("invalid plan")
	ErrDuplicate   = errors.New("plan already exists")
)

func IsErrNotFound(err error) bool    { return errors.Is(err, ErrNotFound) }
func IsErrInvalidPlan(err error) bool { return errors.Is(err, ErrInvalidPlan) }

// BenefitType says whether a plan grants a pool of sessions or a discount.
type BenefitType string

const (
	BenefitSessions BenefitType = "sessions"
	BenefitDiscount BenefitType = "discount"
)

func (b BenefitType) Valid() bool {
	return b == BenefitSessions || b == BenefitDiscount
}

// Plan is a purchasable membership definition. Plans are not edited after
// they are published; they can only be deactivated.
type Plan struct {
	ID               string                     `json:"id"`
	OrganizationID   int64                      `json:"organizationId"`
	Name             string                     `json:"planName"`
	Description      string                     `json:"description,omitempty"`
	BenefitType      BenefitType                `json:"benefitType"`
	BenefitValue     int                        `json:"benefitValue"`
	ValidForDays     int                        `json:"validForDays"`
	Price            int64                      `json:"price"`
	IsActive         bool                       `json:"isActive"`
	TimeRestrictions *schedule.TimeRestrictions `json:"timeRestrictions,omitempty"`
	CreatedAt        time.Time                  `json:"createdAt"`
}

// Validate checks the benefit, validity and price rules of a plan.
func (p *Plan) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPlan)
	}
	switch p.BenefitType {
	case BenefitSessions:
		if p.BenefitValue <= 0 {
			return fmt.Errorf("%w: session count must be positive, got %d", ErrInvalidPlan, p.BenefitValue)
		}
	case BenefitDiscount:
		if p.BenefitValue < 1 || p.BenefitValue > 100 {
			return fmt.Errorf("%w: discount must be within 1..100, got %d", ErrInvalidPlan, p.BenefitValue)
		}
	default:
		return fmt.Errorf("%w: unknown benefit type %q", ErrInvalidPlan, p.BenefitType)
	}
	if p.ValidForDays <= 0 {
		return fmt.Errorf("%w: validForDays must be positive, got %d", ErrInvalidPlan, p.ValidForDays)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidPlan)
	}
	if err := p.TimeRestrictions.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}
	return nil
}
