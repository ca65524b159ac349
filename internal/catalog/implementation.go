// internal/catalog/implementation.go
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// service implements the Service interface.
type service struct {
	repo   Repository
	orgID  int64
	now    func() time.Time
	logger *slog.Logger
}

// NewService creates a new catalog service for one organization.
func NewService(repo Repository, orgID int64, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		repo:   repo,
		orgID:  orgID,
		now:    time.Now,
		logger: logger.With("component", "catalog"),
	}
}

// AddPlan validates and publishes a new plan.
func (s *service) AddPlan(ctx context.Context, p Plan) (*Plan, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.OrganizationID == 0 {
		p.OrganizationID = s.orgID
	}
	p.IsActive = true
	p.TimeRestrictions = p.TimeRestrictions.Clone()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now().UTC()
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.InsertPlan(ctx, &p); err != nil {
		return nil, fmt.Errorf("insert plan: %w", err)
	}

	s.logger.InfoContext(ctx, "plan published",
		"plan_id", p.ID,
		"plan_name", p.Name,
		"benefit_type", p.BenefitType,
		"benefit_value", p.BenefitValue,
	)
	return &p, nil
}

// GetPlan retrieves a plan by id, active or not.
func (s *service) GetPlan(ctx context.Context, id string) (*Plan, error) {
	p, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get plan %s: %w", id, err)
	}
	return p, nil
}

func (s *service) ListPlans(ctx context.Context, activeOnly bool) ([]*Plan, error) {
	plans, err := s.repo.ListPlans(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

// DeactivatePlan withdraws a plan from sale. Memberships already bought
// from it are unaffected.
func (s *service) DeactivatePlan(ctx context.Context, id string) error {
	if err := s.repo.SetPlanActive(ctx, id, false); err != nil {
		return fmt.Errorf("deactivate plan %s: %w", id, err)
	}
	s.logger.InfoContext(ctx, "plan deactivated", "plan_id", id)
	return nil
}

func (s *service) Seed(ctx context.Context, plans []Plan) (int, error) {
	added := 0
	for _, p := range plans {
		if _, err := s.repo.GetPlan(ctx, p.ID); err == nil {
			continue
		} else if !IsErrNotFound(err) {
			return added, fmt.Errorf("seed plan %s: %w", p.ID, err)
		}
		if _, err := s.AddPlan(ctx, p); err != nil {
			return added, fmt.Errorf("seed plan %s: %w", p.ID, err)
		}
		added++
	}
	return added, nil
}
