// internal/catalog/service.go
package catalog

import (
	"context"
)

// Service defines the interface for the membership plan catalog.
type Service interface {
	AddPlan(ctx context.Context, p Plan) (*Plan, error)
	GetPlan(ctx context.Context, id string) (*Plan, error)
	ListPlans(ctx context.Context, activeOnly bool) ([]*Plan, error)
	DeactivatePlan(ctx context.Context, id string) error
	// Seed inserts the given plans, skipping ids that already exist.
	Seed(ctx context.Context, plans []Plan) (int, error)
}

// Repository stores plans. Implementations return ErrNotFound for unknown
// ids and ErrDuplicate when inserting an id twice.
type Repository interface {
	InsertPlan(ctx context.Context, p *Plan) error
	GetPlan(ctx context.Context, id string) (*Plan, error)
	ListPlans(ctx context.Context, activeOnly bool) ([]*Plan, error)
	SetPlanActive(ctx context.Context, id string, active bool) error
}
