// internal/membership/service.go
package membership

import (
	"context"
	"time"

	"courtdesk/internal/catalog"
	"courtdesk/internal/schedule"

	"github.com/google/uuid"
)

// Service defines the interface for the membership ledger.
type Service interface {
	// GetActiveMembership returns the client's active membership, or nil
	// when there is none.
	GetActiveMembership(ctx context.Context, clientID string) (*ClientMembership, error)
	GetMembership(ctx context.Context, id uuid.UUID) (*ClientMembership, error)
	ListMemberships(ctx context.Context, clientID string) ([]*ClientMembership, error)

	PurchaseMembership(ctx context.Context, clientID, planID string, purchaseDate schedule.Date) (*ClientMembership, error)
	PurchaseCustom(ctx context.Context, clientID string, plan CustomPlan, purchaseDate schedule.Date) (*ClientMembership, error)
	DeductSession(ctx context.Context, membershipID uuid.UUID, bookingID string) (*Transaction, error)
	AdjustBalance(ctx context.Context, membershipID uuid.UUID, newBalance int, reason, adminID string) (*Transaction, error)

	// GetMembershipHistory returns every transaction of the client's
	// memberships, newest first.
	GetMembershipHistory(ctx context.Context, clientID string) ([]*Transaction, error)
	ClientSummary(ctx context.Context, clientID string) (*Summary, error)

	// Now returns the current time in the club's location.
	Now() time.Time
}

// Repository is the ledger's storage port. Each write is atomic: the
// membership rows and the transaction are committed together or not at all.
type Repository interface {
	GetMembership(ctx context.Context, id uuid.UUID) (*ClientMembership, error)
	// ActiveMembership returns ErrNotFound when the client has none.
	ActiveMembership(ctx context.Context, clientID string) (*ClientMembership, error)
	ListMemberships(ctx context.Context, clientID string) ([]*ClientMembership, error)
	ListAllMemberships(ctx context.Context) ([]*ClientMembership, error)

	// ClientTransactions and MembershipTransactions return entries in
	// append order.
	ClientTransactions(ctx context.Context, clientID string) ([]*Transaction, error)
	MembershipTransactions(ctx context.Context, membershipID uuid.UUID) ([]*Transaction, error)

	// CreateMembership expires every active membership of m.ClientID, bumping
	// their versions, then inserts m and tx. It returns the superseded rows.
	CreateMembership(ctx context.Context, m *ClientMembership, tx *Transaction) ([]*ClientMembership, error)

	// UpdateMembership stores m if the stored version still equals
	// expectedVersion and appends tx. It returns ErrConcurrencyConflict
	// otherwise.
	UpdateMembership(ctx context.Context, m *ClientMembership, expectedVersion int, tx *Transaction) error
}

// PlanSource resolves catalog plans at purchase time.
type PlanSource interface {
	GetPlan(ctx context.Context, id string) (*catalog.Plan, error)
}
