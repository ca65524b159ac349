package store

import (
	"context"
	"fmt"
	"sync"

	"courtdesk/internal/catalog"
	"courtdesk/internal/membership"

	"github.com/google/uuid"
)

// MemoryStore keeps plans and the membership ledger in process memory. It
// implements catalog.Repository and membership.Repository. Returned values
// are copies.
type MemoryStore struct {
	mu          sync.RWMutex
	plans       map[string]*catalog.Plan
	planOrder   []string
	memberships map[uuid.UUID]*membership.ClientMembership
	order       []uuid.UUID
	txs         []*membership.Transaction
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		plans:       make(map[string]*catalog.Plan),
		memberships: make(map[uuid.UUID]*membership.ClientMembership),
	}
}

func clonePlan(p *catalog.Plan) *catalog.Plan {
	c := *p
	c.TimeRestrictions = p.TimeRestrictions.Clone()
	return &c
}

func (s *MemoryStore) InsertPlan(_ context.Context, p *catalog.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.plans[p.ID]; ok {
		return fmt.Errorf("%w: %s", catalog.ErrDuplicate, p.ID)
	}
	s.plans[p.ID] = clonePlan(p)
	s.planOrder = append(s.planOrder, p.ID)
	return nil
}

func (s *MemoryStore) GetPlan(_ context.Context, id string) (*catalog.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.plans[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", catalog.ErrNotFound, id)
	}
	return clonePlan(p), nil
}

func (s *MemoryStore) ListPlans(_ context.Context, activeOnly bool) ([]*catalog.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*catalog.Plan, 0, len(s.planOrder))
	for _, id := range s.planOrder {
		p := s.plans[id]
		if activeOnly && !p.IsActive {
			continue
		}
		out = append(out, clonePlan(p))
	}
	return out, nil
}

func (s *MemoryStore) SetPlanActive(_ context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plans[id]
	if !ok {
		return fmt.Errorf("%w: %s", catalog.ErrNotFound, id)
	}
	p.IsActive = active
	return nil
}

func (s *MemoryStore) GetMembership(_ context.Context, id uuid.UUID) (*membership.ClientMembership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.memberships[id]
	if !ok {
		return nil, fmt.Errorf("%w: membership %s", membership.ErrNotFound, id)
	}
	return m.Clone(), nil
}

func (s *MemoryStore) ActiveMembership(_ context.Context, clientID string) (*membership.ClientMembership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.order) - 1; i >= 0; i-- {
		m := s.memberships[s.order[i]]
		if m.ClientID == clientID && m.Status == membership.StatusActive {
			return m.Clone(), nil
		}
	}
	return nil, fmt.Errorf("%w: no active membership for client %s", membership.ErrNotFound, clientID)
}

// ListMemberships returns the client's memberships, newest first.
func (s *MemoryStore) ListMemberships(_ context.Context, clientID string) ([]*membership.ClientMembership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*membership.ClientMembership
	for i := len(s.order) - 1; i >= 0; i-- {
		if m := s.memberships[s.order[i]]; m.ClientID == clientID {
			out = append(out, m.Clone())
		}
	}
	return out, nil
}

// ListAllMemberships returns every membership in creation order.
func (s *MemoryStore) ListAllMemberships(_ context.Context) ([]*membership.ClientMembership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*membership.ClientMembership, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.memberships[id].Clone())
	}
	return out, nil
}

func (s *MemoryStore) ClientTransactions(_ context.Context, clientID string) ([]*membership.Transaction, error) {
	return s.filterTransactions(func(t *membership.Transaction) bool { return t.ClientID == clientID }), nil
}

func (s *MemoryStore) MembershipTransactions(_ context.Context, membershipID uuid.UUID) ([]*membership.Transaction, error) {
	return s.filterTransactions(func(t *membership.Transaction) bool { return t.MembershipID == membershipID }), nil
}

func (s *MemoryStore) filterTransactions(keep func(*membership.Transaction) bool) []*membership.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*membership.Transaction
	for _, t := range s.txs {
		if keep(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}

func (s *MemoryStore) CreateMembership(_ context.Context, m *membership.ClientMembership, tx *membership.Transaction) ([]*membership.ClientMembership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.memberships[m.ID]; ok {
		return nil, fmt.Errorf("%w: membership %s already exists", membership.ErrConcurrencyConflict, m.ID)
	}

	var superseded []*membership.ClientMembership
	for _, id := range s.order {
		old := s.memberships[id]
		if old.ClientID != m.ClientID || old.Status != membership.StatusActive {
			continue
		}
		old.Status = membership.StatusExpired
		old.Version++
		old.UpdatedAt = m.CreatedAt
		superseded = append(superseded, old.Clone())
	}

	s.memberships[m.ID] = m.Clone()
	s.order = append(s.order, m.ID)
	s.txs = append(s.txs, tx.Clone())
	return superseded, nil
}

func (s *MemoryStore) UpdateMembership(_ context.Context, m *membership.ClientMembership, expectedVersion int, tx *membership.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.memberships[m.ID]
	if !ok {
		return fmt.Errorf("%w: membership %s", membership.ErrNotFound, m.ID)
	}
	if cur.Version != expectedVersion {
		return fmt.Errorf("%w: membership %s at version %d, expected %d",
			membership.ErrConcurrencyConflict, m.ID, cur.Version, expectedVersion)
	}
	s.memberships[m.ID] = m.Clone()
	if tx != nil {
		s.txs = append(s.txs, tx.Clone())
	}
	return nil
}
