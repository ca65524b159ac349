// internal/membership/implementation.go
package membership

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"courtdesk/internal/catalog"
	"courtdesk/internal/events"
	"courtdesk/internal/lock"
	"courtdesk/internal/schedule"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

// service implements the Service interface.
type service struct {
	repo      Repository
	plans     PlanSource
	locker    lock.Locker
	publisher events.Publisher
	logger    *slog.Logger
	tracer    trace.Tracer
	metrics   ledgerMetrics
	loc       *time.Location
	now       func() time.Time
	orgID     int64
}

type ledgerMetrics struct {
	purchases   metric.Int64Counter
	deductions  metric.Int64Counter
	adjustments metric.Int64Counter
	conflicts   metric.Int64Counter
}

// NewService creates a new membership ledger service.
func NewService(repo Repository, plans PlanSource, opts ...Option) Service {
	s := &service{
		repo:   repo,
		plans:  plans,
		locker: lock.NewKeyedMutex(),
		logger: slog.Default(),
		tracer: otel.Tracer("courtdesk/membership"),
		loc:    time.UTC,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.publisher == nil {
		s.publisher = events.NewLogPublisher(s.logger)
	}
	s.logger = s.logger.With("component", "membership")
	s.metrics = newLedgerMetrics(otel.Meter("courtdesk/membership"))
	return s
}

func newLedgerMetrics(meter metric.Meter) ledgerMetrics {
	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		if err != nil {
			return noop.Int64Counter{}
		}
		return c
	}
	return ledgerMetrics{
		purchases:   counter("membership.purchases", "Memberships purchased"),
		deductions:  counter("membership.deductions", "Sessions deducted by bookings"),
		adjustments: counter("membership.adjustments", "Manual balance adjustments"),
		conflicts:   counter("membership.conflicts", "Writes rejected by a concurrent change"),
	}
}

func (s *service) Now() time.Time {
	return s.now().In(s.loc)
}

func membershipKey(id uuid.UUID) string { return "membership:" + id.String() }
func clientKey(id string) string        { return "client:" + id }

// GetActiveMembership returns nil, nil when the client has no active membership.
func (s *service) GetActiveMembership(ctx context.Context, clientID string) (*ClientMembership, error) {
	m, err := s.repo.ActiveMembership(ctx, clientID)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, NewError(err, "get active membership")
	}
	return m, nil
}

func (s *service) GetMembership(ctx context.Context, id uuid.UUID) (*ClientMembership, error) {
	m, err := s.repo.GetMembership(ctx, id)
	if err != nil {
		return nil, NewError(err, fmt.Sprintf("get membership %s", id))
	}
	return m, nil
}

func (s *service) ListMemberships(ctx context.Context, clientID string) ([]*ClientMembership, error) {
	ms, err := s.repo.ListMemberships(ctx, clientID)
	if err != nil {
		return nil, NewError(err, "list memberships")
	}
	return ms, nil
}

// PurchaseMembership sells a catalog plan to a client, superseding the
// client's current active membership.
func (s *service) PurchaseMembership(ctx context.Context, clientID, planID string, purchaseDate schedule.Date) (*ClientMembership, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, NewError(fmt.Errorf("%w: client id is required", ErrInvalidInput), "purchase membership")
	}
	plan, err := s.plans.GetPlan(ctx, planID)
	if err != nil {
		if catalog.IsErrNotFound(err) {
			return nil, NewError(fmt.Errorf("%w: plan %s", ErrNotFound, planID), "purchase membership")
		}
		return nil, NewError(err, "purchase membership")
	}
	if !plan.IsActive {
		return nil, NewError(fmt.Errorf("%w: plan %s is no longer offered", ErrInvalidInput, planID), "purchase membership")
	}
	return s.purchase(ctx, clientID, plan, purchaseDate)
}

// PurchaseCustom registers a membership from an ad-hoc plan.
func (s *service) PurchaseCustom(ctx context.Context, clientID string, custom CustomPlan, purchaseDate schedule.Date) (*ClientMembership, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, NewError(fmt.Errorf("%w: client id is required", ErrInvalidInput), "purchase custom membership")
	}
	plan := &catalog.Plan{
		ID:               CustomPlanID,
		OrganizationID:   s.orgID,
		Name:             custom.Name,
		BenefitType:      custom.BenefitType,
		BenefitValue:     custom.BenefitValue,
		ValidForDays:     custom.ValidForDays,
		Price:            custom.Price,
		IsActive:         true,
		TimeRestrictions: custom.TimeRestrictions,
	}
	if err := plan.Validate(); err != nil {
		return nil, NewError(fmt.Errorf("%w: %v", ErrInvalidInput, err), "purchase custom membership")
	}
	return s.purchase(ctx, clientID, plan, purchaseDate)
}

func (s *service) purchase(ctx context.Context, clientID string, plan *catalog.Plan, purchaseDate schedule.Date) (*ClientMembership, error) {
	ctx, span := s.tracer.Start(ctx, "membership.purchase",
		trace.WithAttributes(
			attribute.String("client.id", clientID),
			attribute.String("plan.id", plan.ID),
		),
	)
	defer span.End()

	if purchaseDate.IsZero() {
		purchaseDate = schedule.DateOf(s.Now())
	}

	unlock, err := s.locker.Lock(ctx, clientKey(clientID))
	if err != nil {
		span.RecordError(err)
		return nil, NewError(err, "purchase membership")
	}
	defer unlock()

	now := s.now().UTC()
	orgID := plan.OrganizationID
	if orgID == 0 {
		orgID = s.orgID
	}
	m := &ClientMembership{
		ID:               uuid.New(),
		ClientID:         clientID,
		PlanID:           plan.ID,
		OrganizationID:   orgID,
		Name:             plan.Name,
		BenefitType:      plan.BenefitType,
		PurchasePrice:    plan.Price,
		PurchasedDate:    purchaseDate,
		ExpiresDate:      purchaseDate.AddDays(plan.ValidForDays),
		Status:           StatusActive,
		TimeRestrictions: plan.TimeRestrictions.Clone(),
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	tx := &Transaction{
		ID:           uuid.New(),
		MembershipID: m.ID,
		ClientID:     clientID,
		Type:         TransactionPurchase,
		Amount:       plan.Price,
		Version:      m.Version,
		Timestamp:    now,
		Notes:        "Purchased " + plan.Name,
	}
	switch plan.BenefitType {
	case catalog.BenefitSessions:
		m.RemainingSessions = intPtr(plan.BenefitValue)
		m.OriginalSessions = intPtr(plan.BenefitValue)
		tx.SessionsBefore = intPtr(0)
		tx.SessionsAfter = intPtr(plan.BenefitValue)
	case catalog.BenefitDiscount:
		m.DiscountPercentage = intPtr(plan.BenefitValue)
	}

	superseded, err := s.repo.CreateMembership(ctx, m, tx)
	if err != nil {
		s.recordFailure(ctx, span, err)
		return nil, NewError(err, "purchase membership")
	}

	s.metrics.purchases.Add(ctx, 1, metric.WithAttributes(attribute.String("benefit.type", string(m.BenefitType))))
	span.SetAttributes(
		attribute.String("membership.id", m.ID.String()),
		attribute.Int("superseded.count", len(superseded)),
	)
	s.logger.InfoContext(ctx, "membership purchased",
		"membership_id", m.ID,
		"client_id", clientID,
		"plan_id", plan.ID,
		"expires", m.ExpiresDate.String(),
		"superseded", len(superseded),
	)

	for _, old := range superseded {
		s.publish(ctx, events.MembershipSuperseded, now, SupersededEvent{
			MembershipID: old.ID,
			ClientID:     clientID,
			SupersededBy: m.ID,
		})
	}
	s.publish(ctx, events.MembershipPurchased, now, PurchasedEvent{
		MembershipID: m.ID,
		ClientID:     clientID,
		PlanID:       m.PlanID,
		Name:         m.Name,
		Benefit:      m.BenefitSummary(),
		Price:        m.PurchasePrice,
		ExpiresDate:  m.ExpiresDate,
	})

	return m.Clone(), nil
}

// DeductSession consumes one session for a confirmed booking. It never
// drives the balance below zero.
func (s *service) DeductSession(ctx context.Context, membershipID uuid.UUID, bookingID string) (*Transaction, error) {
	ctx, span := s.tracer.Start(ctx, "membership.deduct_session",
		trace.WithAttributes(
			attribute.String("membership.id", membershipID.String()),
			attribute.String("booking.id", bookingID),
		),
	)
	defer span.End()

	if strings.TrimSpace(bookingID) == "" {
		return nil, NewError(fmt.Errorf("%w: booking id is required", ErrInvalidInput), "deduct session")
	}

	unlock, err := s.locker.Lock(ctx, membershipKey(membershipID))
	if err != nil {
		span.RecordError(err)
		return nil, NewError(err, "deduct session")
	}
	defer unlock()

	m, err := s.repo.GetMembership(ctx, membershipID)
	if err != nil {
		return nil, NewError(err, "deduct session")
	}
	switch {
	case !m.IsSessionBased():
		return nil, NewError(ErrNotSessionBased, "deduct session")
	case m.Status != StatusActive:
		return nil, NewError(fmt.Errorf("%w: status is %s", ErrNotActive, m.Status), "deduct session")
	case m.Remaining() <= 0:
		return nil, NewError(ErrInsufficientSessions, "deduct session")
	}

	before := m.Remaining()
	after := before - 1
	tx, err := s.applyBalance(ctx, m, after, &Transaction{
		Type:      TransactionDeduction,
		BookingID: bookingID,
		Notes:     "Booking deduction - " + bookingID,
	})
	if err != nil {
		s.recordFailure(ctx, span, err)
		if IsConflict(err) {
			return nil, NewError(err, "deduct session: membership changed, refresh and retry")
		}
		return nil, NewError(err, "deduct session")
	}

	s.metrics.deductions.Add(ctx, 1)
	s.logger.InfoContext(ctx, "session deducted",
		"membership_id", m.ID,
		"client_id", m.ClientID,
		"booking_id", bookingID,
		"sessions_before", before,
		"sessions_after", after,
	)
	s.publish(ctx, events.MembershipSessionDeducted, tx.Timestamp, SessionDeductedEvent{
		MembershipID:   m.ID,
		ClientID:       m.ClientID,
		BookingID:      bookingID,
		SessionsBefore: before,
		SessionsAfter:  after,
	})
	return tx, nil
}

// AdjustBalance sets a session balance by hand. The reason is stored on the
// transaction.
func (s *service) AdjustBalance(ctx context.Context, membershipID uuid.UUID, newBalance int, reason, adminID string) (*Transaction, error) {
	ctx, span := s.tracer.Start(ctx, "membership.adjust_balance",
		trace.WithAttributes(
			attribute.String("membership.id", membershipID.String()),
			attribute.Int("balance.new", newBalance),
		),
	)
	defer span.End()

	reason = strings.TrimSpace(reason)
	switch {
	case newBalance < 0:
		return nil, NewError(fmt.Errorf("%w: balance must not be negative", ErrInvalidInput), "adjust balance")
	case reason == "":
		return nil, NewError(fmt.Errorf("%w: a reason is required", ErrInvalidInput), "adjust balance")
	case strings.TrimSpace(adminID) == "":
		return nil, NewError(fmt.Errorf("%w: admin id is required", ErrInvalidInput), "adjust balance")
	}

	unlock, err := s.locker.Lock(ctx, membershipKey(membershipID))
	if err != nil {
		span.RecordError(err)
		return nil, NewError(err, "adjust balance")
	}
	defer unlock()

	m, err := s.repo.GetMembership(ctx, membershipID)
	if err != nil {
		return nil, NewError(err, "adjust balance")
	}
	if !m.IsSessionBased() {
		return nil, NewError(ErrNotSessionBased, "adjust balance")
	}
	before := m.Remaining()
	switch {
	case newBalance == before:
		return nil, NewError(fmt.Errorf("%w: balance is already %d", ErrInvalidInput, before), "adjust balance")
	case newBalance > m.Original():
		return nil, NewError(fmt.Errorf("%w: balance %d exceeds the original %d sessions", ErrInvalidInput, newBalance, m.Original()), "adjust balance")
	}

	tx, err := s.applyBalance(ctx, m, newBalance, &Transaction{
		Type:    TransactionAdjustment,
		AdminID: adminID,
		Notes:   reason,
	})
	if err != nil {
		s.recordFailure(ctx, span, err)
		return nil, NewError(err, "adjust balance")
	}

	s.metrics.adjustments.Add(ctx, 1)
	s.logger.InfoContext(ctx, "balance adjusted",
		"membership_id", m.ID,
		"client_id", m.ClientID,
		"admin_id", adminID,
		"sessions_before", before,
		"sessions_after", newBalance,
	)
	s.publish(ctx, events.MembershipBalanceAdjusted, tx.Timestamp, BalanceAdjustedEvent{
		MembershipID:   m.ID,
		ClientID:       m.ClientID,
		AdminID:        adminID,
		Reason:         reason,
		SessionsBefore: before,
		SessionsAfter:  newBalance,
	})
	return tx, nil
}

// applyBalance writes the new balance and its transaction under the
// version read by the caller.
func (s *service) applyBalance(ctx context.Context, m *ClientMembership, balance int, tx *Transaction) (*Transaction, error) {
	now := s.now().UTC()
	expected := m.Version

	tx.ID = uuid.New()
	tx.MembershipID = m.ID
	tx.ClientID = m.ClientID
	tx.SessionsBefore = intPtr(m.Remaining())
	tx.SessionsAfter = intPtr(balance)
	tx.Version = expected + 1
	tx.Timestamp = now

	m.RemainingSessions = intPtr(balance)
	m.Version = expected + 1
	m.UpdatedAt = now

	if err := s.repo.UpdateMembership(ctx, m, expected, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *service) recordFailure(ctx context.Context, span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if IsConflict(err) {
		span.SetAttributes(attribute.Bool("conflict.detected", true))
		s.metrics.conflicts.Add(ctx, 1)
		s.logger.WarnContext(ctx, "ledger write lost a race", "error", err)
	}
}

func (s *service) GetMembershipHistory(ctx context.Context, clientID string) ([]*Transaction, error) {
	txs, err := s.repo.ClientTransactions(ctx, clientID)
	if err != nil {
		return nil, NewError(err, "get membership history")
	}
	return newestFirst(txs), nil
}

// newestFirst orders by timestamp, descending. Entries with equal timestamps
// keep reverse append order.
func newestFirst(txs []*Transaction) []*Transaction {
	out := slices.Clone(txs)
	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b *Transaction) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return out
}

func (s *service) ClientSummary(ctx context.Context, clientID string) (*Summary, error) {
	memberships, err := s.repo.ListMemberships(ctx, clientID)
	if err != nil {
		return nil, NewError(err, "client summary")
	}
	history, err := s.GetMembershipHistory(ctx, clientID)
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		ClientID:        clientID,
		MembershipCount: len(memberships),
		History:         history,
	}
	for _, m := range memberships {
		sum.TotalSpent += m.PurchasePrice
		if m.Status == StatusActive && sum.Active == nil {
			sum.Active = m
		}
	}
	for _, tx := range history {
		if tx.Type == TransactionDeduction {
			at := tx.Timestamp
			sum.LastUsedAt = &at
			break
		}
	}

	sum.Usability = UsabilityOf(sum.Active, s.Now())
	if a := sum.Active; a != nil {
		sum.BenefitSummary = a.BenefitSummary()
		sum.RestrictionSummary = a.TimeRestrictions.Describe()
		if a.IsSessionBased() && a.Original() > 0 {
			used := int64(a.Original() - a.Remaining())
			orig := int64(a.Original())
			sum.UtilizationPercent = int(roundDiv(used*100, orig))
			sum.RemainingValue = roundDiv(a.PurchasePrice*int64(a.Remaining()), orig)
		}
	}
	return sum, nil
}

// roundDiv divides non-negative a by positive b, rounding half up.
func roundDiv(a, b int64) int64 {
	return (a + b/2) / b
}

func (s *service) publish(ctx context.Context, routingKey string, at time.Time, data any) {
	payload, err := events.Encode(routingKey, at, data)
	if err == nil {
		err = s.publisher.Publish(ctx, routingKey, payload)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "failed to publish ledger event", "routing_key", routingKey, "error", err)
	}
}
