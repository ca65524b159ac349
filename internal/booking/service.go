package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"courtdesk/internal/membership"
	"courtdesk/internal/pricing"
	"courtdesk/internal/schedule"

	"github.com/google/uuid"
)

// MaxSuggestions caps the alternative times offered for a rejected slot.
const MaxSuggestions = 6

var ErrInvalidDraft = errors.New("invalid booking draft")

// Ledger is the part of the membership ledger a booking needs.
type Ledger interface {
	GetActiveMembership(ctx context.Context, clientID string) (*membership.ClientMembership, error)
	DeductSession(ctx context.Context, membershipID uuid.UUID, bookingID string) (*membership.Transaction, error)
	Now() time.Time
}

// Draft is a prospective booking offered by the calendar.
type Draft struct {
	ClientID        string           `json:"clientId"`
	CourtID         string           `json:"courtId,omitempty"`
	Date            schedule.Date    `json:"date"`
	Time            *schedule.Clock  `json:"time"`
	DurationMinutes int              `json:"durationMinutes,omitempty"`
	BasePrice       int64            `json:"basePrice"`
	CandidateSlots  []schedule.Clock `json:"candidateSlots,omitempty"`
}

func (d Draft) validate() error {
	var problems []string
	if strings.TrimSpace(d.ClientID) == "" {
		problems = append(problems, "clientId is required")
	}
	if d.Date.IsZero() {
		problems = append(problems, "date is required")
	}
	switch {
	case d.Time == nil:
		problems = append(problems, "time is required")
	case !d.Time.Valid() || *d.Time >= schedule.NewClock(24, 0):
		problems = append(problems, "time must be between 00:00 and 23:59")
	}
	if d.BasePrice < 0 {
		problems = append(problems, "basePrice must not be negative")
	}
	if d.DurationMinutes < 0 {
		problems = append(problems, "durationMinutes must not be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDraft, strings.Join(problems, "; "))
	}
	return nil
}

// Result is a quote for a draft together with the membership check behind it.
type Result struct {
	Quote          pricing.Quote                `json:"quote"`
	Membership     *membership.ClientMembership `json:"membership,omitempty"`
	Validation     Validation                   `json:"validation"`
	SuggestedTimes []schedule.Clock             `json:"suggestedTimes,omitempty"`
	// Transaction is set by Confirm when a session was deducted.
	Transaction *membership.Transaction `json:"transaction,omitempty"`
}

type Service interface {
	// Quote prices a draft without touching the ledger.
	Quote(ctx context.Context, d Draft) (*Result, error)
	// Confirm re-quotes d and deducts one session when the booking is paid
	// by a session membership. A failed deduction means the booking must
	// not be created.
	Confirm(ctx context.Context, d Draft, bookingID string) (*Result, error)
}

type service struct {
	ledger Ledger
	logger *slog.Logger
}

func NewService(ledger Ledger, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{ledger: ledger, logger: logger}
}

func (s *service) Quote(ctx context.Context, d Draft) (*Result, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	m, err := s.ledger.GetActiveMembership(ctx, d.ClientID)
	if err != nil {
		return nil, fmt.Errorf("resolve membership: %w", err)
	}
	return evaluate(d, m, s.ledger.Now()), nil
}

func (s *service) Confirm(ctx context.Context, d Draft, bookingID string) (*Result, error) {
	if strings.TrimSpace(bookingID) == "" {
		return nil, fmt.Errorf("%w: bookingId is required", ErrInvalidDraft)
	}
	res, err := s.Quote(ctx, d)
	if err != nil {
		return nil, err
	}
	if !res.Quote.ConsumesSession() {
		return res, nil
	}

	tx, err := s.ledger.DeductSession(ctx, res.Membership.ID, bookingID)
	if err != nil {
		s.logger.WarnContext(ctx, "booking confirmation rejected",
			"booking_id", bookingID,
			"client_id", d.ClientID,
			"membership_id", res.Membership.ID,
			"error", err,
		)
		return nil, err
	}
	res.Transaction = tx
	if res.Membership.RemainingSessions != nil && tx.SessionsAfter != nil {
		res.Membership.RemainingSessions = intPtr(*tx.SessionsAfter)
		res.Membership.Version = tx.Version
	}

	s.logger.InfoContext(ctx, "booking confirmed with membership session",
		"booking_id", bookingID,
		"client_id", d.ClientID,
		"court_id", d.CourtID,
		"membership_id", res.Membership.ID,
	)
	return res, nil
}

// evaluate is the pure part of Quote. d must have passed validate.
func evaluate(d Draft, m *membership.ClientMembership, now time.Time) *Result {
	at := *d.Time
	res := &Result{
		Quote:      pricing.Calculate(d.BasePrice, m, d.Date.At(at, now.Location()), now),
		Membership: m,
		Validation: Validate(m, d.Date, at, now),
	}
	if !res.Validation.IsValid && res.Validation.Reason.TimeRestricted() && len(d.CandidateSlots) > 0 {
		times := SuggestTimes(m, d.Date, d.CandidateSlots)
		if len(times) > MaxSuggestions {
			times = times[:MaxSuggestions]
		}
		if len(times) > 0 {
			res.SuggestedTimes = times
		}
	}
	return res
}

func intPtr(v int) *int { return &v }
