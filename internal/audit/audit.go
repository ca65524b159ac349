// internal/audit/audit.go
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"courtdesk/internal/membership"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Source is the read side of the ledger the auditor inspects.
type Source interface {
	ListAllMemberships(ctx context.Context) ([]*membership.ClientMembership, error)
	MembershipTransactions(ctx context.Context, membershipID uuid.UUID) ([]*membership.Transaction, error)
}

// Snapshot is the ledger state a check runs against.
type Snapshot struct {
	Memberships  []*membership.ClientMembership
	Transactions map[uuid.UUID][]*membership.Transaction
}

// Check is a named invariant over a snapshot.
type Check struct {
	Name        string
	Description string
	Run         func(*Snapshot) []Violation
}

// Violation is one broken invariant.
type Violation struct {
	Check        string     `json:"check"`
	ClientID     string     `json:"clientId,omitempty"`
	MembershipID *uuid.UUID `json:"membershipId,omitempty"`
	Detail       string     `json:"detail"`
}

// Report captures one audit run.
type Report struct {
	StartedAt    time.Time     `json:"startedAt"`
	FinishedAt   time.Time     `json:"finishedAt"`
	Duration     time.Duration `json:"duration"`
	Memberships  int           `json:"memberships"`
	Transactions int           `json:"transactions"`
	Checks       []string      `json:"checks"`
	Healthy      bool          `json:"healthy"`
	Violations   []Violation   `json:"violations"`
}

// Auditor runs registered checks over the stored ledger.
type Auditor struct {
	source Source
	tracer trace.Tracer
	logger *slog.Logger
	now    func() time.Time

	mu     sync.Mutex
	checks []Check
}

// NewAuditor returns an auditor with the standard ledger checks registered.
func NewAuditor(source Source, logger *slog.Logger) *Auditor {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Auditor{
		source: source,
		tracer: otel.Tracer("courtdesk/audit"),
		logger: logger.With("component", "audit"),
		now:    time.Now,
	}
	for _, c := range DefaultChecks() {
		a.RegisterCheck(c)
	}
	return a
}

func (a *Auditor) RegisterCheck(c Check) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.checks = append(a.checks, c)
}

func (a *Auditor) Checks() []Check {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Check(nil), a.checks...)
}

// Run loads the ledger and evaluates every check against it.
func (a *Auditor) Run(ctx context.Context) (*Report, error) {
	ctx, span := a.tracer.Start(ctx, "audit.run")
	defer span.End()

	report := &Report{StartedAt: a.now(), Violations: []Violation{}}

	span.AddEvent("loading_ledger")
	snap, err := a.load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	report.Memberships = len(snap.Memberships)
	for _, txs := range snap.Transactions {
		report.Transactions += len(txs)
	}

	span.AddEvent("running_checks")
	for _, c := range a.Checks() {
		report.Checks = append(report.Checks, c.Name)
		for _, v := range c.Run(snap) {
			v.Check = c.Name
			report.Violations = append(report.Violations, v)
		}
	}

	report.Healthy = len(report.Violations) == 0
	report.FinishedAt = a.now()
	report.Duration = report.FinishedAt.Sub(report.StartedAt)

	span.SetAttributes(
		attribute.Bool("audit.healthy", report.Healthy),
		attribute.Int("audit.violations", len(report.Violations)),
		attribute.Int("audit.memberships", report.Memberships),
	)
	if report.Healthy {
		a.logger.InfoContext(ctx, "ledger audit passed", "memberships", report.Memberships, "transactions", report.Transactions)
	} else {
		a.logger.WarnContext(ctx, "ledger audit found violations", "violations", len(report.Violations))
		for _, v := range report.Violations {
			a.logger.WarnContext(ctx, "ledger violation", "check", v.Check, "client_id", v.ClientID, "detail", v.Detail)
		}
	}
	return report, nil
}

func (a *Auditor) load(ctx context.Context) (*Snapshot, error) {
	ms, err := a.source.ListAllMemberships(ctx)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	snap := &Snapshot{
		Memberships:  ms,
		Transactions: make(map[uuid.UUID][]*membership.Transaction, len(ms)),
	}
	for _, m := range ms {
		txs, err := a.source.MembershipTransactions(ctx, m.ID)
		if err != nil {
			return nil, fmt.Errorf("transactions of %s: %w", m.ID, err)
		}
		snap.Transactions[m.ID] = txs
	}
	return snap, nil
}
