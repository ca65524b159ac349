package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"courtdesk/internal/membership"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Deducter is the ledger operation a drill hammers.
type Deducter interface {
	DeductSession(ctx context.Context, membershipID uuid.UUID, bookingID string) (*membership.Transaction, error)
	GetMembership(ctx context.Context, id uuid.UUID) (*membership.ClientMembership, error)
}

// DrillResult records a concurrent deduction drill.
type DrillResult struct {
	MembershipID   uuid.UUID      `json:"membershipId"`
	Workers        int            `json:"workers"`
	BalanceBefore  int            `json:"balanceBefore"`
	BalanceAfter   int            `json:"balanceAfter"`
	Succeeded      int            `json:"succeeded"`
	Rejected       map[string]int `json:"rejected"`
	Duration       time.Duration  `json:"duration"`
	HypothesisHeld bool           `json:"hypothesisHeld"`
	Report         *Report        `json:"report"`
}

// DeductionDrill fires workers concurrent deductions at one membership and
// then audits the ledger. The hypothesis holds when exactly
// min(balance, workers) deductions succeed and the audit is clean.
func (a *Auditor) DeductionDrill(ctx context.Context, ledger Deducter, membershipID uuid.UUID, workers int) (*DrillResult, error) {
	ctx, span := a.tracer.Start(ctx, "audit.deduction_drill",
		trace.WithAttributes(
			attribute.String("membership.id", membershipID.String()),
			attribute.Int("drill.workers", workers),
		),
	)
	defer span.End()

	if workers <= 0 {
		return nil, fmt.Errorf("drill needs at least one worker, got %d", workers)
	}
	before, err := ledger.GetMembership(ctx, membershipID)
	if err != nil {
		return nil, err
	}

	res := &DrillResult{
		MembershipID:  membershipID,
		Workers:       workers,
		BalanceBefore: before.Remaining(),
		Rejected:      make(map[string]int),
	}
	start := a.now()

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := ledger.DeductSession(ctx, membershipID, fmt.Sprintf("drill-%d-%s", i, uuid.NewString()[:8]))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Rejected[membership.Code(err)]++
				return
			}
			res.Succeeded++
		}(i)
	}
	wg.Wait()
	res.Duration = a.now().Sub(start)

	after, err := ledger.GetMembership(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	res.BalanceAfter = after.Remaining()

	if res.Report, err = a.Run(ctx); err != nil {
		return nil, err
	}
	res.HypothesisHeld = res.Succeeded == min(res.BalanceBefore, workers) &&
		res.BalanceAfter == res.BalanceBefore-res.Succeeded &&
		res.Report.Healthy

	span.SetAttributes(
		attribute.Int("drill.succeeded", res.Succeeded),
		attribute.Bool("drill.hypothesis_held", res.HypothesisHeld),
	)
	return res, nil
}
