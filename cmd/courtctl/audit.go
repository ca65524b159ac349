package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"courtdesk/internal/audit"
	"courtdesk/internal/catalog"
	"courtdesk/internal/lock"
	"courtdesk/internal/membership"
	"courtdesk/internal/schedule"
	"courtdesk/internal/store"

	"github.com/spf13/cobra"
)

var errUnhealthy = errors.New("ledger audit found violations")

func newAuditCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit the session ledger for invariant violations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := a.ledger.Audit(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				if err := printJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			} else {
				printReport(cmd.OutOrStdout(), report)
			}
			if !report.Healthy {
				return errUnhealthy
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func printReport(w io.Writer, r *audit.Report) {
	fmt.Fprintf(w, "Audited %d memberships, %d transactions in %s\n", r.Memberships, r.Transactions, r.Duration)
	if r.Healthy {
		fmt.Fprintln(w, "Ledger healthy.")
		return
	}
	for _, v := range r.Violations {
		fmt.Fprintf(w, "  [%s] client=%s %s\n", v.Check, v.ClientID, v.Detail)
	}
}

// newDrillCmd runs the concurrent deduction drill against a throwaway
// ledger in this process, never against the live API.
func newDrillCmd(a *app) *cobra.Command {
	var (
		driver  string
		planID  string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "drill",
		Short: "Hammer one membership with concurrent deductions and audit the result",
		Long: `Run a deduction drill on a scratch ledger: sell a session plan, fire
concurrent deductions at it, then audit. The drill passes when exactly
min(balance, workers) deductions succeed and the ledger stays consistent.

Examples:
  courtctl drill                            # 20 workers against plan_006
  courtctl drill --workers 50 --driver sqlite`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := runDrill(cmd.Context(), a, driver, planID, workers)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if !res.HypothesisHeld {
				return fmt.Errorf("drill failed: %d of %d deductions succeeded from a balance of %d",
					res.Succeeded, res.Workers, res.BalanceBefore)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&driver, "driver", "memory", "scratch ledger storage: memory or sqlite")
	cmd.Flags().StringVar(&planID, "plan", "plan_006", "session plan to sell before the drill")
	cmd.Flags().IntVar(&workers, "workers", 20, "concurrent deductions")
	return cmd
}

type drillRepository interface {
	catalog.Repository
	membership.Repository
}

func runDrill(ctx context.Context, a *app, driver, planID string, workers int) (*audit.DrillResult, error) {
	var repo drillRepository
	switch driver {
	case "memory":
		repo = store.NewMemoryStore()
	case "sqlite":
		s, err := store.Open(ctx, "sqlite", ":memory:")
		if err != nil {
			return nil, err
		}
		defer s.Close()
		repo = s
	default:
		return nil, fmt.Errorf("unsupported drill driver %q", driver)
	}

	plans := catalog.NewService(repo, 1, a.logger)
	if _, err := plans.Seed(ctx, catalog.DefaultPlans(1)); err != nil {
		return nil, err
	}
	ledger := membership.NewService(repo, plans,
		membership.WithLocker(lock.NewKeyedMutex()),
		membership.WithLogger(a.logger),
	)
	m, err := ledger.PurchaseMembership(ctx, fmt.Sprintf("drill-%d", time.Now().UnixNano()), planID, schedule.Date{})
	if err != nil {
		return nil, err
	}
	return audit.NewAuditor(repo, a.logger).DeductionDrill(ctx, ledger, m.ID, workers)
}
