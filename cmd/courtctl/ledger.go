package main

import (
	"fmt"

	"courtdesk/internal/schedule"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newMembershipCmd(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "membership <client-id>",
		Short: "Show a client's active membership",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				ms, err := a.ledger.ListMemberships(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), ms)
			}
			m, err := a.ledger.GetActiveMembership(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if m == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Client %s has no active membership.\n", args[0])
				return nil
			}
			return printJSON(cmd.OutOrStdout(), m)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "list every membership the client ever held")
	return cmd
}

func newHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history <client-id>",
		Short: "Show a client's ledger transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			txs, err := a.ledger.History(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), txs)
		},
	}
}

func newSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary <client-id>",
		Short: "Show spend and utilization for a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sum, err := a.ledger.Summary(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), sum)
		},
	}
}

func newPurchaseCmd(a *app) *cobra.Command {
	var planID, date string
	cmd := &cobra.Command{
		Use:   "purchase <client-id>",
		Short: "Sell a plan to a client",
		Long: `Sell a catalog plan to a client. Any active membership the client
holds is superseded.

Examples:
  courtctl purchase client-42 --plan plan_001
  courtctl purchase client-42 --plan plan_004 --date 2024-03-04`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var purchaseDate schedule.Date
			if date != "" {
				d, err := schedule.ParseDate(date)
				if err != nil {
					return fmt.Errorf("invalid --date, use YYYY-MM-DD: %w", err)
				}
				purchaseDate = d
			}
			m, err := a.ledger.Purchase(cmd.Context(), args[0], planID, purchaseDate)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), m)
		},
	}
	cmd.Flags().StringVar(&planID, "plan", "", "plan id (required)")
	cmd.Flags().StringVar(&date, "date", "", "purchase date (YYYY-MM-DD), defaults to today")
	_ = cmd.MarkFlagRequired("plan")
	return cmd
}

func newDeductCmd(a *app) *cobra.Command {
	var bookingID string
	cmd := &cobra.Command{
		Use:   "deduct <membership-id>",
		Short: "Deduct one session for a booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid membership id: %w", err)
			}
			tx, err := a.ledger.DeductSession(cmd.Context(), id, bookingID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tx)
		},
	}
	cmd.Flags().StringVar(&bookingID, "booking", "", "booking id (required)")
	_ = cmd.MarkFlagRequired("booking")
	return cmd
}

func newAdjustCmd(a *app) *cobra.Command {
	var (
		balance         int
		reason, adminID string
	)
	cmd := &cobra.Command{
		Use:   "adjust <membership-id>",
		Short: "Set a membership's remaining sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid membership id: %w", err)
			}
			tx, err := a.ledger.AdjustBalance(cmd.Context(), id, balance, reason, adminID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tx)
		},
	}
	cmd.Flags().IntVar(&balance, "balance", 0, "new remaining session count")
	cmd.Flags().StringVar(&reason, "reason", "", "reason for the adjustment (required)")
	cmd.Flags().StringVar(&adminID, "admin", "", "admin performing the adjustment (required)")
	_ = cmd.MarkFlagRequired("balance")
	_ = cmd.MarkFlagRequired("reason")
	_ = cmd.MarkFlagRequired("admin")
	return cmd
}
