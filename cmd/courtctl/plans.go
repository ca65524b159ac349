package main

import (
	"fmt"
	"text/tabwriter"

	"courtdesk/internal/catalog"

	"github.com/spf13/cobra"
)

func benefit(p *catalog.Plan) string {
	if p.BenefitType == catalog.BenefitDiscount {
		return fmt.Sprintf("%d%% off", p.BenefitValue)
	}
	return fmt.Sprintf("%d sessions", p.BenefitValue)
}

func newPlansCmd(a *app) *cobra.Command {
	var all, asJSON bool
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "List membership plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plans, err := a.plans.ListPlans(cmd.Context(), !all)
			if err != nil {
				return fmt.Errorf("failed to list plans: %w", err)
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), plans)
			}
			if len(plans) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No plans found.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tBENEFIT\tHOURS\tDAYS\tPRICE\tACTIVE")
			for _, p := range plans {
				hours := p.TimeRestrictions.Describe()
				if hours == "" {
					hours = "any time"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%t\n",
					p.ID, p.Name, benefit(p), hours, p.ValidForDays, p.Price, p.IsActive)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include deactivated plans")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
