package main

import (
	"fmt"
	"io"
	"strings"

	"courtdesk/internal/booking"
	"courtdesk/internal/schedule"

	"github.com/spf13/cobra"
)

type draftFlags struct {
	clientID, courtID string
	date, at          string
	duration          int
	price             int64
	slots             []string
	asJSON            bool
}

func (f *draftFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.clientID, "client", "", "client id (required)")
	cmd.Flags().StringVar(&f.courtID, "court", "", "court id")
	cmd.Flags().StringVar(&f.date, "date", "", "booking date YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&f.at, "time", "", "start time HH:MM (required)")
	cmd.Flags().IntVar(&f.duration, "duration", 60, "duration in minutes")
	cmd.Flags().Int64Var(&f.price, "price", 0, "base price in whole currency units")
	cmd.Flags().StringSliceVar(&f.slots, "slots", nil, "candidate start times for suggestions, e.g. 08:00,10:00")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print JSON")
	_ = cmd.MarkFlagRequired("client")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("time")
}

func (f *draftFlags) draft() (booking.Draft, error) {
	d := booking.Draft{
		ClientID:        f.clientID,
		CourtID:         f.courtID,
		DurationMinutes: f.duration,
		BasePrice:       f.price,
	}
	var err error
	if d.Date, err = schedule.ParseDate(f.date); err != nil {
		return d, fmt.Errorf("invalid --date, use YYYY-MM-DD: %w", err)
	}
	at, err := schedule.ParseClock(f.at)
	if err != nil {
		return d, fmt.Errorf("invalid --time, use HH:MM: %w", err)
	}
	d.Time = &at
	for _, s := range f.slots {
		c, err := schedule.ParseClock(strings.TrimSpace(s))
		if err != nil {
			return d, fmt.Errorf("invalid --slots entry %q: %w", s, err)
		}
		d.CandidateSlots = append(d.CandidateSlots, c)
	}
	return d, nil
}

func newQuoteCmd(a *app) *cobra.Command {
	var f draftFlags
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a booking against the client's membership",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := f.draft()
			if err != nil {
				return err
			}
			res, err := a.ledger.Quote(cmd.Context(), d)
			if err != nil {
				return err
			}
			if f.asJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func newConfirmCmd(a *app) *cobra.Command {
	var (
		f         draftFlags
		bookingID string
	)
	cmd := &cobra.Command{
		Use:   "confirm",
		Short: "Confirm a booking, deducting a session when the membership pays for it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := f.draft()
			if err != nil {
				return err
			}
			res, err := a.ledger.Confirm(cmd.Context(), d, bookingID)
			if err != nil {
				return err
			}
			if f.asJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			printResult(cmd.OutOrStdout(), res)
			if res.Transaction != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Deducted 1 session (transaction %s)\n", res.Transaction.ID)
			}
			return nil
		},
	}
	f.bind(cmd)
	cmd.Flags().StringVar(&bookingID, "booking", "", "booking id (required)")
	_ = cmd.MarkFlagRequired("booking")
	return cmd
}

func printResult(w io.Writer, res *booking.Result) {
	fmt.Fprintf(w, "Price: %d -> %d (%s)\n", res.Quote.OriginalPrice, res.Quote.FinalPrice, res.Quote.PaymentStatus)
	if res.Quote.Message != "" {
		fmt.Fprintf(w, "Note: %s\n", res.Quote.Message)
	}
	if res.Membership != nil {
		fmt.Fprintf(w, "Membership: %s (%s)\n", res.Membership.Name, res.Membership.Status)
	}
	if res.Validation.IsValid {
		fmt.Fprintln(w, "Membership usable: yes")
	} else {
		fmt.Fprintf(w, "Membership usable: no, %s\n", res.Validation.Message)
		if len(res.Validation.Suggestions) > 0 {
			fmt.Fprintf(w, "Allowed: %s\n", strings.Join(res.Validation.Suggestions, ", "))
		}
	}
	if len(res.SuggestedTimes) > 0 {
		times := make([]string, len(res.SuggestedTimes))
		for i, c := range res.SuggestedTimes {
			times[i] = c.String()
		}
		fmt.Fprintf(w, "Try instead: %s\n", strings.Join(times, ", "))
	}
}
