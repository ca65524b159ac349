// cmd/courtctl/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"courtdesk/internal/clients"
	"courtdesk/internal/config"

	"github.com/spf13/cobra"
)

type app struct {
	apiURL  string
	timeout time.Duration
	verbose bool
	logger  *slog.Logger

	plans  *clients.CatalogClient
	ledger *clients.MembershipClient
}

func main() {
	defaultURL := "http://localhost:8080"
	if cfg, err := config.Load(); err == nil && cfg.APIURL != "" {
		defaultURL = cfg.APIURL
	}
	if err := newRootCmd(defaultURL).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(defaultURL string) *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "courtctl",
		Short: "courtctl - tennis club membership desk",
		Long: `courtctl talks to the courtdesk API: browse plans, sell and inspect
memberships, quote and confirm bookings, and audit the session ledger.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if a.verbose {
				level = slog.LevelDebug
			}
			a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			httpClient := &http.Client{Timeout: a.timeout}
			a.plans = clients.NewCatalogClient(a.apiURL, httpClient)
			a.ledger = clients.NewMembershipClient(a.apiURL, httpClient)
		},
	}
	root.PersistentFlags().StringVar(&a.apiURL, "api", defaultURL, "courtdesk API base URL")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 10*time.Second, "request timeout")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		newPlansCmd(a),
		newMembershipCmd(a),
		newHistoryCmd(a),
		newSummaryCmd(a),
		newPurchaseCmd(a),
		newDeductCmd(a),
		newAdjustCmd(a),
		newQuoteCmd(a),
		newConfirmCmd(a),
		newAuditCmd(a),
		newDrillCmd(a),
	)
	return root
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
