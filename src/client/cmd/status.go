package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/fl1ckyexe/ftp-admin/src/client/api"
	"github.com/fl1ckyexe/ftp-admin/src/client/session"
)

var errUnreachable = errors.New(api.OfflineReason)

// StatusResult is the output of the status command
type StatusResult struct {
	Server         string `json:"server"`
	Reachable      bool   `json:"reachable"`
	TokenSet       bool   `json:"tokenSet"`
	ResponseTimeMs int64  `json:"responseTimeMs"`
	Error          string `json:"error,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check that the admin API is reachable",
	Long: `Check that the admin API is reachable and whether an admin token is configured.
Exits with code 0 if reachable, 1 otherwise.

Examples:
  ` + getBinaryName() + ` status
  ` + getBinaryName() + ` status --output json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatus(cmd)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command) error {
	p := newPanel(NewConsoleView(cmd.ErrOrStderr(), colorEnabled()), session.Config{})

	start := time.Now()
	st, err := p.client.AdminTokenStatus(cmd.Context())
	res := StatusResult{
		Server:         serverAddress(),
		ResponseTimeMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		res.Error = err.Error()
	} else {
		res.Reachable = true
		res.TokenSet = st.TokenSet
	}

	if rerr := render(cmd.OutOrStdout(), res, func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "Server:\t%s\n", res.Server)
		if res.Reachable {
			fmt.Fprintf(tw, "Status:\tonline\n")
			fmt.Fprintf(tw, "Admin token:\t%s\n", tokenSetText(res.TokenSet))
		} else {
			fmt.Fprintf(tw, "Status:\toffline\n")
			fmt.Fprintf(tw, "Error:\t%s\n", res.Error)
		}
		fmt.Fprintf(tw, "Response time:\t%dms\n", res.ResponseTimeMs)
	}); rerr != nil {
		return rerr
	}

	if err != nil {
		return errUnreachable
	}
	return nil
}

func tokenSetText(set bool) string {
	if set {
		return "configured"
	}
	return "not set (run setup)"
}
