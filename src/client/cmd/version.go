package cmd

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/fl1ckyexe/ftp-admin/src/client/api"
)

var versionCheckServer bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%s v%s (%s) built %s\n", getBinaryName(), Version, CommitID, BuildDate)

		if versionCheckServer {
			fmt.Fprintf(w, "\nServer: %s\n", serverAddress())
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			tr := api.NewTransport(serverAddress(), nil)
			if _, err := api.NewClient(tr).AdminTokenStatus(ctx); err != nil {
				fmt.Fprintf(w, "Status: offline (%v)\n", err)
			} else {
				fmt.Fprintf(w, "Status: online\n")
			}
		}

		fmt.Fprintf(w, "\nBuild Info:\n")
		fmt.Fprintf(w, "  Go: %s\n", runtime.Version())
		fmt.Fprintf(w, "  OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(w, "  Commit: %s\n", CommitID)
		fmt.Fprintf(w, "  Date: %s\n", BuildDate)
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionCheckServer, "server-check", false, "also check that the admin API is reachable")
}
