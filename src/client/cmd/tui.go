package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fl1ckyexe/ftp-admin/src/client/session"
	"github.com/fl1ckyexe/ftp-admin/src/client/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive admin panel",
	Long: `Launch the interactive admin panel. The token prompt, banners and the
offline overlay are driven by the same session logic as the other commands.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		view := tui.NewView()
		p := newPanel(view, session.Config{OnAuthenticated: view.Authenticated})
		return tui.Run(cmd.Context(), view, p.client, p.ctrl)
	},
}
