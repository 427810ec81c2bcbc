package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fl1ckyexe/ftp-admin/src/client/api"
	"github.com/fl1ckyexe/ftp-admin/src/client/session"
)

var (
	setupFtpRoot string

	errAlreadySetUp = errors.New("the server already has an admin token; use 'token set' to rotate it")
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Admin token management",
}

var tokenSetCmd = &cobra.Command{
	Use:   "set [new-token]",
	Short: "Set or rotate the server admin token",
	Long: `Set or rotate the server admin token. The new token is read from the
terminal when not given as an argument. It is never stored locally.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		newToken := ""
		if len(args) == 1 {
			newToken = args[0]
		} else {
			pr := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr(), "")
			tok, err := pr.secret("New token: ")
			if err != nil {
				return err
			}
			newToken = tok
		}

		p := newPanel(NewConsoleView(cmd.ErrOrStderr(), colorEnabled()), session.Config{})
		return p.ctrl.RotateToken(cmd.Context(), strings.TrimSpace(newToken))
	},
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-run setup of the admin token and ftp-root",
	Long: `First-run setup: choose the admin token and the ftp-root path.
Only works while the server has no admin token. The ftp-root defaults to the
server's suggestion. The server must be restarted to apply the new ftp-root.

Examples:
  ` + getBinaryName() + ` setup
  ` + getBinaryName() + ` setup --token s3cret --ftp-root /srv/ftp`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetup(cmd)
	},
}

func runSetup(cmd *cobra.Command) error {
	ctx := cmd.Context()
	view := NewConsoleView(cmd.ErrOrStderr(), colorEnabled())
	p := newPanel(view, session.Config{})

	p.ctrl.Bootstrap(ctx)
	if p.sess.Offline() {
		return api.ErrOffline
	}
	if prompt, open := p.ctrl.CurrentPrompt(); !open || prompt.Mode != session.PromptFirstRun {
		return errAlreadySetUp
	}

	pr := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr(), presetToken())
	pr.ftpRoot = strings.TrimSpace(setupFtpRoot)
	if err := p.authenticate(ctx, pr); err != nil {
		return err
	}
	return done(cmd.OutOrStdout(), "Admin token set")
}

// checkToken is a cheap authenticated call used to confirm a token before an action
func checkToken(ctx context.Context, c *api.Client) error {
	if _, err := c.GetLimits(ctx); err != nil {
		return fmt.Errorf("token check: %w", err)
	}
	return nil
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Check that an admin token is accepted by the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, c *api.Client) error {
			if err := checkToken(ctx, c); err != nil {
				return err
			}
			return done(cmd.OutOrStdout(), "Token accepted")
		})
	},
}

func init() {
	setupCmd.Flags().StringVar(&setupFtpRoot, "ftp-root", "", "ftp-root path (default: server suggestion)")
	tokenCmd.AddCommand(tokenSetCmd)
	rootCmd.AddCommand(tokenCmd, setupCmd, loginCmd)
}
