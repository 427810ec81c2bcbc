package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fl1ckyexe/ftp-admin/src/client/api"
	"github.com/fl1ckyexe/ftp-admin/src/client/session"
)

// maxAttempts bounds how often an action is retried after a 401 re-prompt
const maxAttempts = 3

var errNoInput = errors.New("no admin token provided (use --token or " + tokenEnv + ")")

// panel is the session core of one CLI invocation
type panel struct {
	sess   *session.Session
	client *api.Client
	ctrl   *session.Controller
}

func newPanel(view session.View, cfg session.Config) *panel {
	sess := session.New()
	tr := api.NewTransport(serverAddress(), sess,
		api.WithTimeout(requestTimeout()),
		api.WithLogger(slog.Default()),
	)
	cfg.ProbeInterval = probeInterval()
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &panel{
		sess:   sess,
		client: api.NewClient(tr),
		ctrl:   session.NewController(sess, tr, view, cfg),
	}
}

// prompter answers token prompts: the preset token once, then the terminal
type prompter struct {
	preset  string
	ftpRoot string

	in          *bufio.Reader
	out         io.Writer
	fd          int
	interactive bool
}

func newPrompter(in io.Reader, out io.Writer, preset string) *prompter {
	p := &prompter{
		preset: strings.TrimSpace(preset),
		in:     bufio.NewReader(in),
		out:    out,
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
		p.interactive = true
	}
	return p
}

// Read collects the answer to pr. A blank ftp-root falls back to the server hint.
func (p *prompter) Read(pr session.Prompt) (session.PromptInput, error) {
	var in session.PromptInput

	if p.preset != "" {
		in.Token, p.preset = p.preset, ""
	} else {
		if p.interactive {
			fmt.Fprintln(p.out, pr.Title())
			fmt.Fprintln(p.out, pr.Hint())
		}
		tok, err := p.secret("Token: ")
		if err != nil {
			return in, err
		}
		in.Token = tok
	}

	if !pr.NeedsFtpRoot() {
		return in, nil
	}
	root := p.ftpRoot
	if root == "" && p.interactive {
		label := "FTP root: "
		if pr.SuggestedFtpRoot != "" {
			label = fmt.Sprintf("FTP root [%s]: ", pr.SuggestedFtpRoot)
		}
		line, err := p.line(label)
		if err != nil {
			return in, err
		}
		root = line
	}
	if root == "" {
		root = pr.SuggestedFtpRoot
	}
	in.FtpRoot = root
	return in, nil
}

func (p *prompter) secret(label string) (string, error) {
	if !p.interactive {
		return p.line("")
	}
	fmt.Fprint(p.out, label)
	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func (p *prompter) line(label string) (string, error) {
	if label != "" {
		fmt.Fprint(p.out, label)
	}
	s, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || strings.TrimSpace(s) == "") {
		if err == io.EOF {
			return "", errNoInput
		}
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(s), nil
}

// authenticate answers prompts until the controller holds a token
func (p *panel) authenticate(ctx context.Context, pr *prompter) error {
	for {
		if p.sess.Offline() {
			return api.ErrOffline
		}
		prompt, open := p.ctrl.CurrentPrompt()
		if !open {
			if p.ctrl.State() == session.StateAuthenticated {
				return nil
			}
			return errNoInput
		}
		in, err := pr.Read(prompt)
		if err != nil {
			return err
		}
		if err := p.ctrl.Submit(ctx, in); err != nil {
			if errors.Is(err, api.ErrValidation) && pr.interactive {
				continue
			}
			return err
		}
	}
}

// run authenticates and runs action. A 401 makes the controller reopen the
// prompt; the action is retried with the new token up to maxAttempts times.
func (p *panel) run(ctx context.Context, pr *prompter, action func(ctx context.Context, c *api.Client) error) error {
	var rejected error
	for attempt := 1; ; attempt++ {
		if err := p.authenticate(ctx, pr); err != nil {
			// Nothing left to answer the re-prompt with
			if rejected != nil && errors.Is(err, errNoInput) {
				return rejected
			}
			return err
		}
		err := action(ctx, p.client)
		if err == nil || !errors.Is(err, api.ErrUnauthorized) || attempt >= maxAttempts {
			return err
		}
		rejected = err
		slog.Default().Debug("admin token rejected, prompting again", "attempt", attempt)
	}
}

// withSession is the driver for authenticated commands: bootstrap, prompt, act
func withSession(cmd *cobra.Command, action func(ctx context.Context, c *api.Client) error) error {
	ctx := cmd.Context()
	view := NewConsoleView(cmd.ErrOrStderr(), colorEnabled())
	p := newPanel(view, session.Config{})
	pr := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr(), presetToken())

	p.ctrl.Bootstrap(ctx)
	return p.run(ctx, pr, action)
}
