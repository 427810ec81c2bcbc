package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fl1ckyexe/ftp-admin/src/client/api"
)

// DefaultProbeInterval is the recovery probe cadence
const DefaultProbeInterval = 2 * time.Second

// ErrNoPrompt is returned by Submit when no token prompt is open
var ErrNoPrompt = errors.New("no token prompt is open")

// State is the controller state
type State int

const (
	StateBootstrapping State = iota
	StateAwaitingToken
	StateAuthenticated
	StateOffline
)

func (s State) String() string {
	switch s {
	case StateBootstrapping:
		return "bootstrapping"
	case StateAwaitingToken:
		return "awaiting-token"
	case StateAuthenticated:
		return "authenticated"
	case StateOffline:
		return "offline"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Config holds optional controller settings
type Config struct {
	ProbeInterval time.Duration
	Logger        *slog.Logger
	// OnAuthenticated runs after a prompt submission or token rotation succeeds
	OnAuthenticated func()
}

// Controller decides when to prompt for a token and drives the offline/online
// transitions reported by the transport.
type Controller struct {
	sess   *Session
	client *api.Client
	view   View
	cfg    Config
	logger *slog.Logger

	mu         sync.Mutex
	state      State
	prompt     *Prompt
	recovering bool
	authGen    uint64

	loopMu sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewController binds sess, the transport and the view. The controller registers
// itself as the transport observer.
func NewController(sess *Session, t *api.Transport, view View, cfg Config) *Controller {
	if cfg.ProbeInterval <= 0 {
		cfg.ProbeInterval = DefaultProbeInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		sess:   sess,
		client: api.NewClient(t),
		view:   view,
		cfg:    cfg,
		logger: logger.With("component", "session"),
		state:  StateBootstrapping,
	}
	t.SetObserver(c)
	return c
}

// Session returns the session the controller owns
func (c *Controller) Session() *Session {
	return c.sess
}

// State reports StateOffline while the session is offline, otherwise the
// authentication state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess.Offline() {
		return StateOffline
	}
	return c.state
}

// CurrentPrompt returns the open prompt, if any
func (c *Controller) CurrentPrompt() (Prompt, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.prompt == nil {
		return Prompt{}, false
	}
	return *c.prompt, true
}

// Bootstrap clears the token and re-derives first-run vs re-entry mode from the
// server, then opens the matching prompt.
func (c *Controller) Bootstrap(ctx context.Context) {
	c.mu.Lock()
	c.sess.clearToken()
	if c.prompt == nil {
		c.setState(StateBootstrapping)
	}
	gen := c.authGen
	c.mu.Unlock()

	// Status failures fall back to re-entry so first-run setup is never exposed
	// by a transient error
	tokenSet := true
	if st, err := c.client.AdminTokenStatus(ctx); err == nil {
		tokenSet = st.TokenSet
	} else {
		c.logger.Debug("admin token status unavailable", "error", err)
	}

	p := Prompt{Mode: PromptReentry}
	if !tokenSet {
		p.Mode = PromptFirstRun
		if hint, err := c.client.BootstrapInfo(ctx); err == nil {
			p.SuggestedFtpRoot = hint.SuggestedFtpRoot
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.authGen != gen {
		// Someone authenticated while the status call was in flight
		return
	}
	c.openPrompt(p, true)
}

// openPrompt enforces the single-prompt guard. With replace, an open prompt of a
// different mode is swapped for p. Caller holds c.mu.
func (c *Controller) openPrompt(p Prompt, replace bool) {
	if c.prompt != nil {
		if !replace || c.prompt.Mode == p.Mode {
			return
		}
		c.view.ClosePrompt()
	}
	c.prompt = &p
	c.setState(StateAwaitingToken)
	c.view.ShowPrompt(p)
}

// Submit applies the operator's answer to the open prompt
func (c *Controller) Submit(ctx context.Context, in PromptInput) error {
	c.mu.Lock()
	if c.prompt == nil {
		c.mu.Unlock()
		return ErrNoPrompt
	}
	p := *c.prompt
	c.view.ClearBanner()

	tok := strings.TrimSpace(in.Token)
	if tok == "" {
		err := &api.ValidationError{Field: "token", Message: "Token is required"}
		c.view.ShowBanner(BannerWarn, err.Message)
		c.mu.Unlock()
		return err
	}

	if p.Mode == PromptReentry {
		// Validity is confirmed by the next authenticated call
		c.authenticate(tok)
		c.mu.Unlock()
		c.notifyAuthenticated()
		return nil
	}

	ftpRoot := strings.TrimSpace(in.FtpRoot)
	if ftpRoot == "" {
		err := &api.ValidationError{Field: "ftpRoot", Message: "FTP root path is required"}
		c.view.ShowBanner(BannerWarn, err.Message)
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	res, err := c.client.Bootstrap(ctx, api.BootstrapRequest{Token: tok, FtpRoot: ftpRoot})

	c.mu.Lock()
	if err != nil {
		c.view.ShowBanner(BannerError, "Failed to apply token: "+err.Error())
		c.mu.Unlock()
		return fmt.Errorf("first-run setup: %w", err)
	}
	msg := "Setup saved. Restart the server to apply the new ftp-root path."
	if res != nil && res.FtpRoot != "" {
		msg += " (" + res.FtpRoot + ")"
	}
	c.view.ShowBanner(BannerWarn, msg)
	c.authenticate(tok)
	c.mu.Unlock()
	c.notifyAuthenticated()
	return nil
}

// RotateToken sets a new admin token on the server and adopts it for this session
func (c *Controller) RotateToken(ctx context.Context, token string) error {
	tok := strings.TrimSpace(token)
	c.mu.Lock()
	c.view.ClearBanner()
	if tok == "" {
		err := &api.ValidationError{Field: "token", Message: "Token is required"}
		c.view.ShowBanner(BannerWarn, err.Message)
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	err := c.client.SetAdminToken(ctx, tok)

	c.mu.Lock()
	if err != nil {
		c.view.ShowBanner(BannerError, "Failed to save token: "+err.Error())
		c.mu.Unlock()
		return fmt.Errorf("rotate token: %w", err)
	}
	c.view.ShowBanner(BannerOK, "Token saved (server DB updated)")
	c.authenticate(tok)
	c.mu.Unlock()
	c.notifyAuthenticated()
	return nil
}

// authenticate stores tok and closes the prompt. Caller holds c.mu.
func (c *Controller) authenticate(tok string) {
	c.sess.setToken(tok)
	if c.prompt != nil {
		c.prompt = nil
		c.view.ClosePrompt()
	}
	c.authGen++
	c.setState(StateAuthenticated)
}

func (c *Controller) notifyAuthenticated() {
	if c.cfg.OnAuthenticated != nil {
		c.cfg.OnAuthenticated()
	}
}

// Unauthorized implements api.Observer. The token is dropped and a re-entry prompt
// opened, unless an offline recovery is about to re-bootstrap anyway.
func (c *Controller) Unauthorized() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sess.clearToken()
	if c.recovering || c.sess.Offline() {
		c.logger.Debug("401 deferred to recovery bootstrap")
		return
	}
	c.openPrompt(Prompt{Mode: PromptReentry}, false)
}

// NetworkUnreachable implements api.Observer
func (c *Controller) NetworkUnreachable(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enterOffline(reason)
}

// enterOffline is idempotent; repeated entries only refresh the reason. Caller holds c.mu.
func (c *Controller) enterOffline(reason string) {
	if reason == "" {
		reason = api.OfflineReason
	}
	if c.sess.setOffline(true) {
		c.logger.Warn("server offline", "from", c.state.String(), "reason", reason)
	}
	c.view.ShowOffline(reason)
}

// Probe checks connectivity once. On success while offline it leaves offline mode and
// re-runs Bootstrap from scratch, since a restarted server may have reset its token store.
func (c *Controller) Probe(ctx context.Context) bool {
	// A 2xx with an unreadable body still proves the server is up
	if _, err := c.client.AdminTokenStatus(ctx); err != nil && !errors.Is(err, api.ErrDecode) {
		if ctx.Err() != nil {
			return false
		}
		c.mu.Lock()
		c.enterOffline(api.OfflineReason)
		c.mu.Unlock()
		return false
	}

	c.mu.Lock()
	if !c.sess.Offline() || c.recovering {
		c.mu.Unlock()
		return true
	}
	c.sess.setOffline(false)
	c.recovering = true
	c.view.HideOffline()
	c.logger.Info("server back online, re-bootstrapping")
	c.mu.Unlock()

	c.Bootstrap(ctx)

	c.mu.Lock()
	c.recovering = false
	c.mu.Unlock()
	return true
}

// Start bootstraps and launches the recovery probe loop. Calling Start while the loop
// runs is a no-op.
func (c *Controller) Start(ctx context.Context) {
	c.loopMu.Lock()
	defer c.loopMu.Unlock()
	if c.done != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	go c.loop(ctx, c.done)
}

// Stop cancels the probe loop and waits for it to exit
func (c *Controller) Stop() {
	c.loopMu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.loopMu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Run starts the controller and blocks until ctx is done
func (c *Controller) Run(ctx context.Context) error {
	c.Start(ctx)
	<-ctx.Done()
	c.Stop()
	return nil
}

func (c *Controller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	c.Bootstrap(ctx)

	ticker := time.NewTicker(c.cfg.ProbeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Probe(ctx)
		}
	}
}

// setState logs transitions. Caller holds c.mu.
func (c *Controller) setState(s State) {
	if c.state == s {
		return
	}
	c.logger.Debug("session state", "from", c.state.String(), "to", s.String())
	c.state = s
}
