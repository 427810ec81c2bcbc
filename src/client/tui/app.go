package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/fl1ckyexe/ftp-admin/src/client/api"
	"github.com/fl1ckyexe/ftp-admin/src/client/session"
)

// Dracula colors
var (
	Background = lipgloss.Color("#282a36")
	Foreground = lipgloss.Color("#f8f8f2")
	Selection  = lipgloss.Color("#44475a")
	Comment    = lipgloss.Color("#6272a4")
	Cyan       = lipgloss.Color("#8be9fd")
	Green      = lipgloss.Color("#50fa7b")
	Orange     = lipgloss.Color("#ffb86c")
	Pink       = lipgloss.Color("#ff79c6")
	Purple     = lipgloss.Color("#bd93f9")
	Red        = lipgloss.Color("#ff5555")
	Yellow     = lipgloss.Color("#f1fa8c")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(Purple).
			Bold(true).
			Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Comment).
			Padding(0, 1)

	overlayStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(Red).
			Foreground(Foreground).
			Padding(1, 3)

	tabStyle = lipgloss.NewStyle().
			Foreground(Comment).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(Background).
			Background(Cyan).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(Comment)

	errorStyle = lipgloss.NewStyle().
			Foreground(Red)

	bannerStyles = map[session.BannerLevel]lipgloss.Style{
		session.BannerOK:    lipgloss.NewStyle().Foreground(Green),
		session.BannerWarn:  lipgloss.NewStyle().Foreground(Yellow),
		session.BannerError: lipgloss.NewStyle().Foreground(Red).Bold(true),
	}
)

type section int

const (
	sectionUsers section = iota + 1
	sectionLimits
	sectionPermissions
	sectionStats
	sectionRoot
)

var sectionNames = map[section]string{
	sectionUsers:       "Users",
	sectionLimits:      "Limits",
	sectionPermissions: "Permissions",
	sectionStats:       "Stats",
	sectionRoot:        "Root",
}

// Messages sent by View

type promptMsg struct{ prompt session.Prompt }

type closePromptMsg struct{}

type bannerMsg struct {
	level session.BannerLevel
	text  string
}

type clearBannerMsg struct{}

type offlineMsg struct{ reason string }

type onlineMsg struct{}

type authenticatedMsg struct{}

// Command results

type submitDoneMsg struct{ err error }

type probeDoneMsg struct{ ok bool }

type sectionMsg struct {
	section section
	content string
	err     error
}

type model struct {
	ctx    context.Context
	client *api.Client
	ctrl   *session.Controller

	prompt     *session.Prompt
	tokenInput textinput.Model
	rootInput  textinput.Model
	rootFocus  bool
	submitting bool

	banner  *bannerMsg
	offline bool
	reason  string

	section   section
	userInput textinput.Model
	viewport  viewport.Model
	loading   bool
	width     int
	height    int
}

func newModel(ctx context.Context, client *api.Client, ctrl *session.Controller) model {
	tok := textinput.New()
	tok.Placeholder = "admin token"
	tok.EchoMode = textinput.EchoPassword
	tok.EchoCharacter = '•'
	tok.Width = 40

	root := textinput.New()
	root.Placeholder = "ftp-root path"
	root.Width = 40

	user := textinput.New()
	user.Placeholder = "username"
	user.Width = 30

	return model{
		ctx:        ctx,
		client:     client,
		ctrl:       ctrl,
		tokenInput: tok,
		rootInput:  root,
		userInput:  user,
		section:    sectionUsers,
		viewport:   viewport.New(80, 15),
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-10, 3)
		return m, nil

	case promptMsg:
		p := msg.prompt
		m.prompt = &p
		m.submitting = false
		m.rootFocus = false
		m.tokenInput.SetValue("")
		m.tokenInput.Focus()
		m.rootInput.Blur()
		m.rootInput.SetValue(p.SuggestedFtpRoot)
		m.userInput.Blur()
		return m, textinput.Blink

	case closePromptMsg:
		m.prompt = nil
		m.tokenInput.Blur()
		m.rootInput.Blur()
		return m, nil

	case bannerMsg:
		b := msg
		m.banner = &b
		return m, nil

	case clearBannerMsg:
		m.banner = nil
		return m, nil

	case offlineMsg:
		m.offline = true
		m.reason = msg.reason
		return m, nil

	case onlineMsg:
		m.offline = false
		return m, nil

	case authenticatedMsg:
		cmd := m.load(m.section)
		return m, cmd

	case submitDoneMsg:
		m.submitting = false
		return m, nil

	case probeDoneMsg:
		return m, nil

	case sectionMsg:
		if msg.section != m.section {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.viewport.SetContent(errorStyle.Render("Error: " + msg.err.Error()))
		} else {
			m.viewport.SetContent(msg.content)
		}
		m.viewport.GotoTop()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	// The overlay blocks everything but retry and quit
	if m.offline {
		switch key {
		case "r":
			return m, m.probe()
		case "q", "esc":
			return m, tea.Quit
		}
		return m, nil
	}

	if m.prompt != nil {
		return m.handlePromptKey(msg)
	}

	if m.userInput.Focused() {
		switch key {
		case "enter":
			m.userInput.Blur()
			cmd := m.load(sectionPermissions)
			return m, cmd
		case "esc":
			m.userInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.userInput, cmd = m.userInput.Update(msg)
		return m, cmd
	}

	switch key {
	case "q":
		return m, tea.Quit
	case "1", "2", "3", "4", "5":
		m.section = section(key[0] - '0')
		if m.section == sectionPermissions && strings.TrimSpace(m.userInput.Value()) == "" {
			m.userInput.Focus()
			m.viewport.SetContent(helpStyle.Render("Enter a username and press enter"))
			return m, textinput.Blink
		}
		cmd := m.load(m.section)
		return m, cmd
	case "u":
		if m.section == sectionPermissions {
			m.userInput.Focus()
			return m, textinput.Blink
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		if m.prompt.NeedsFtpRoot() {
			m.rootFocus = !m.rootFocus
			if m.rootFocus {
				m.tokenInput.Blur()
				m.rootInput.Focus()
			} else {
				m.rootInput.Blur()
				m.tokenInput.Focus()
			}
		}
		return m, nil
	case "enter":
		if m.submitting {
			return m, nil
		}
		m.submitting = true
		return m, m.submit(session.PromptInput{
			Token:   m.tokenInput.Value(),
			FtpRoot: m.rootInput.Value(),
		})
	}

	var cmd tea.Cmd
	if m.rootFocus {
		m.rootInput, cmd = m.rootInput.Update(msg)
	} else {
		m.tokenInput, cmd = m.tokenInput.Update(msg)
	}
	return m, cmd
}

func (m model) submit(in session.PromptInput) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return submitDoneMsg{err: ctrl.Submit(ctx, in)}
	}
}

func (m model) probe() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return probeDoneMsg{ok: ctrl.Probe(ctx)}
	}
}

// load fetches a section in the background. Auth and offline failures are routed
// through the controller by the transport; the section only shows the error.
func (m *model) load(s section) tea.Cmd {
	m.loading = true
	client, ctx := m.client, m.ctx
	username := strings.TrimSpace(m.userInput.Value())
	return func() tea.Msg {
		content, err := fetchSection(ctx, client, s, username)
		return sectionMsg{section: s, content: content, err: err}
	}
}

func fetchSection(ctx context.Context, c *api.Client, s section, username string) (string, error) {
	switch s {
	case sectionUsers:
		v, err := c.ListUsers(ctx)
		return asJSON(v, err)
	case sectionLimits:
		v, err := c.GetLimits(ctx)
		return asJSON(v, err)
	case sectionPermissions:
		perms, err := c.GetUserPermissions(ctx, username)
		if err != nil {
			return "", err
		}
		shared, err := c.SharedFolders(ctx, username)
		if err != nil {
			return "", err
		}
		return asJSON(map[string]any{"permissions": perms, "sharedFolders": shared}, nil)
	case sectionStats:
		v, err := c.LiveStats(ctx)
		if err != nil {
			return "", err
		}
		return renderLiveStats(v), nil
	case sectionRoot:
		v, err := c.GetRoot(ctx)
		return asJSON(v, err)
	}
	return "", fmt.Errorf("unknown section %d", s)
}

func asJSON(v any, err error) (string, error) {
	if err != nil {
		return "", err
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func renderLiveStats(s *api.LiveStats) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Connected users: %d   Connections: %d\n\n", s.ConnectedUsers, s.TotalConnections)
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "USER\tONLINE\tCONN\tUPLOADED\tDOWNLOADED\tLAST LOGIN")
	for _, u := range s.Users {
		online := "no"
		if u.Connected {
			online = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n", u.Username, online, u.Connections,
			api.FormatBytes(u.BytesUploaded), api.FormatBytes(u.BytesDownloaded), u.LastLogin)
	}
	tw.Flush()
	return sb.String()
}

func (m model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("FTP Admin"))
	sb.WriteString("\n\n")

	switch {
	case m.offline:
		body := lipgloss.JoinVertical(lipgloss.Center,
			errorStyle.Bold(true).Render("Server offline"),
			"",
			m.reason,
			"",
			helpStyle.Render("r: retry now • q: quit"),
		)
		sb.WriteString(overlayStyle.Render(body))
	case m.prompt != nil:
		sb.WriteString(m.promptView())
	default:
		sb.WriteString(m.tabsView())
		sb.WriteString("\n")
		if m.section == sectionPermissions {
			sb.WriteString(boxStyle.Render(m.userInput.View()))
			sb.WriteString("\n")
		}
		if m.loading {
			sb.WriteString(helpStyle.Render("Loading..."))
			sb.WriteString("\n")
		}
		sb.WriteString(m.viewport.View())
	}

	sb.WriteString("\n")
	if m.banner != nil {
		style, ok := bannerStyles[m.banner.level]
		if !ok {
			style = helpStyle
		}
		sb.WriteString(style.Render(m.banner.text))
		sb.WriteString("\n")
	}
	sb.WriteString(helpStyle.Render(m.helpLine()))
	return sb.String()
}

func (m model) promptView() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.prompt.Title()))
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render(m.prompt.Hint()))
	sb.WriteString("\n\n")
	sb.WriteString(m.tokenInput.View())
	if m.prompt.NeedsFtpRoot() {
		sb.WriteString("\n")
		sb.WriteString(m.rootInput.View())
	}
	if m.submitting {
		sb.WriteString("\n")
		sb.WriteString(helpStyle.Render("Saving..."))
	}
	return boxStyle.Render(sb.String())
}

func (m model) tabsView() string {
	tabs := make([]string, 0, len(sectionNames))
	for s := sectionUsers; s <= sectionRoot; s++ {
		label := fmt.Sprintf("%d %s", s, sectionNames[s])
		if s == m.section {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m model) helpLine() string {
	switch {
	case m.offline:
		return "Waiting for the server..."
	case m.prompt != nil && m.prompt.NeedsFtpRoot():
		return "Tab: switch field • Enter: submit • Ctrl+C: quit"
	case m.prompt != nil:
		return "Enter: submit • Ctrl+C: quit"
	case m.userInput.Focused():
		return "Enter: load • Esc: cancel"
	default:
		return "1-5: section • u: username • ↑/↓: scroll • q: quit"
	}
}

// View adapts the session controller callbacks into bubbletea messages
type View struct {
	program *tea.Program
}

// NewView returns a View that drops messages until Run attaches a program
func NewView() *View {
	return &View{}
}

func (v *View) send(msg tea.Msg) {
	if v.program != nil {
		v.program.Send(msg)
	}
}

func (v *View) ShowPrompt(p session.Prompt) { v.send(promptMsg{prompt: p}) }

func (v *View) ClosePrompt() { v.send(closePromptMsg{}) }

func (v *View) ShowBanner(level session.BannerLevel, msg string) {
	v.send(bannerMsg{level: level, text: msg})
}

func (v *View) ClearBanner() { v.send(clearBannerMsg{}) }

func (v *View) ShowOffline(reason string) { v.send(offlineMsg{reason: reason}) }

func (v *View) HideOffline() { v.send(onlineMsg{}) }

// Authenticated is meant for session.Config.OnAuthenticated; it reloads the open section
func (v *View) Authenticated() { v.send(authenticatedMsg{}) }

// Run starts the TUI and the controller probe loop and blocks until the user quits
// or ctx is done. view must be the View the controller was created with.
func Run(ctx context.Context, view *View, client *api.Client, ctrl *session.Controller) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newModel(ctx, client, ctrl), tea.WithAltScreen(), tea.WithContext(ctx))
	view.program = p

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	})
	g.Go(func() error {
		return ctrl.Run(gctx)
	})
	return g.Wait()
}
