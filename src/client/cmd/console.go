package cmd

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/fl1ckyexe/ftp-admin/src/client/session"
	"github.com/fl1ckyexe/ftp-admin/src/client/tui"
)

// ConsoleView renders controller feedback as styled lines for one-shot commands.
// Prompts are answered by the command driver, so ShowPrompt and ClosePrompt only
// track state.
type ConsoleView struct {
	mu      sync.Mutex
	w       io.Writer
	offline bool
	prompts int

	ok, warn, err, muted lipgloss.Style
}

// NewConsoleView writes to w, usually stderr
func NewConsoleView(w io.Writer, color bool) *ConsoleView {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	return &ConsoleView{
		w:     w,
		ok:    r.NewStyle().Foreground(tui.Green),
		warn:  r.NewStyle().Foreground(tui.Yellow),
		err:   r.NewStyle().Foreground(tui.Red).Bold(true),
		muted: r.NewStyle().Foreground(tui.Comment),
	}
}

func (v *ConsoleView) ShowPrompt(p session.Prompt) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.prompts++
}

func (v *ConsoleView) ClosePrompt() {}

func (v *ConsoleView) ShowBanner(level session.BannerLevel, msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	style := v.muted
	switch level {
	case session.BannerOK:
		style = v.ok
	case session.BannerWarn:
		style = v.warn
	case session.BannerError:
		style = v.err
	}
	fmt.Fprintln(v.w, style.Render(msg))
}

func (v *ConsoleView) ClearBanner() {}

// ShowOffline prints the reason once per outage
func (v *ConsoleView) ShowOffline(reason string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.offline {
		return
	}
	v.offline = true
	fmt.Fprintln(v.w, v.err.Render(reason))
}

func (v *ConsoleView) HideOffline() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.offline {
		return
	}
	v.offline = false
	fmt.Fprintln(v.w, v.ok.Render("Server is back online"))
}

// Prompts reports how many token prompts the controller opened
func (v *ConsoleView) Prompts() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.prompts
}
