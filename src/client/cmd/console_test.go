package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fl1ckyexe/ftp-admin/src/client/session"
)

func TestConsoleViewOfflineOncePerOutage(t *testing.T) {
	var buf bytes.Buffer
	v := NewConsoleView(&buf, false)

	v.ShowOffline("down")
	v.ShowOffline("down")
	v.HideOffline()
	v.HideOffline()
	v.ShowOffline("down again")

	want := "down\nServer is back online\ndown again\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestConsoleViewBanners(t *testing.T) {
	var buf bytes.Buffer
	v := NewConsoleView(&buf, false)

	v.ShowBanner(session.BannerOK, "saved")
	v.ShowBanner(session.BannerWarn, "restart")
	v.ShowBanner(session.BannerError, "failed")
	v.ClearBanner()

	if buf.String() != "saved\nrestart\nfailed\n" {
		t.Errorf("output = %q", buf.String())
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Error("no-color output contains escape codes")
	}
}

func TestConsoleViewCountsPrompts(t *testing.T) {
	v := NewConsoleView(&bytes.Buffer{}, false)
	v.ShowPrompt(session.Prompt{Mode: session.PromptReentry})
	v.ClosePrompt()
	v.ShowPrompt(session.Prompt{Mode: session.PromptFirstRun})

	if v.Prompts() != 2 {
		t.Errorf("Prompts() = %d, want 2", v.Prompts())
	}
}
