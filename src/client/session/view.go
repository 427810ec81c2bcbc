package session

// PromptMode selects what the token prompt collects
type PromptMode int

const (
	// PromptReentry asks for the existing admin token only
	PromptReentry PromptMode = iota
	// PromptFirstRun asks for a new token plus the one-time ftp-root setup
	PromptFirstRun
)

func (m PromptMode) String() string {
	switch m {
	case PromptFirstRun:
		return "first-run"
	default:
		return "re-entry"
	}
}

// Prompt describes the credential prompt a view should display. Input fields start empty
// except the ftp-root field, which is prefilled with SuggestedFtpRoot.
type Prompt struct {
	Mode             PromptMode
	SuggestedFtpRoot string
}

// Title returns the prompt heading
func (p Prompt) Title() string {
	if p.Mode == PromptFirstRun {
		return "Set admin token"
	}
	return "Enter admin token"
}

// Hint returns the help line shown under the token field
func (p Prompt) Hint() string {
	if p.Mode == PromptFirstRun {
		return "First-time setup: choose a token. You will need it next time."
	}
	return "Enter the current token to access the admin UI."
}

// NeedsFtpRoot reports whether the prompt also collects the ftp-root path
func (p Prompt) NeedsFtpRoot() bool {
	return p.Mode == PromptFirstRun
}

// PromptInput is what the operator submitted
type PromptInput struct {
	Token   string
	FtpRoot string
}

// BannerLevel is the severity of a banner message
type BannerLevel string

const (
	BannerOK    BannerLevel = "ok"
	BannerWarn  BannerLevel = "warn"
	BannerError BannerLevel = "err"
)

// View is the rendering layer the Controller drives. Implementations must not call
// back into the Controller from these methods.
type View interface {
	ShowPrompt(p Prompt)
	ClosePrompt()
	ShowBanner(level BannerLevel, msg string)
	ClearBanner()
	// ShowOffline is called on every offline entry; a call while the overlay is
	// already visible only refreshes the reason.
	ShowOffline(reason string)
	HideOffline()
}
