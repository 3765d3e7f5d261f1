package page

import (
	"strings"

	"github.com/louisbranch/cypress-simulator/internal/simulator/command"
	"github.com/louisbranch/cypress-simulator/internal/simulator/consent"
	"github.com/louisbranch/cypress-simulator/internal/simulator/run"
)

// Stage is the pre-login step shown to an anonymous visitor.
type Stage string

const (
	StageLanding Stage = "landing"
	StageCaptcha Stage = "captcha"
)

// CaptchaView is the outstanding challenge as shown to the user.
type CaptchaView struct {
	Left     int  `json:"left"`
	Right    int  `json:"right"`
	Attempts int  `json:"attempts"`
	Error    bool `json:"error"`
}

// View is the state of every addressable element on the page.
type View struct {
	Authenticated bool         `json:"authenticated"`
	Stage         Stage        `json:"stage,omitempty"`
	Captcha       *CaptchaView `json:"captcha,omitempty"`
	SkipCaptcha   bool         `json:"skip_captcha"`

	Entry          string          `json:"entry"`
	RunState       run.State       `json:"run_state"`
	RunEnabled     bool            `json:"run_enabled"`
	OutputPending  bool            `json:"output_pending"`
	Output         *command.Result `json:"output,omitempty"`
	OutputExpanded bool            `json:"output_expanded"`
	MenuOpen       bool            `json:"menu_open"`

	Consent       consent.State `json:"consent"`
	ConsentBanner bool          `json:"consent_banner"`
}

// Running reports whether the run control is busy.
func (v View) Running() bool {
	return v.RunState == run.StateRunning
}

// CanRun reports whether the run control accepts a submission: the entry is
// non-blank and no run is in flight.
func (v View) CanRun() bool {
	return !v.Running() && strings.TrimSpace(v.Entry) != ""
}
