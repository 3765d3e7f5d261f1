package page

import (
	"github.com/louisbranch/cypress-simulator/internal/simulator/captcha"
	"github.com/louisbranch/cypress-simulator/internal/simulator/run"
)

// Login methods reported to observers.
const (
	LoginMethodCaptcha = "captcha"
	LoginMethodBypass  = "bypass"
)

// Observer receives page events, typically for metrics.
type Observer interface {
	LoginSucceeded(method string)
	CaptchaVerified(outcome captcha.Outcome)
	RunResolved(resolution run.Resolution)
}

type nopObserver struct{}

func (nopObserver) LoginSucceeded(string)           {}
func (nopObserver) CaptchaVerified(captcha.Outcome) {}
func (nopObserver) RunResolved(run.Resolution)      {}
