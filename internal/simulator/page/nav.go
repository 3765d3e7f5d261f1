package page

import (
	"net/url"
	"strings"

	"github.com/louisbranch/cypress-simulator/internal/simulator/captcha"
)

const (
	// SkipCaptchaParam bypasses the captcha step when set to "true".
	SkipCaptchaParam = "skipCaptcha"
	// ErrorRateParam sets the probability (0..1) of rejecting a correct
	// captcha answer.
	ErrorRateParam = "chancesOfError"
)

// NavParams are the navigation parameters a visit may carry.
type NavParams struct {
	SkipCaptcha bool
	// ErrorRate overrides the configured captcha error rate when non-nil.
	ErrorRate *float64
}

// ParseNavParams reads navigation parameters from a query string. ok is
// false when none were present, so a plain reload keeps earlier settings.
func ParseNavParams(query url.Values) (NavParams, bool) {
	var (
		params NavParams
		found  bool
	)
	if raw, present := query[SkipCaptchaParam]; present {
		found = true
		params.SkipCaptcha = len(raw) > 0 && strings.EqualFold(strings.TrimSpace(raw[0]), "true")
	}
	if raw := query.Get(ErrorRateParam); raw != "" {
		if rate, ok := captcha.ParseRate(raw); ok {
			found = true
			params.ErrorRate = &rate
		}
	}
	return params, found
}
