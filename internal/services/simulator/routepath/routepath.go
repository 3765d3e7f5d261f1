// Package routepath names every route served by the simulator.
package routepath

const (
	Root           = "/"
	Login          = "/login"
	CaptchaVerify  = "/captcha/verify"
	Logout         = "/logout"
	MenuToggle     = "/menu/toggle"
	Run            = "/run"
	OutputToggle   = "/output/toggle"
	ConsentAccept  = "/consent/accept"
	ConsentDecline = "/consent/decline"
	APIState       = "/api/state"
	APIClassify    = "/api/classify"
	APICommands    = "/api/commands"
	StaticPrefix   = "/static/"
	Metrics        = "/metrics"
	Health         = "/healthz"
)

// Static returns the URL of an embedded asset.
func Static(name string) string {
	return StaticPrefix + name
}
