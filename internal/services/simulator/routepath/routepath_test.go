package routepath

import "testing"

func TestTopLevelRouteConstants(t *testing.T) {
	t.Parallel()

	if Root != "/" {
		t.Fatalf("Root = %q", Root)
	}
	if Login != "/login" {
		t.Fatalf("Login = %q", Login)
	}
	if CaptchaVerify != "/captcha/verify" {
		t.Fatalf("CaptchaVerify = %q", CaptchaVerify)
	}
	if Run != "/run" {
		t.Fatalf("Run = %q", Run)
	}
	if Health != "/healthz" {
		t.Fatalf("Health = %q", Health)
	}
}

func TestStatic(t *testing.T) {
	t.Parallel()

	if got := Static("app.js"); got != "/static/app.js" {
		t.Fatalf("Static() = %q", got)
	}
}
