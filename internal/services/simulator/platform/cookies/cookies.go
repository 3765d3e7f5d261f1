// Package cookies centralizes the simulator's browser cookies.
//
// The client cookie identifies a browser context and scopes the page,
// session and consent to it. The session cookie carries the signed session
// token. The consent cookie mirrors the recorded consent choice and can
// pre-seed it.
package cookies

import (
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/cypress-simulator/internal/simulator/consent"
)

const (
	// ClientName identifies the browser context.
	ClientName = "cs_client"
	// SessionName carries the session token.
	SessionName = "cs_session"
	// ConsentName mirrors the consent choice.
	ConsentName = consent.StorageKey

	longLived = 365 * 24 * time.Hour
)

// Read returns the trimmed value of cookie name when present.
func Read(r *http.Request, name string) (string, bool) {
	if r == nil {
		return "", false
	}
	cookie, err := r.Cookie(name)
	if err != nil || cookie == nil {
		return "", false
	}
	value := strings.TrimSpace(cookie.Value)
	if value == "" {
		return "", false
	}
	return value, true
}

// WriteClient sets the long-lived browser-context cookie.
func WriteClient(w http.ResponseWriter, r *http.Request, clientID string) {
	write(w, r, ClientName, clientID, longLived, true)
}

// WriteSession sets the session cookie until expiresAt.
func WriteSession(w http.ResponseWriter, r *http.Request, token string, expiresAt time.Time) {
	maxAge := time.Until(expiresAt)
	if maxAge <= 0 {
		ClearSession(w, r)
		return
	}
	write(w, r, SessionName, token, maxAge, true)
}

// ClearSession expires the session cookie.
func ClearSession(w http.ResponseWriter, r *http.Request) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   isHTTPS(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// WriteConsent mirrors a decided consent state. It stays readable by scripts
// so the page can hide the banner without a round trip.
func WriteConsent(w http.ResponseWriter, r *http.Request, state consent.State) {
	if !state.Decided() {
		return
	}
	write(w, r, ConsentName, string(state), longLived, false)
}

func write(w http.ResponseWriter, r *http.Request, name, value string, maxAge time.Duration, httpOnly bool) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    strings.TrimSpace(value),
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: httpOnly,
		Secure:   isHTTPS(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func isHTTPS(r *http.Request) bool {
	if r == nil {
		return false
	}
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")), "https")
}
