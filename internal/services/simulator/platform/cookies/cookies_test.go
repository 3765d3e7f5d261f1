package cookies

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/louisbranch/cypress-simulator/internal/simulator/consent"
)

func responseCookie(t *testing.T, rr *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, cookie := range rr.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestReadTrimsAndRejectsEmpty(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: ClientName, Value: " abc "})
	req.AddCookie(&http.Cookie{Name: SessionName, Value: ""})

	if got, ok := Read(req, ClientName); !ok || got != "abc" {
		t.Fatalf("Read(client) = (%q, %v)", got, ok)
	}
	if _, ok := Read(req, SessionName); ok {
		t.Fatal("empty cookie must read as missing")
	}
	if _, ok := Read(nil, ClientName); ok {
		t.Fatal("nil request must read as missing")
	}
}

func TestWriteSessionAndClear(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.Header.Set("X-Forwarded-Proto", "https")

	rr := httptest.NewRecorder()
	WriteSession(rr, req, "token", time.Now().Add(time.Hour))
	cookie := responseCookie(t, rr, SessionName)
	if cookie.Value != "token" || !cookie.HttpOnly || !cookie.Secure || cookie.MaxAge <= 0 {
		t.Fatalf("unexpected session cookie %+v", cookie)
	}

	rr = httptest.NewRecorder()
	ClearSession(rr, req)
	if cookie := responseCookie(t, rr, SessionName); cookie.MaxAge >= 0 {
		t.Fatalf("clear must expire the cookie, got MaxAge %d", cookie.MaxAge)
	}
}

func TestWriteConsentOnlyWhenDecided(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/consent/accept", nil)

	rr := httptest.NewRecorder()
	WriteConsent(rr, req, consent.Unset)
	if len(rr.Result().Cookies()) != 0 {
		t.Fatal("unset consent must not write a cookie")
	}

	rr = httptest.NewRecorder()
	WriteConsent(rr, req, consent.Accepted)
	cookie := responseCookie(t, rr, ConsentName)
	if cookie.Value != "accepted" || cookie.HttpOnly {
		t.Fatalf("unexpected consent cookie %+v", cookie)
	}
}
