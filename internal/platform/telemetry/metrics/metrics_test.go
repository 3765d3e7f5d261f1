package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordersIncrementCounters(t *testing.T) {
	t.Parallel()

	m := New()
	m.RecordRun("success", 250*time.Millisecond)
	m.RecordRun("success", time.Second)
	m.RecordRun("error", time.Second)
	m.RecordCaptcha("rejected")
	m.RecordLogin("bypass")

	if got := testutil.ToFloat64(m.RunsTotal.WithLabelValues("success")); got != 2 {
		t.Fatalf("runs{success} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CaptchaTotal.WithLabelValues("rejected")); got != 1 {
		t.Fatalf("captcha{rejected} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.LoginsTotal.WithLabelValues("bypass")); got != 1 {
		t.Fatalf("logins{bypass} = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.RunDuration); got != 1 {
		t.Fatalf("run duration series = %d, want 1", got)
	}
}

func TestRequestTrackingLabelsRouteAndStatus(t *testing.T) {
	t.Parallel()

	m := New()
	h := m.RequestTracking(func(r *http.Request) string {
		if r.URL.Path == "/run" {
			return "/run"
		}
		return ""
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/run" {
			w.WriteHeader(http.StatusSeeOther)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	for _, path := range []string{"/run", "/missing"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, path, nil))
	}

	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodPost, "/run", "303")); got != 1 {
		t.Fatalf("requests{/run,303} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodPost, "other", "404")); got != 1 {
		t.Fatalf("requests{other,404} = %v, want 1", got)
	}
}

func TestHandlerExposesRegistry(t *testing.T) {
	t.Parallel()

	m := New()
	m.TrackPages(func() int { return 3 })
	m.RecordLogin("captcha")

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	body, _ := io.ReadAll(rr.Body)
	for _, marker := range []string{
		`simulator_logins_total{method="captcha"} 1`,
		"simulator_pages_active 3",
	} {
		if !strings.Contains(string(body), marker) {
			t.Fatalf("metrics output missing %q", marker)
		}
	}
}
