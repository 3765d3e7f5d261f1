// Package simulator hosts the browser-facing command simulator service.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/cypress-simulator/internal/platform/telemetry/metrics"
	"github.com/louisbranch/cypress-simulator/internal/services/simulator/platform/httpx"
	"github.com/louisbranch/cypress-simulator/internal/services/simulator/platform/observability"
	"github.com/louisbranch/cypress-simulator/internal/services/simulator/routepath"
	simulatorstatic "github.com/louisbranch/cypress-simulator/internal/services/simulator/static"
	"github.com/louisbranch/cypress-simulator/internal/services/simulator/storage"
	"github.com/louisbranch/cypress-simulator/internal/simulator/captcha"
	"github.com/louisbranch/cypress-simulator/internal/simulator/command"
	"github.com/louisbranch/cypress-simulator/internal/simulator/consent"
	"github.com/louisbranch/cypress-simulator/internal/simulator/page"
	"github.com/louisbranch/cypress-simulator/internal/simulator/run"
	"github.com/louisbranch/cypress-simulator/internal/simulator/session"
)

const (
	tracerName = "github.com/louisbranch/cypress-simulator/internal/services/simulator"

	sessionSweepInterval = 10 * time.Minute
)

// Config defines startup inputs for the simulator service.
type Config struct {
	HTTPAddr         string
	Store            storage.Store
	SessionSecret    []byte
	SessionTTL       time.Duration
	RunDelay         time.Duration
	CaptchaErrorRate float64
	PageIdleTTL      time.Duration
	// Metrics defaults to a fresh registry.
	Metrics *metrics.Metrics
	// Logger defaults to log.Default().
	Logger *log.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// service holds the composed dependencies shared by handlers and background
// loops.
type service struct {
	store       storage.Store
	sessions    *session.Manager
	pages       *page.Registry
	interpreter *command.Interpreter
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	logger      *log.Logger
	now         func() time.Time
}

func newService(cfg Config) (*service, error) {
	if cfg.Store == nil {
		return nil, errors.New("storage is required")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	m := cfg.Metrics
	if m == nil {
		m = metrics.New()
	}

	sessions, err := session.NewManager(cfg.Store, session.Config{
		Secret: cfg.SessionSecret,
		TTL:    cfg.SessionTTL,
		Now:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("session manager: %w", err)
	}
	consents, err := consent.NewManager(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("consent manager: %w", err)
	}
	interpreter := command.New(nil)
	pages, err := page.NewRegistry(page.Config{
		Sessions:         sessions,
		Consent:          consents,
		Classifier:       interpreter,
		RunDelay:         cfg.RunDelay,
		CaptchaErrorRate: cfg.CaptchaErrorRate,
		Observer:         metricsObserver{metrics: m},
		Now:              now,
	}, cfg.PageIdleTTL)
	if err != nil {
		return nil, fmt.Errorf("page registry: %w", err)
	}
	m.TrackPages(pages.Len)

	return &service{
		store:       cfg.Store,
		sessions:    sessions,
		pages:       pages,
		interpreter: interpreter,
		metrics:     m,
		tracer:      otel.Tracer(tracerName),
		logger:      logger,
		now:         now,
	}, nil
}

// NewHandler builds the root handler.
func NewHandler(cfg Config) (http.Handler, error) {
	svc, err := newService(cfg)
	if err != nil {
		return nil, err
	}
	return svc.handler(), nil
}

func (s *service) handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET "+routepath.StaticPrefix, http.StripPrefix(routepath.StaticPrefix, http.FileServer(http.FS(simulatorstatic.FS))))
	mux.Handle("GET "+routepath.Metrics, s.metrics.Handler())
	mux.HandleFunc("GET "+routepath.Health, s.handleHealth)

	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("POST "+routepath.Login, s.handleLogin)
	mux.HandleFunc("POST "+routepath.CaptchaVerify, s.handleCaptchaVerify)
	mux.HandleFunc("POST "+routepath.Logout, s.handleLogout)
	mux.HandleFunc("POST "+routepath.MenuToggle, s.handleMenuToggle)
	mux.HandleFunc("POST "+routepath.Run, s.handleRun)
	mux.HandleFunc("POST "+routepath.OutputToggle, s.handleOutputToggle)
	mux.HandleFunc("POST "+routepath.ConsentAccept, s.handleConsent(consent.Accepted))
	mux.HandleFunc("POST "+routepath.ConsentDecline, s.handleConsent(consent.Declined))

	mux.HandleFunc("GET "+routepath.APIState, s.handleAPIState)
	mux.HandleFunc("POST "+routepath.APIClassify, s.handleAPIClassify)
	mux.HandleFunc("GET "+routepath.APICommands, s.handleAPICommands)

	return httpx.Chain(mux,
		httpx.RecoverPanic(),
		httpx.RequestID(),
		observability.RequestLogger(s.logger),
		withClient(s.logger),
		s.metrics.RequestTracking(func(r *http.Request) string { return r.Pattern }),
	)
}

// runBackground prunes idle pages and sweeps expired sessions until ctx is
// done.
func (s *service) runBackground(ctx context.Context) {
	go s.pages.RunPruner(ctx)

	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepSessions(ctx)
		}
	}
}

func (s *service) sweepSessions(ctx context.Context) {
	removed, err := s.store.DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		s.logger.Printf("sweep expired sessions: %v", err)
		return
	}
	if removed > 0 {
		s.logger.Printf("swept %d expired sessions", removed)
	}
}

func (s *service) close() {
	s.pages.Close()
}

// metricsObserver reports page events to Prometheus.
type metricsObserver struct {
	metrics *metrics.Metrics
}

func (o metricsObserver) LoginSucceeded(method string) {
	o.metrics.RecordLogin(method)
}

func (o metricsObserver) CaptchaVerified(outcome captcha.Outcome) {
	o.metrics.RecordCaptcha(string(outcome))
}

func (o metricsObserver) RunResolved(resolution run.Resolution) {
	o.metrics.RecordRun(string(resolution.Result.Kind), resolution.Duration)
}
