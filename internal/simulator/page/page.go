// Package page is the command simulator page of one browser context.
//
// A Page ties the captcha gate, session manager, run controller and consent
// store together and renders their combined state as a View. All actions on
// one page are serialized by its mutex; the only asynchronous work is the run
// controller's timer.
package page

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	apperrors "github.com/louisbranch/cypress-simulator/internal/platform/errors"
	"github.com/louisbranch/cypress-simulator/internal/platform/random"
	"github.com/louisbranch/cypress-simulator/internal/simulator/captcha"
	"github.com/louisbranch/cypress-simulator/internal/simulator/consent"
	"github.com/louisbranch/cypress-simulator/internal/simulator/run"
	"github.com/louisbranch/cypress-simulator/internal/simulator/session"
)

// Config holds the collaborators shared by every page.
type Config struct {
	Sessions *session.Manager
	Consent  *consent.Manager
	// Classifier defaults to the built-in command registry.
	Classifier run.Classifier
	// RunDelay is the length of the Running phase.
	RunDelay time.Duration
	// CaptchaErrorRate is the default probability of rejecting a correct
	// captcha answer; a chancesOfError visit overrides it per page.
	CaptchaErrorRate float64
	Observer         Observer
	// Seed defaults to random.NewSeed.
	Seed func() (uint64, error)
	// Now defaults to time.Now.
	Now func() time.Time
}

func (c *Config) normalize() error {
	if c.Sessions == nil {
		return errors.New("session manager is required")
	}
	if c.Consent == nil {
		return errors.New("consent manager is required")
	}
	if c.Observer == nil {
		c.Observer = nopObserver{}
	}
	if c.Seed == nil {
		c.Seed = random.NewSeed
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return nil
}

// Page is the state of the simulator page for one browser context.
type Page struct {
	clientID string
	cfg      *Config

	mu           sync.Mutex
	gate         *captcha.Gate
	policySeed   uint64
	runs         *run.Controller
	entry        string
	menuOpen     bool
	stage        Stage
	captchaError bool
	nav          NavParams
	lastSeen     time.Time
}

// New builds a fresh page for clientID.
func New(clientID string, cfg Config) (*Page, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return newPage(clientID, &cfg)
}

func newPage(clientID string, cfg *Config) (*Page, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, apperrors.New(apperrors.CodeInvalidRequest, "client id is required")
	}
	gateSeed, err := cfg.Seed()
	if err != nil {
		return nil, fmt.Errorf("seed captcha gate: %w", err)
	}
	policySeed, err := cfg.Seed()
	if err != nil {
		return nil, fmt.Errorf("seed captcha policy: %w", err)
	}
	observer := cfg.Observer
	p := &Page{
		clientID: clientID,
		cfg:      cfg,
		gate: captcha.NewGate(captcha.Options{
			Seed:   gateSeed,
			Policy: captcha.NewRatePolicy(cfg.CaptchaErrorRate, policySeed),
		}),
		policySeed: policySeed,
		runs: run.New(run.Options{
			Delay:      cfg.RunDelay,
			Classifier: cfg.Classifier,
			OnResolve:  observer.RunResolved,
			Now:        cfg.Now,
		}),
		stage:    StageLanding,
		lastSeen: cfg.Now(),
	}
	return p, nil
}

// ClientID returns the browser context the page belongs to.
func (p *Page) ClientID() string {
	return p.clientID
}

// Visit applies navigation parameters the way a fresh page load does:
// transient state is reset while the session and consent are kept.
func (p *Page) Visit(nav NavParams) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.touch()

	p.nav = nav
	rate := p.cfg.CaptchaErrorRate
	if nav.ErrorRate != nil {
		rate = *nav.ErrorRate
	}
	p.gate.SetPolicy(captcha.NewRatePolicy(rate, p.policySeed))
	p.gate.Leave()
	p.runs.Reset()
	p.stage = StageLanding
	p.captchaError = false
	p.menuOpen = false
	p.entry = ""
}

// Login handles the Login button. With the captcha bypass it creates the
// session immediately and returns its token; otherwise it issues a fresh
// challenge and returns an empty token. Logging in while authenticated is a
// no-op.
func (p *Page) Login(ctx context.Context, token string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.touch()

	authenticated, err := p.authenticated(ctx, token)
	if err != nil {
		return "", err
	}
	if authenticated {
		return "", nil
	}
	if p.nav.SkipCaptcha {
		return p.startSession(ctx, LoginMethodBypass)
	}
	p.gate.Issue()
	p.stage = StageCaptcha
	p.captchaError = false
	return "", nil
}

// VerifyCaptcha checks answer against the outstanding challenge. On success
// it returns the new session token.
func (p *Page) VerifyCaptcha(ctx context.Context, answer string) (string, captcha.Outcome, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.touch()

	if p.stage != StageCaptcha {
		return "", captcha.OutcomeRejected, apperrors.New(apperrors.CodeCaptchaNotIssued, "captcha is not being shown")
	}
	outcome, err := p.gate.Verify(answer)
	if err != nil {
		return "", outcome, err
	}
	p.cfg.Observer.CaptchaVerified(outcome)
	if outcome == captcha.OutcomeRejected {
		p.captchaError = true
		return "", outcome, nil
	}
	token, err := p.startSession(ctx, LoginMethodCaptcha)
	if err != nil {
		return "", outcome, err
	}
	return token, outcome, nil
}

func (p *Page) startSession(ctx context.Context, method string) (string, error) {
	_, token, err := p.cfg.Sessions.Login(ctx, p.clientID)
	if err != nil {
		return "", err
	}
	p.cfg.Observer.LoginSucceeded(method)
	p.gate.Leave()
	p.stage = StageLanding
	p.captchaError = false
	p.menuOpen = false
	return token, nil
}

// Logout destroys the session and clears the entry, the output and the menu.
// A run still in flight is discarded.
func (p *Page) Logout(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.touch()

	if err := p.cfg.Sessions.Logout(ctx, p.clientID); err != nil {
		return err
	}
	p.runs.Reset()
	p.gate.Leave()
	p.entry = ""
	p.menuOpen = false
	p.stage = StageLanding
	p.captchaError = false
	return nil
}

// ToggleMenu opens or closes the sandwich menu and reports the new state.
func (p *Page) ToggleMenu(ctx context.Context, token string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.touch()

	if err := p.requireSession(ctx, token); err != nil {
		return false, err
	}
	p.menuOpen = !p.menuOpen
	return p.menuOpen, nil
}

// Run records raw as the entry and starts a run.
func (p *Page) Run(ctx context.Context, token, raw string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.touch()

	if err := p.requireSession(ctx, token); err != nil {
		return err
	}
	if p.runs.Snapshot().Running() {
		return apperrors.New(apperrors.CodeRunInProgress, "a command is already running")
	}
	p.entry = raw
	return p.runs.Start(raw)
}

// Wait blocks until the in-flight run, if any, resolves.
func (p *Page) Wait(ctx context.Context) error {
	return p.runs.Wait(ctx)
}

// ToggleOutput expands or collapses the result and reports the new state.
func (p *Page) ToggleOutput(ctx context.Context, token string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.touch()

	if err := p.requireSession(ctx, token); err != nil {
		return false, err
	}
	return p.runs.ToggleOutput(), nil
}

// SetConsent records the banner choice.
func (p *Page) SetConsent(ctx context.Context, token string, state consent.State) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.touch()

	if err := p.requireSession(ctx, token); err != nil {
		return err
	}
	return p.cfg.Consent.Record(ctx, p.clientID, state)
}

// View renders the page. seededConsent is the cookieConsent cookie value, if
// any; it only applies while consent is still unset.
func (p *Page) View(ctx context.Context, token, seededConsent string) (View, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.touch()

	authenticated, err := p.authenticated(ctx, token)
	if err != nil {
		return View{}, err
	}
	view := View{
		Authenticated: authenticated,
		SkipCaptcha:   p.nav.SkipCaptcha,
	}
	if !authenticated {
		view.Stage = p.stage
		if challenge, ok := p.gate.Current(); ok && p.stage == StageCaptcha {
			view.Captcha = &CaptchaView{
				Left:     challenge.Left,
				Right:    challenge.Right,
				Attempts: challenge.Attempts,
				Error:    p.captchaError,
			}
		}
		return view, nil
	}

	state, err := p.cfg.Consent.Seed(ctx, p.clientID, seededConsent)
	if err != nil {
		return View{}, err
	}
	snap := p.runs.Snapshot()
	view.Entry = p.entry
	view.RunState = snap.State
	view.RunEnabled = view.CanRun()
	view.OutputPending = snap.Running()
	view.OutputExpanded = snap.Output.Expanded
	if snap.Output.HasResult() {
		result := snap.Output.Result
		view.Output = &result
	}
	view.MenuOpen = p.menuOpen
	view.Consent = state
	view.ConsentBanner = consent.BannerVisible(state, authenticated)
	return view, nil
}

// Busy reports whether a run is in flight.
func (p *Page) Busy() bool {
	return p.runs.Snapshot().Running()
}

// LastSeen returns when the page last handled an action.
func (p *Page) LastSeen() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSeen
}

// Close stops any pending run timer.
func (p *Page) Close() {
	p.runs.Reset()
}

func (p *Page) markSeen() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.touch()
}

func (p *Page) touch() {
	p.lastSeen = p.cfg.Now()
}

func (p *Page) authenticated(ctx context.Context, token string) (bool, error) {
	if strings.TrimSpace(token) == "" {
		return false, nil
	}
	sess, ok, err := p.cfg.Sessions.Authenticate(ctx, token)
	if err != nil {
		return false, err
	}
	return ok && sess.ClientID == p.clientID, nil
}

func (p *Page) requireSession(ctx context.Context, token string) error {
	ok, err := p.authenticated(ctx, token)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.New(apperrors.CodeUnauthenticated, "login required")
	}
	return nil
}
