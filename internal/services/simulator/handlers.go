package simulator

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/louisbranch/cypress-simulator/internal/platform/errors"
	"github.com/louisbranch/cypress-simulator/internal/platform/i18n"
	"github.com/louisbranch/cypress-simulator/internal/platform/requestctx"
	"github.com/louisbranch/cypress-simulator/internal/services/simulator/platform/cookies"
	"github.com/louisbranch/cypress-simulator/internal/services/simulator/platform/httpx"
	"github.com/louisbranch/cypress-simulator/internal/services/simulator/routepath"
	"github.com/louisbranch/cypress-simulator/internal/services/simulator/templates"
	"github.com/louisbranch/cypress-simulator/internal/simulator/command"
	"github.com/louisbranch/cypress-simulator/internal/simulator/consent"
	"github.com/louisbranch/cypress-simulator/internal/simulator/page"
)

const maxFormBytes = 64 << 10

func (s *service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

// pageFor returns the page of the request's browser context.
func (s *service) pageFor(r *http.Request) (*page.Page, error) {
	clientID := requestctx.ClientIDFromContext(r.Context())
	if clientID == "" {
		return nil, apperrors.New(apperrors.CodeInvalidRequest, "browser context is missing")
	}
	return s.pages.Get(clientID)
}

func sessionToken(r *http.Request) string {
	token, _ := cookies.Read(r, cookies.SessionName)
	return token
}

func (s *service) startSpan(r *http.Request, name string) (context.Context, trace.Span) {
	ctx, span := s.tracer.Start(r.Context(), name)
	span.SetAttributes(
		attribute.String("simulator.client_id", requestctx.ClientIDFromContext(ctx)),
		attribute.String("http.request_id", requestctx.RequestIDFromContext(ctx)),
	)
	return ctx, span
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(apperrors.CodeOf(err)))
	}
	span.End()
}

func (s *service) handlePage(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "page.view")
	var err error
	defer func() { endSpan(span, err) }()

	p, err := s.pageFor(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if params, ok := page.ParseNavParams(r.URL.Query()); ok {
		p.Visit(params)
	}

	tag, persist := i18n.ResolveTag(r)
	if persist {
		i18n.SetLanguageCookie(w, tag)
	}

	token := sessionToken(r)
	seeded, _ := cookies.Read(r, cookies.ConsentName)
	view, err := p.View(ctx, token, seeded)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if token != "" && !view.Authenticated {
		cookies.ClearSession(w, r)
	}
	if view.Consent.Decided() && view.Consent != consent.State(seeded) {
		cookies.WriteConsent(w, r, view.Consent)
	}

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = templates.Page(templates.PageData{
		Lang: tag.String(),
		Loc:  i18n.Printer(tag),
		View: view,
	}).Render(ctx, w)
	if err != nil {
		s.logger.Printf("render page: %v", err)
	}
}

func (s *service) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "page.login")
	var err error
	defer func() { endSpan(span, err) }()

	p, err := s.pageFor(r)
	if err != nil {
		s.finishForm(w, r, err)
		return
	}
	token, err := p.Login(ctx, sessionToken(r))
	if err == nil && token != "" {
		s.writeSessionCookie(w, r, token)
	}
	s.finishForm(w, r, err)
}

func (s *service) handleCaptchaVerify(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "page.captcha_verify")
	var err error
	defer func() { endSpan(span, err) }()

	p, err := s.pageFor(r)
	if err != nil {
		s.finishForm(w, r, err)
		return
	}
	answer := formValue(w, r, "answer")
	token, outcome, err := p.VerifyCaptcha(ctx, answer)
	span.SetAttributes(attribute.String("simulator.captcha_outcome", string(outcome)))
	if err == nil && token != "" {
		s.writeSessionCookie(w, r, token)
	}
	s.finishForm(w, r, err)
}

func (s *service) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "page.logout")
	var err error
	defer func() { endSpan(span, err) }()

	p, err := s.pageFor(r)
	if err != nil {
		s.finishForm(w, r, err)
		return
	}
	err = p.Logout(ctx)
	cookies.ClearSession(w, r)
	s.finishForm(w, r, err)
}

func (s *service) handleMenuToggle(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "page.menu_toggle")
	var err error
	defer func() { endSpan(span, err) }()

	p, err := s.pageFor(r)
	if err != nil {
		s.finishForm(w, r, err)
		return
	}
	_, err = p.ToggleMenu(ctx, sessionToken(r))
	s.finishForm(w, r, err)
}

func (s *service) handleRun(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "page.run")
	var err error
	defer func() { endSpan(span, err) }()

	p, err := s.pageFor(r)
	if err != nil {
		s.finishForm(w, r, err)
		return
	}
	err = p.Run(ctx, sessionToken(r), formValue(w, r, "command"))
	s.finishForm(w, r, err)
}

func (s *service) handleOutputToggle(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "page.output_toggle")
	var err error
	defer func() { endSpan(span, err) }()

	p, err := s.pageFor(r)
	if err != nil {
		s.finishForm(w, r, err)
		return
	}
	_, err = p.ToggleOutput(ctx, sessionToken(r))
	s.finishForm(w, r, err)
}

func (s *service) handleConsent(state consent.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := s.startSpan(r, "page.consent")
		span.SetAttributes(attribute.String("simulator.consent", string(state)))
		var err error
		defer func() { endSpan(span, err) }()

		p, err := s.pageFor(r)
		if err != nil {
			s.finishForm(w, r, err)
			return
		}
		err = p.SetConsent(ctx, sessionToken(r), state)
		if err == nil {
			cookies.WriteConsent(w, r, state)
		}
		s.finishForm(w, r, err)
	}
}

func (s *service) handleAPIState(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "api.state")
	var err error
	defer func() { endSpan(span, err) }()

	p, err := s.pageFor(r)
	if err != nil {
		_ = httpx.WriteJSONError(w, err)
		return
	}
	seeded, _ := cookies.Read(r, cookies.ConsentName)
	view, err := p.View(ctx, sessionToken(r), seeded)
	if err != nil {
		s.logUnexpected(r, err)
		_ = httpx.WriteJSONError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	_ = httpx.WriteJSON(w, http.StatusOK, view)
}

type classifyRequest struct {
	Command string `json:"command"`
}

func (s *service) handleAPIClassify(w http.ResponseWriter, r *http.Request) {
	_, span := s.startSpan(r, "api.classify")
	var err error
	defer func() { endSpan(span, err) }()

	var req classifyRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormBytes))
	decoder.DisallowUnknownFields()
	if decodeErr := decoder.Decode(&req); decodeErr != nil {
		err = apperrors.Wrap(apperrors.CodeInvalidRequest, "request body must be {\"command\": string}", decodeErr)
		_ = httpx.WriteJSONError(w, err)
		return
	}
	result := s.interpreter.Classify(req.Command)
	span.SetAttributes(attribute.String("simulator.result_kind", string(result.Kind)))
	_ = httpx.WriteJSON(w, http.StatusOK, result)
}

type commandsResponse struct {
	Commands []command.CatalogEntry `json:"commands"`
}

func (s *service) handleAPICommands(w http.ResponseWriter, _ *http.Request) {
	_ = httpx.WriteJSON(w, http.StatusOK, commandsResponse{Commands: s.interpreter.Registry().Catalog()})
}

func (s *service) writeSessionCookie(w http.ResponseWriter, r *http.Request, token string) {
	sess, err := s.sessions.Verify(token)
	if err != nil {
		s.logger.Printf("verify fresh session token: %v", err)
		return
	}
	cookies.WriteSession(w, r, token, sess.ExpiresAt)
}

// finishForm redirects a form post back to the page. Domain errors leave the
// page in a recoverable state and are reflected by the next render, so only
// infrastructure failures produce an error response.
func (s *service) finishForm(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil && apperrors.HTTPStatus(err) >= http.StatusInternalServerError {
		s.writeError(w, r, err)
		return
	}
	httpx.WriteRedirect(w, r, routepath.Root)
}

func (s *service) writeError(w http.ResponseWriter, r *http.Request, err error) {
	s.logUnexpected(r, err)
	status := apperrors.HTTPStatus(err)
	http.Error(w, http.StatusText(status), status)
}

func (s *service) logUnexpected(r *http.Request, err error) {
	if err == nil || apperrors.HTTPStatus(err) < http.StatusInternalServerError {
		return
	}
	s.logger.Printf("request failed path=%s request_id=%s err=%v", r.URL.Path, requestctx.RequestIDFromContext(r.Context()), err)
}

func formValue(w http.ResponseWriter, r *http.Request, key string) string {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return ""
		}
	}
	return strings.TrimRight(r.PostFormValue(key), "\r\n")
}
