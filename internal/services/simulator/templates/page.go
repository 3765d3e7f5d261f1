package templates

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/louisbranch/cypress-simulator/internal/services/simulator/routepath"
	"github.com/louisbranch/cypress-simulator/internal/simulator/command"
	"github.com/louisbranch/cypress-simulator/internal/simulator/page"
)

// RefreshSeconds is the meta-refresh interval while a run is in flight.
const RefreshSeconds = 1

// PageData is everything the page layout needs.
type PageData struct {
	Lang string
	Loc  Localizer
	View page.View
}

// Page renders the full document for the current view.
func Page(data PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		lang := data.Lang
		if lang == "" {
			lang = "en-US"
		}
		w.raw("<!DOCTYPE html>\n<html")
		w.attr("lang", lang)
		w.raw("><head><meta charset=\"utf-8\">")
		w.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		if data.View.Running() {
			w.raw(`<meta http-equiv="refresh"`)
			w.attr("content", strconv.Itoa(RefreshSeconds))
			w.raw(">")
		}
		w.raw("<title>")
		w.text(T(data.Loc, "page.title"))
		w.raw("</title><link rel=\"stylesheet\"")
		w.attr("href", routepath.Static("app.css"))
		w.raw("></head><body>")
		if w.err != nil {
			return w.err
		}

		var body templ.Component
		if data.View.Authenticated {
			body = Simulator(data.Loc, data.View)
		} else {
			body = Login(data.Loc, data.View)
		}
		if err := body.Render(ctx, out); err != nil {
			return err
		}

		w.raw("<script defer")
		w.attr("src", routepath.Static("app.js"))
		w.raw("></script></body></html>\n")
		return w.err
	})
}

// Login renders the landing step or the captcha step.
func Login(loc Localizer, view page.View) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<main id="login" class="login">`)
		w.raw("<h1>")
		w.text(T(loc, "login.heading"))
		w.raw("</h1>")
		if view.Stage == page.StageCaptcha && view.Captcha != nil {
			writeCaptcha(w, loc, view.Captcha)
		} else {
			w.raw(`<form method="post"`)
			w.attr("action", routepath.Login)
			w.raw(`><button type="submit" id="loginButton">`)
			w.text(T(loc, "login.button"))
			w.raw("</button></form>")
		}
		w.raw("</main>")
		return w.err
	})
}

func writeCaptcha(w *writer, loc Localizer, challenge *page.CaptchaView) {
	w.raw(`<form method="post" class="captcha"`)
	w.attr("action", routepath.CaptchaVerify)
	w.raw(`><label for="captchaInput">`)
	w.text(T(loc, "captcha.question", challenge.Left, challenge.Right))
	w.raw(`</label><input id="captchaInput" name="answer" type="text" inputmode="numeric" autocomplete="off" value=""`)
	w.attr("placeholder", T(loc, "captcha.placeholder"))
	w.raw(`><button type="submit" id="verifyCaptcha" disabled>`)
	w.text(T(loc, "captcha.verify"))
	w.raw("</button>")
	if challenge.Error {
		w.raw(`<p id="captchaError" class="error" role="alert">`)
		w.text(T(loc, "captcha.error"))
		w.raw("</p>")
	}
	w.raw("</form>")
}

// Simulator renders the authenticated view: menu, input, output and the
// consent banner.
func Simulator(loc Localizer, view page.View) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, out io.Writer) error {
		w := &writer{w: out}
		writeHeader(w, loc, view)
		w.raw(`<main class="simulator">`)

		w.raw(`<form method="post" class="run"`)
		w.attr("action", routepath.Run)
		w.raw(`><textarea id="codeInput" name="command" rows="3" spellcheck="false"`)
		w.attr("placeholder", T(loc, "input.placeholder"))
		w.flag("readonly", view.Running())
		w.raw(">")
		w.text(view.Entry)
		w.raw(`</textarea><button type="submit" id="runButton"`)
		w.flag("disabled", !view.CanRun())
		w.flag("data-busy", view.Running())
		w.raw(">")
		if view.Running() {
			w.text(T(loc, "run.busy"))
		} else {
			w.text(T(loc, "run.button"))
		}
		w.raw("</button></form>")

		writeOutput(w, loc, view)
		w.raw("</main>")

		if view.ConsentBanner {
			writeConsent(w, loc)
		}
		return w.err
	})
}

func writeHeader(w *writer, loc Localizer, view page.View) {
	w.raw(`<header class="topbar"><form method="post"`)
	w.attr("action", routepath.MenuToggle)
	w.raw(`><button type="submit" id="sandwich-menu"`)
	w.attr("aria-label", T(loc, "menu.toggle"))
	w.attr("aria-expanded", strconv.FormatBool(view.MenuOpen))
	w.raw(`><span class="bar"></span><span class="bar"></span><span class="bar"></span></button></form>`)
	if view.MenuOpen {
		w.raw(`<nav id="menu" class="menu"><form method="post"`)
		w.attr("action", routepath.Logout)
		w.raw(`><button type="submit" id="logoutButton">`)
		w.text(T(loc, "menu.logout"))
		w.raw("</button></form></nav>")
	}
	w.raw("</header>")
}

func writeOutput(w *writer, loc Localizer, view page.View) {
	state := "collapsed"
	if view.OutputExpanded {
		state = "expanded"
	}
	w.raw(`<section id="outputArea" aria-live="polite"`)
	switch {
	case view.OutputPending:
		w.attr("class", "output pending")
		w.raw(">")
		w.text(T(loc, "run.pending"))
	case view.Output != nil:
		w.attr("class", "output "+string(view.Output.Kind)+" "+state)
		w.attr("data-kind", string(view.Output.Kind))
		w.raw(">")
		writeResult(w, view.Output)
		writeToggle(w, loc, view.OutputExpanded)
	default:
		w.attr("class", "output empty")
		w.raw(">")
	}
	w.raw("</section>")
}

func writeResult(w *writer, result *command.Result) {
	w.raw(`<div class="result"><strong class="headline">`)
	w.text(result.Headline)
	w.raw("</strong>")
	lines := strings.Split(result.Detail, "\n")
	if len(lines) == 1 {
		w.raw(` <span class="detail">`)
		writeLine(w, lines[0], result.Link)
		w.raw("</span>")
	} else {
		w.raw(`<ul class="detail">`)
		for _, line := range lines {
			w.raw("<li>")
			writeLine(w, line, result.Link)
			w.raw("</li>")
		}
		w.raw("</ul>")
	}
	w.raw("</div>")
}

// writeLine renders line, turning the first occurrence of the link text
// into an anchor that opens in a new browsing context.
func writeLine(w *writer, line string, link *command.Link) {
	if link == nil || link.Text == "" {
		w.text(line)
		return
	}
	before, after, found := strings.Cut(line, link.Text)
	if !found {
		w.text(line)
		return
	}
	w.text(before)
	w.raw("<a")
	w.attr("href", string(templ.URL(link.URL)))
	w.raw(` target="_blank" rel="noopener noreferrer">`)
	w.text(link.Text)
	w.raw("</a>")
	w.text(after)
}

func writeToggle(w *writer, loc Localizer, expanded bool) {
	w.raw(`<form method="post"`)
	w.attr("action", routepath.OutputToggle)
	w.raw(`><button type="submit" class="expand-collapse"`)
	w.attr("aria-expanded", strconv.FormatBool(expanded))
	w.raw(">")
	if expanded {
		w.raw(`<span id="collapseIcon"`)
		w.attr("title", T(loc, "output.collapse"))
		w.raw(">&minus;</span>")
	} else {
		w.raw(`<span id="expandIcon"`)
		w.attr("title", T(loc, "output.expand"))
		w.raw(">+</span>")
	}
	w.raw("</button></form>")
}

func writeConsent(w *writer, loc Localizer) {
	w.raw(`<div id="cookieConsent" class="consent" role="dialog"><p>`)
	w.text(T(loc, "consent.message"))
	w.raw(`</p><form method="post"`)
	w.attr("action", routepath.ConsentAccept)
	w.raw(`><button type="submit">`)
	w.text(T(loc, "consent.accept"))
	w.raw(`</button></form><form method="post"`)
	w.attr("action", routepath.ConsentDecline)
	w.raw(`><button type="submit">`)
	w.text(T(loc, "consent.decline"))
	w.raw("</button></form></div>")
}
