package command

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	commandPrefix = "cy."
	helpToken     = "help"

	// DocsURL is the external API reference surfaced by the help result.
	DocsURL = "https://docs.cypress.io/api/table-of-contents"

	helpHeadline = "Common Cypress commands and examples:"
	helpFooter   = "For more commands and details, visit the official Cypress API documentation."
	helpLinkText = "official Cypress API documentation"
)

var (
	namePattern = regexp.MustCompile(`^cy\.([A-Za-z_$][A-Za-z0-9_$]*)`)

	helpExamples = []string{
		"cy.visit(url) - Visits a given URL, e.g. cy.visit('https://example.com')",
		"cy.get(selector) - Gets DOM element(s) by selector, e.g. cy.get('button')",
		"cy.contains(content) - Gets the DOM element containing the text, e.g. cy.contains('Login')",
		"cy.log(message) - Prints a message to the Command Log, e.g. cy.log('Hello, World!')",
		"cy.wait(ms) - Waits for a number of milliseconds, e.g. cy.wait(1000)",
		"cy.viewport(width, height) - Sets the viewport size, e.g. cy.viewport(1280, 720)",
	}
)

// Interpreter classifies raw input against a registry.
type Interpreter struct {
	registry *Registry
}

// New builds an interpreter; a nil registry selects DefaultRegistry.
func New(registry *Registry) *Interpreter {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Interpreter{registry: registry}
}

// Registry returns the registry the interpreter classifies against.
func (i *Interpreter) Registry() *Registry {
	return i.registry
}

var defaultInterpreter = New(nil)

// Classify classifies raw with the default registry.
func Classify(raw string) Result {
	return defaultInterpreter.Classify(raw)
}

// Classify maps raw input to exactly one Result. It never fails.
func (i *Interpreter) Classify(raw string) Result {
	input := strings.TrimSpace(raw)
	if input == helpToken {
		return helpResult()
	}

	match := namePattern.FindStringSubmatch(input)
	if match == nil {
		return invalidResult(raw)
	}
	name := match[1]
	entry, ok := i.registry.Lookup(name)
	if !ok {
		return invalidResult(raw)
	}

	argsText, tail, ok := splitInvocation(strings.TrimSpace(input[len(match[0]):]))
	if !ok {
		return Result{
			Kind:     KindError,
			Headline: KindError.Label() + ":",
			Detail:   fmt.Sprintf("Missing parentheses on `%s%s` command", commandPrefix, name),
		}
	}
	if tail = strings.TrimSpace(tail); tail != "" && tail != ";" {
		return invalidResult(raw)
	}

	if !entry.Implemented {
		return Result{
			Kind:     KindWarning,
			Headline: KindWarning.Label() + ":",
			Detail:   fmt.Sprintf("The `%s%s` command has not been implemented yet.", commandPrefix, name),
		}
	}

	call := Call{Name: name, Raw: input, Args: splitArgs(argsText)}
	return Result{
		Kind:     KindSuccess,
		Headline: KindSuccess.Label() + ":",
		Detail:   input + " // " + entry.Simulate(call),
	}
}

// invalidResult echoes the input exactly as typed.
func invalidResult(raw string) Result {
	return Result{
		Kind:     KindError,
		Headline: KindError.Label() + ":",
		Detail:   "Invalid Cypress command: " + raw,
	}
}

func helpResult() Result {
	lines := make([]string, 0, len(helpExamples)+1)
	lines = append(lines, helpExamples...)
	lines = append(lines, helpFooter)
	return Result{
		Kind:     KindHelp,
		Headline: helpHeadline,
		Detail:   strings.Join(lines, "\n"),
		Link:     &Link{Text: helpLinkText, URL: DocsURL},
	}
}

// splitInvocation expects text to open with "(" and returns the text between
// it and its matching ")" plus whatever follows. Quotes are honored so a
// parenthesis inside a string literal does not count.
func splitInvocation(text string) (args string, tail string, ok bool) {
	if !strings.HasPrefix(text, "(") {
		return "", "", false
	}
	depth := 0
	var quote rune
	escaped := false
	for i, r := range text {
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == quote:
				quote = 0
			}
			continue
		}
		switch r {
		case '\'', '"', '`':
			quote = r
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return text[1:i], text[i+1:], true
			}
		}
	}
	return "", "", false
}

// splitArgs splits an argument list at top-level commas and decodes string
// literals.
func splitArgs(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var (
		args    []string
		start   int
		depth   int
		quote   rune
		escaped bool
	)
	for i, r := range text {
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == quote:
				quote = 0
			}
			continue
		}
		switch r {
		case '\'', '"', '`':
			quote = r
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, decodeArg(text[start:i]))
				start = i + 1
			}
		}
	}
	return append(args, decodeArg(text[start:]))
}

func decodeArg(text string) string {
	text = strings.TrimSpace(text)
	if len(text) < 2 {
		return text
	}
	first, last := text[0], text[len(text)-1]
	if first != last || (first != '\'' && first != '"' && first != '`') {
		return text
	}
	body := text[1 : len(text)-1]
	var b strings.Builder
	escaped := false
	for _, r := range body {
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
