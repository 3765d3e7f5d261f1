package command

import (
	"fmt"
	"sort"
	"strings"
)

// Call is a parsed invocation handed to a simulation.
type Call struct {
	Name string
	Raw  string
	Args []string
}

// Arg returns the i-th decoded argument, or "" when absent.
func (c Call) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

// Entry describes one registered command.
type Entry struct {
	Implemented bool
	Usage       string
	Description string
	Simulate    func(Call) string
}

// CatalogEntry is the public listing of a registered command.
type CatalogEntry struct {
	Name        string `json:"name"`
	Usage       string `json:"usage,omitempty"`
	Description string `json:"description,omitempty"`
	Implemented bool   `json:"implemented"`
}

// Registry is a closed mapping from command name (without the cy. prefix) to
// its entry. Names absent from the registry are unrecognized commands.
type Registry struct {
	entries map[string]Entry
}

// NewRegistry builds a registry from entries. Implemented entries must carry a
// Simulate function.
func NewRegistry(entries map[string]Entry) (*Registry, error) {
	copied := make(map[string]Entry, len(entries))
	for name, entry := range entries {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("command name is required")
		}
		if entry.Implemented && entry.Simulate == nil {
			return nil, fmt.Errorf("command %q is implemented but has no simulation", name)
		}
		copied[name] = entry
	}
	return &Registry{entries: copied}, nil
}

// Lookup returns the entry registered under name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	if r == nil {
		return Entry{}, false
	}
	entry, ok := r.entries[name]
	return entry, ok
}

// Catalog lists every registered command sorted by name.
func (r *Registry) Catalog() []CatalogEntry {
	if r == nil {
		return nil
	}
	out := make([]CatalogEntry, 0, len(r.entries))
	for name, entry := range r.entries {
		out = append(out, CatalogEntry{
			Name:        commandPrefix + name,
			Usage:       entry.Usage,
			Description: entry.Description,
			Implemented: entry.Implemented,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

var defaultRegistry = mustDefaultRegistry()

// DefaultRegistry returns the built-in command registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

func mustDefaultRegistry() *Registry {
	entries := map[string]Entry{
		"log": {
			Implemented: true,
			Usage:       "cy.log(message)",
			Description: "Prints a message to the Command Log",
			Simulate: func(c Call) string {
				return fmt.Sprintf("Logged message '%s'", c.Arg(0))
			},
		},
		"visit": {
			Implemented: true,
			Usage:       "cy.visit(url)",
			Description: "Visits a given URL",
			Simulate: func(c Call) string {
				return fmt.Sprintf("Visited URL '%s'", c.Arg(0))
			},
		},
		"get": {
			Implemented: true,
			Usage:       "cy.get(selector)",
			Description: "Gets one or more DOM elements by selector",
			Simulate: func(c Call) string {
				return fmt.Sprintf("Found element(s) matching '%s'", c.Arg(0))
			},
		},
		"wait": {
			Implemented: true,
			Usage:       "cy.wait(ms)",
			Description: "Waits for a number of milliseconds or an aliased route",
			Simulate:    simulateWait,
		},
		"viewport": {
			Implemented: true,
			Usage:       "cy.viewport(width, height)",
			Description: "Controls the size of the application under test",
			Simulate:    simulateViewport,
		},
		"title": {
			Implemented: true,
			Usage:       "cy.title()",
			Description: "Gets the document title",
			Simulate:    func(Call) string { return "Yielded the document title" },
		},
		"url": {
			Implemented: true,
			Usage:       "cy.url()",
			Description: "Gets the current URL",
			Simulate:    func(Call) string { return "Yielded the current URL" },
		},
		"reload": {
			Implemented: true,
			Usage:       "cy.reload()",
			Description: "Reloads the page",
			Simulate:    func(Call) string { return "Reloaded the page" },
		},
		"clearCookies": {
			Implemented: true,
			Usage:       "cy.clearCookies()",
			Description: "Clears all browser cookies for the current domain",
			Simulate:    func(Call) string { return "Cleared all cookies" },
		},
		"clearLocalStorage": {
			Implemented: true,
			Usage:       "cy.clearLocalStorage()",
			Description: "Clears local storage for the current domain",
			Simulate:    func(Call) string { return "Cleared local storage" },
		},
	}
	for _, name := range []string{
		"contains", "find", "within", "should", "and", "intercept", "request",
		"fixture", "wrap", "session", "origin", "task", "exec", "readFile",
		"writeFile", "screenshot", "scrollTo", "go", "location", "window",
		"document", "hash", "clock", "tick", "focused", "spy", "stub",
	} {
		entries[name] = Entry{Usage: commandPrefix + name + "()"}
	}
	registry, err := NewRegistry(entries)
	if err != nil {
		panic(err)
	}
	return registry
}

func simulateWait(c Call) string {
	target := c.Arg(0)
	if strings.HasPrefix(target, "@") {
		return fmt.Sprintf("Waited for alias '%s'", target)
	}
	if target == "" {
		target = "0"
	}
	return fmt.Sprintf("Waited for %s milliseconds", target)
}

func simulateViewport(c Call) string {
	if len(c.Args) >= 2 {
		return fmt.Sprintf("Viewport set to %sx%s pixels", c.Arg(0), c.Arg(1))
	}
	return fmt.Sprintf("Viewport set to preset '%s'", c.Arg(0))
}
