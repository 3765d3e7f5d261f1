// Package output holds the result panel under the command input.
package output

import "github.com/louisbranch/cypress-simulator/internal/simulator/command"

// Phase is what the panel currently shows.
type Phase string

const (
	PhaseEmpty   Phase = "empty"
	PhasePending Phase = "pending"
	PhaseReady   Phase = "ready"
)

// Snapshot is a copy of the panel for rendering.
type Snapshot struct {
	Phase    Phase
	Result   command.Result
	Expanded bool
}

// HasResult reports whether a classified result is on display.
func (s Snapshot) HasResult() bool {
	return s.Phase == PhaseReady
}

// Panel shows the last classified result and its expand/collapse state. It
// is not safe for concurrent use.
type Panel struct {
	phase    Phase
	result   command.Result
	expanded bool
}

// New returns an empty, collapsed panel.
func New() *Panel {
	return &Panel{phase: PhaseEmpty}
}

// ShowPending replaces the content with the transient running message.
func (p *Panel) ShowPending() {
	p.phase = PhasePending
	p.result = command.Result{}
	p.expanded = false
}

// Show displays result collapsed.
func (p *Panel) Show(result command.Result) {
	p.phase = PhaseReady
	p.result = result
	p.expanded = false
}

// Toggle flips between expanded and collapsed and reports the new state.
// Content is untouched. Toggling without a result is a no-op.
func (p *Panel) Toggle() bool {
	if p.phase != PhaseReady {
		return p.expanded
	}
	p.expanded = !p.expanded
	return p.expanded
}

// Clear empties the panel.
func (p *Panel) Clear() {
	p.phase = PhaseEmpty
	p.result = command.Result{}
	p.expanded = false
}

// Snapshot copies the current panel state.
func (p *Panel) Snapshot() Snapshot {
	return Snapshot{Phase: p.phase, Result: p.result, Expanded: p.expanded}
}
