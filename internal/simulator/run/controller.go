// Package run drives one command execution at a time through
// Idle, Running and Resolved.
//
// A started run always resolves after the configured delay unless the
// controller is reset first, in which case the pending result is dropped.
// The controller owns the output panel so that the timer goroutine and page
// actions share one lock.
package run

import (
	"context"
	"strings"
	"sync"
	"time"

	apperrors "github.com/louisbranch/cypress-simulator/internal/platform/errors"
	"github.com/louisbranch/cypress-simulator/internal/simulator/command"
	"github.com/louisbranch/cypress-simulator/internal/simulator/output"
)

// DefaultDelay is how long a run stays in Running when Options.Delay is zero.
const DefaultDelay = time.Second

// State is the controller state.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateResolved State = "resolved"
)

// Classifier turns raw input into a result.
type Classifier interface {
	Classify(raw string) command.Result
}

// Resolution describes a finished run.
type Resolution struct {
	Entry    string
	Result   command.Result
	Duration time.Duration
}

// Options configures a Controller.
type Options struct {
	// Delay is the length of the Running phase. Negative means resolve on
	// the next timer tick.
	Delay time.Duration
	// Classifier defaults to the built-in command registry.
	Classifier Classifier
	// OnResolve is called outside the lock after each published result.
	OnResolve func(Resolution)
	// Now defaults to time.Now.
	Now func() time.Time
}

// Snapshot is a copy of the controller state for rendering.
type Snapshot struct {
	State  State
	Entry  string
	Output output.Snapshot
}

// Running reports whether new runs are currently refused.
func (s Snapshot) Running() bool {
	return s.State == StateRunning
}

// Controller serializes runs for one page.
type Controller struct {
	delay      time.Duration
	classifier Classifier
	onResolve  func(Resolution)
	now        func() time.Time

	mu         sync.Mutex
	state      State
	entry      string
	startedAt  time.Time
	generation uint64
	timer      *time.Timer
	done       chan struct{}
	panel      *output.Panel
}

// New returns an idle controller with an empty panel.
func New(opts Options) *Controller {
	delay := opts.Delay
	if delay == 0 {
		delay = DefaultDelay
	}
	if delay < 0 {
		delay = 0
	}
	classifier := opts.Classifier
	if classifier == nil {
		classifier = command.New(nil)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Controller{
		delay:      delay,
		classifier: classifier,
		onResolve:  opts.OnResolve,
		now:        now,
		state:      StateIdle,
		panel:      output.New(),
	}
}

// Start submits raw for classification. The panel switches to its pending
// message until the run resolves.
func (c *Controller) Start(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return apperrors.New(apperrors.CodeRunEmptyCommand, "command is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateRunning {
		return apperrors.New(apperrors.CodeRunInProgress, "a command is already running")
	}
	c.generation++
	generation := c.generation
	c.state = StateRunning
	c.entry = raw
	c.startedAt = c.now()
	c.done = make(chan struct{})
	c.panel.ShowPending()
	c.timer = time.AfterFunc(c.delay, func() {
		c.resolve(generation)
	})
	return nil
}

func (c *Controller) resolve(generation uint64) {
	c.mu.Lock()
	if generation != c.generation || c.state != StateRunning {
		c.mu.Unlock()
		return
	}
	result := c.classifier.Classify(c.entry)
	resolution := Resolution{
		Entry:    c.entry,
		Result:   result,
		Duration: c.now().Sub(c.startedAt),
	}
	c.state = StateResolved
	c.panel.Show(result)
	c.timer = nil
	close(c.done)
	c.done = nil
	onResolve := c.onResolve
	c.mu.Unlock()

	if onResolve != nil {
		onResolve(resolution)
	}
}

// Wait blocks until the in-flight run resolves or is reset. It returns
// immediately when nothing is running.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reset returns to Idle, clears the panel and drops any in-flight result.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.done != nil {
		close(c.done)
		c.done = nil
	}
	c.state = StateIdle
	c.entry = ""
	c.panel.Clear()
}

// ToggleOutput flips the panel between expanded and collapsed.
func (c *Controller) ToggleOutput() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.panel.Toggle()
}

// Snapshot copies the controller and panel state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:  c.state,
		Entry:  c.entry,
		Output: c.panel.Snapshot(),
	}
}
