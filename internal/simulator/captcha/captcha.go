// Package captcha issues arithmetic challenges that gate login.
package captcha

import (
	"math/rand/v2"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/cypress-simulator/internal/platform/errors"
)

const (
	defaultMinOperand = 1
	defaultMaxOperand = 10
)

// Outcome is the result of verifying an answer.
type Outcome string

const (
	OutcomeRejected      Outcome = "rejected"
	OutcomeAuthenticated Outcome = "authenticated"
)

// Challenge is one issued arithmetic question.
type Challenge struct {
	Left     int
	Right    int
	Attempts int
}

// ExpectedAnswer returns the sum the user must enter.
func (c Challenge) ExpectedAnswer() int {
	return c.Left + c.Right
}

// Options configures a Gate.
type Options struct {
	// Seed drives operand generation.
	Seed uint64
	// Policy decides whether a correct answer is still rejected. Nil never
	// rejects.
	Policy ErrorPolicy
	// MinOperand and MaxOperand bound both operands (inclusive).
	MinOperand int
	MaxOperand int
}

// Gate owns the current challenge for one page. It is not safe for
// concurrent use; the owning page serializes access.
type Gate struct {
	rng      *rand.Rand
	policy   ErrorPolicy
	min, max int
	current  *Challenge
}

// NewGate builds a gate with no challenge issued.
func NewGate(opts Options) *Gate {
	min, max := opts.MinOperand, opts.MaxOperand
	if min <= 0 {
		min = defaultMinOperand
	}
	if max < min {
		max = defaultMaxOperand
	}
	if max < min {
		max = min
	}
	policy := opts.Policy
	if policy == nil {
		policy = NeverReject{}
	}
	return &Gate{
		rng:    rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		policy: policy,
		min:    min,
		max:    max,
	}
}

// SetPolicy replaces the error-injection policy; nil never rejects.
func (g *Gate) SetPolicy(policy ErrorPolicy) {
	if policy == nil {
		policy = NeverReject{}
	}
	g.policy = policy
}

// Issue discards any current challenge and issues a fresh one.
func (g *Gate) Issue() Challenge {
	challenge := Challenge{
		Left:  g.operand(),
		Right: g.operand(),
	}
	g.current = &challenge
	return challenge
}

// Current returns the outstanding challenge.
func (g *Gate) Current() (Challenge, bool) {
	if g.current == nil {
		return Challenge{}, false
	}
	return *g.current, true
}

// Leave discards the outstanding challenge without verifying it.
func (g *Gate) Leave() {
	g.current = nil
}

// Verify checks answer against the outstanding challenge. A wrong answer
// keeps the same challenge; a correct one consumes it. An empty answer is a
// precondition failure and does not count as an attempt.
func (g *Gate) Verify(answer string) (Outcome, error) {
	if g.current == nil {
		return OutcomeRejected, apperrors.New(apperrors.CodeCaptchaNotIssued, "no captcha challenge has been issued")
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return OutcomeRejected, apperrors.New(apperrors.CodeCaptchaEmptyAnswer, "captcha answer is required")
	}

	g.current.Attempts++
	value, err := strconv.Atoi(answer)
	if err != nil || value != g.current.ExpectedAnswer() {
		return OutcomeRejected, nil
	}
	if g.policy.RejectCorrect(g.current.Attempts) {
		return OutcomeRejected, nil
	}
	g.current = nil
	return OutcomeAuthenticated, nil
}

func (g *Gate) operand() int {
	return g.min + g.rng.IntN(g.max-g.min+1)
}
