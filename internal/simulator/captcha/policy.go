package captcha

import (
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
)

// ErrorPolicy decides whether a correct answer is rejected anyway. attempt is
// the 1-based attempt number against the current challenge.
type ErrorPolicy interface {
	RejectCorrect(attempt int) bool
}

// NeverReject accepts every correct answer.
type NeverReject struct{}

// RejectCorrect implements ErrorPolicy.
func (NeverReject) RejectCorrect(int) bool { return false }

// RatePolicy rejects correct answers with a fixed probability drawn from a
// seeded PRNG, so the same seed and rate replay the same decisions.
type RatePolicy struct {
	rate float64
	rng  *rand.Rand
}

// NewRatePolicy builds a policy for rate, clamped to [0, 1].
func NewRatePolicy(rate float64, seed uint64) *RatePolicy {
	return &RatePolicy{
		rate: clampRate(rate),
		rng:  rand.New(rand.NewPCG(seed, ^seed)),
	}
}

// Rate returns the clamped rejection probability.
func (p *RatePolicy) Rate() float64 {
	return p.rate
}

// RejectCorrect implements ErrorPolicy.
func (p *RatePolicy) RejectCorrect(int) bool {
	switch {
	case p.rate <= 0:
		return false
	case p.rate >= 1:
		return true
	default:
		return p.rng.Float64() < p.rate
	}
}

// ParseRate parses a chancesOfError value. Values outside [0, 1] are clamped;
// unparsable values report false.
func ParseRate(value string) (float64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	rate, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(rate) {
		return 0, false
	}
	return clampRate(rate), true
}

func clampRate(rate float64) float64 {
	if rate < 0 {
		return 0
	}
	if rate > 1 {
		return 1
	}
	return rate
}
