// Package backoff computes reconnection delays from failure history.
//
// Transient failures follow an exponential schedule with full jitter,
// capped and floored. A clean server-initiated close uses a fixed idle
// delay with mild jitter instead, so an orderly close is never penalized
// with growing backoff. Server-dictated delays (Retry-After) bypass this
// package entirely.
package backoff

import (
	"math"
	"math/rand"
	"time"
)

// Defaults for the exponential schedule and the idle reconnect delay.
const (
	DefaultBase      = 2 * time.Second
	DefaultCap       = 30 * time.Second
	DefaultFloor     = 2 * time.Second
	DefaultIdleDelay = 3 * time.Second
)

// Policy computes retry delays. Create one with NewPolicy; the zero
// value has no defaults applied.
type Policy struct {
	// Base is the first-attempt delay before jitter.
	Base time.Duration

	// Cap bounds the exponential delay before jitter.
	Cap time.Duration

	// Floor bounds every computed delay from below, regardless of
	// source, so reconnection storms never go below a safe minimum.
	Floor time.Duration

	// IdleDelay is the fixed delay used after a clean server close.
	IdleDelay time.Duration

	randFloat func() float64
}

// NewPolicy creates a policy with the package defaults.
func NewPolicy() *Policy {
	return &Policy{
		Base:      DefaultBase,
		Cap:       DefaultCap,
		Floor:     DefaultFloor,
		IdleDelay: DefaultIdleDelay,
		randFloat: rand.Float64,
	}
}

// NewPolicyWithSource creates a policy with an injectable random source,
// for deterministic tests.
func NewPolicyWithSource(randFloat func() float64) *Policy {
	p := NewPolicy()
	p.randFloat = randFloat
	return p
}

// NextTransient returns the delay for the given 0-indexed attempt:
// min(Base * 2^attempt, Cap) * (0.5 + rand[0,1)), floored.
func (p *Policy) NextTransient(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	delay := float64(p.Base) * math.Pow(2, float64(attempt))
	if delay > float64(p.Cap) {
		delay = float64(p.Cap)
	}

	delay *= 0.5 + p.rand()

	return p.floored(time.Duration(delay))
}

// IdleReconnect returns the delay after a clean server close:
// IdleDelay * (0.8 + rand[0,0.4)), floored. It is independent of the
// exponential attempt counter.
func (p *Policy) IdleReconnect() time.Duration {
	delay := float64(p.IdleDelay) * (0.8 + p.rand()*0.4)
	return p.floored(time.Duration(delay))
}

func (p *Policy) floored(d time.Duration) time.Duration {
	if d < p.Floor {
		return p.Floor
	}
	return d
}

func (p *Policy) rand() float64 {
	if p.randFloat == nil {
		return rand.Float64()
	}
	return p.randFloat()
}
