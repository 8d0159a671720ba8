// Package circuitbreaker stops calls to a failing collaborator until it has
// had time to recover. Circuits are keyed, so one misbehaving inference
// model is isolated while the others keep flowing.
package circuitbreaker

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// State is the position of a single circuit.
type State int

const (
	StateClosed   State = iota // requests flow
	StateOpen                  // requests rejected until the cooldown passes
	StateHalfOpen              // one probe in flight
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	}
	return "unknown"
}

var transitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ayabridge",
	Subsystem: "circuitbreaker",
	Name:      "state_transitions_total",
	Help:      "Circuit breaker state transitions by key, from-state, and to-state.",
}, []string{"key", "from_state", "to_state"})

func init() {
	prometheus.MustRegister(transitionsTotal)
}

const (
	defaultThreshold = 5
	defaultCooldown  = 30 * time.Second
)

// circuit is the state machine for one key. All methods assume the owning
// Breaker's lock is held.
type circuit struct {
	key      string
	state    State
	strikes  int
	openedAt time.Time
}

func (c *circuit) moveTo(to State) {
	if c.state == to {
		return
	}
	transitionsTotal.WithLabelValues(c.key, c.state.String(), to.String()).Inc()
	c.state = to
}

func (c *circuit) admit(now time.Time, cooldown time.Duration) bool {
	switch c.state {
	case StateOpen:
		if now.Sub(c.openedAt) < cooldown {
			return false
		}
		c.moveTo(StateHalfOpen)
		return true // the probe
	case StateHalfOpen:
		// A probe is already out; hold further traffic until it reports.
		return false
	}
	return true
}

func (c *circuit) succeed() {
	c.strikes = 0
	if c.state == StateHalfOpen {
		c.moveTo(StateClosed)
	}
}

func (c *circuit) fail(now time.Time, threshold int) {
	c.strikes++
	c.openedAt = now
	if c.state == StateHalfOpen || c.strikes >= threshold {
		c.moveTo(StateOpen)
	}
}

// Breaker holds one circuit per key. A circuit trips after threshold
// consecutive failures and admits a single probe once cooldown has passed;
// the probe's outcome decides whether it closes again or re-opens.
type Breaker struct {
	mu        sync.Mutex
	circuits  map[string]*circuit
	threshold int
	cooldown  time.Duration
	now       func() time.Time
}

// New creates a breaker. Non-positive arguments fall back to defaults.
func New(threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = defaultThreshold
	}
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	return &Breaker{
		circuits:  make(map[string]*circuit),
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// Allow reports whether a request for key may proceed right now. An open
// circuit past its cooldown admits exactly one probe.
func (b *Breaker) Allow(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.circuits[key]
	if !ok {
		return true
	}
	return c.admit(b.now(), b.cooldown)
}

// RecordSuccess clears the strike count for key and closes a probing
// circuit.
func (b *Breaker) RecordSuccess(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if c, ok := b.circuits[key]; ok {
		c.succeed()
	}
}

// RecordFailure adds a strike for key, tripping the circuit at the
// threshold. A failure while probing re-opens immediately.
func (b *Breaker) RecordFailure(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.circuits[key]
	if !ok {
		c = &circuit{key: key}
		b.circuits[key] = c
	}
	c.fail(b.now(), b.threshold)
}

// State returns the circuit state for key; unknown keys are closed.
func (b *Breaker) State(key string) State {
	b.mu.Lock()
	defer b.mu.Unlock()

	if c, ok := b.circuits[key]; ok {
		return c.state
	}
	return StateClosed
}
