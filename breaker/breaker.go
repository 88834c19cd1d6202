package breaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned while the breaker is refusing upstream requests.
var ErrOpen = errors.New("breaker: upstream circuit is open")

// State is the breaker state.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

// String returns the state name used in logs and health details.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Defaults applied by New.
const (
	DefaultMaxFailures  = 5
	DefaultResetTimeout = 30 * time.Second
)

// Config configures a Breaker.
type Config struct {
	Enabled bool `yaml:"enabled"`

	// MaxFailures is the number of consecutive failures that opens the breaker.
	// Default: 5
	MaxFailures int `yaml:"max_failures"`

	// ResetTimeout is how long the breaker stays open before probing.
	// Default: 30s
	ResetTimeout time.Duration `yaml:"reset_timeout"`

	// OnStateChange is called with the lock held; it must not call back
	// into the Breaker.
	OnStateChange func(from, to State) `yaml:"-"`
}

// Breaker is a consecutive-failure circuit breaker. It is safe for
// concurrent use.
type Breaker struct {
	maxFailures   int
	resetTimeout  time.Duration
	onStateChange func(from, to State)
	now           func() time.Time

	mu          sync.Mutex
	state       State
	failures    int
	openedAt    time.Time
	probing     bool
	lastFailure time.Time
}

// New creates a closed Breaker.
func New(cfg Config) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = DefaultMaxFailures
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = DefaultResetTimeout
	}
	return &Breaker{
		maxFailures:   cfg.MaxFailures,
		resetTimeout:  cfg.ResetTimeout,
		onStateChange: cfg.OnStateChange,
		now:           time.Now,
	}
}

// Allow reports whether a request may be sent. Every nil return must be
// followed by exactly one call to Record.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.currentLocked() {
	case StateOpen:
		return ErrOpen
	case StateHalfOpen:
		if b.probing {
			return ErrOpen
		}
		b.probing = true
	}
	return nil
}

// Record reports the outcome of a request admitted by Allow.
func (b *Breaker) Record(failed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if failed {
		b.lastFailure = b.now()
	}

	switch b.state {
	case StateClosed:
		if !failed {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.maxFailures {
			b.transitionLocked(StateOpen)
		}

	case StateHalfOpen:
		b.probing = false
		if failed {
			b.transitionLocked(StateOpen)
			return
		}
		b.failures = 0
		b.transitionLocked(StateClosed)
	}
}

// abandon releases an Allow without recording an outcome.
func (b *Breaker) abandon() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateHalfOpen {
		b.probing = false
	}
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentLocked()
}

// RetryAfter returns how long until an open breaker admits a probe, or zero.
func (b *Breaker) RetryAfter() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.currentLocked() != StateOpen {
		return 0
	}
	return b.resetTimeout - b.now().Sub(b.openedAt)
}

// Snapshot is a point-in-time view of the breaker.
type Snapshot struct {
	State       State
	Failures    int
	LastFailure time.Time
}

// Snapshot returns the current counters.
func (b *Breaker) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Snapshot{
		State:       b.currentLocked(),
		Failures:    b.failures,
		LastFailure: b.lastFailure,
	}
}

// Reset closes the breaker and clears its failure count.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.probing = false
	b.transitionLocked(StateClosed)
}

func (b *Breaker) currentLocked() State {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.resetTimeout {
		b.transitionLocked(StateHalfOpen)
	}
	return b.state
}

func (b *Breaker) transitionLocked(to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	switch to {
	case StateOpen:
		b.openedAt = b.now()
	case StateHalfOpen:
		b.probing = false
	}
	if b.onStateChange != nil {
		b.onStateChange(from, to)
	}
}
