package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

type BreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenProbes   int
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      15 * time.Second,
		HalfOpenProbes:   1,
	}
}

// Breaker trips after consecutive dependency failures and lets a limited
// number of probes through once the open timeout elapses.
type Breaker struct {
	mu  sync.Mutex
	cfg BreakerConfig
	now func() time.Time

	state     CircuitState
	failures  int
	openedAt  time.Time
	inFlight  int
	successes int
}

func NewBreaker(cfg BreakerConfig) *Breaker {
	defaults := DefaultBreakerConfig()
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaults.OpenTimeout
	}
	if cfg.HalfOpenProbes < 1 {
		cfg.HalfOpenProbes = defaults.HalfOpenProbes
	}
	return &Breaker{cfg: cfg, now: time.Now, state: CircuitStateClosed}
}

// Execute runs fn when the breaker admits it. countsAsFailure decides which
// errors belong to the dependency; business errors should not trip it.
func (b *Breaker) Execute(fn func() error, countsAsFailure func(error) bool) error {
	if b == nil || !b.cfg.Enabled {
		return fn()
	}
	if err := b.allow(); err != nil {
		return err
	}

	err := fn()
	if err != nil && (countsAsFailure == nil || countsAsFailure(err)) {
		b.recordFailure()
		return err
	}
	b.recordSuccess()
	return err
}

func (b *Breaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == CircuitStateOpen && b.now().Sub(b.openedAt) >= b.cfg.OpenTimeout {
		return CircuitStateHalfOpen
	}
	return b.state
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen {
		if b.now().Sub(b.openedAt) < b.cfg.OpenTimeout {
			return ErrCircuitOpen
		}
		b.transition(CircuitStateHalfOpen)
	}
	if b.state == CircuitStateHalfOpen {
		if b.inFlight >= b.cfg.HalfOpenProbes {
			return ErrCircuitOpen
		}
		b.inFlight++
	}
	return nil
}

func (b *Breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.failures = 0
	case CircuitStateHalfOpen:
		b.inFlight = max(b.inFlight-1, 0)
		b.successes++
		if b.successes >= b.cfg.HalfOpenProbes && b.inFlight == 0 {
			b.transition(CircuitStateClosed)
		}
	}
}

func (b *Breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.transition(CircuitStateOpen)
		}
	case CircuitStateHalfOpen, CircuitStateOpen:
		b.transition(CircuitStateOpen)
	}
}

func (b *Breaker) transition(state CircuitState) {
	b.state = state
	b.inFlight = 0
	b.successes = 0
	switch state {
	case CircuitStateOpen:
		b.openedAt = b.now()
	case CircuitStateClosed:
		b.failures = 0
		b.openedAt = time.Time{}
	}
}
