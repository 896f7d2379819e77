package mock

import (
	"sync"
	"time"
)

// Clock provides an interface for time operations so tests can simulate
// token expiry without waiting for real time to pass.
type Clock interface {
	// Now returns the current time according to this clock
	Now() time.Time
}

// RealClock implements Clock using the actual system time.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// MockClock implements Clock with a controllable time value.
type MockClock struct {
	mu      sync.RWMutex
	current time.Time
}

// NewMockClock creates a new mock clock initialized to the given time.
// If t is zero, the clock is initialized to the current time.
func NewMockClock(t time.Time) *MockClock {
	if t.IsZero() {
		t = time.Now()
	}
	return &MockClock{current: t}
}

// Now returns the current time according to this mock clock.
func (m *MockClock) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Advance moves the clock forward by the given duration.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.current.Add(d)
}

// Ticker is a manually driven replacement for time.Ticker. Its Factory
// method matches the ticker constructor accepted by the keepalive.
type Ticker struct {
	C chan time.Time

	mu       sync.Mutex
	interval time.Duration
	started  bool
	stopped  bool
}

// NewTicker creates a ticker whose channel is unbuffered, so Tick only
// returns once the consumer has received the tick.
func NewTicker() *Ticker {
	return &Ticker{C: make(chan time.Time)}
}

// Factory records the requested interval and hands out the tick channel.
func (t *Ticker) Factory(d time.Duration) (<-chan time.Time, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.interval = d
	t.started = true
	return t.C, t.stop
}

// Tick delivers one tick and blocks until it is received.
func (t *Ticker) Tick() {
	t.C <- time.Now()
}

// Interval returns the interval the ticker was created with.
func (t *Ticker) Interval() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.interval
}

// Started reports whether Factory was called.
func (t *Ticker) Started() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.started
}

// Stopped reports whether the stop function returned by Factory was called.
func (t *Ticker) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

func (t *Ticker) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}
