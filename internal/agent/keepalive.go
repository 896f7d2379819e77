package agent

import (
	"context"
	"time"

	"mcpagent/pkg/logging"
)

// DefaultHeartbeatInterval is the fixed pause between heartbeats while idle.
const DefaultHeartbeatInterval = 60 * time.Second

// Keepalive blocks after the request has completed, logging a heartbeat
// every interval. It has no stopping condition of its own: it runs until its
// context is cancelled.
type Keepalive struct {
	enabled     bool
	interval    time.Duration
	newTicker   func(time.Duration) (<-chan time.Time, func())
	tokenExpiry func() time.Time
	now         func() time.Time
	onHeartbeat func(count int)
	onIdle      func()
}

// KeepaliveOption configures a Keepalive.
type KeepaliveOption func(*Keepalive)

// WithTicker replaces the time.Ticker used between heartbeats.
func WithTicker(newTicker func(time.Duration) (<-chan time.Time, func())) KeepaliveOption {
	return func(k *Keepalive) {
		k.newTicker = newTicker
	}
}

// WithTokenExpiry lets the keepalive warn once the access token used by the
// connection has passed its advisory expiry. A zero time means no expiry.
func WithTokenExpiry(expiry func() time.Time) KeepaliveOption {
	return func(k *Keepalive) {
		k.tokenExpiry = expiry
	}
}

// WithClock overrides time.Now for the expiry check.
func WithClock(now func() time.Time) KeepaliveOption {
	return func(k *Keepalive) {
		k.now = now
	}
}

// WithHeartbeatHook is called after every heartbeat with the running count.
func WithHeartbeatHook(fn func(count int)) KeepaliveOption {
	return func(k *Keepalive) {
		k.onHeartbeat = fn
	}
}

// WithIdleHook is called once when the keepalive enters idle mode.
func WithIdleHook(fn func()) KeepaliveOption {
	return func(k *Keepalive) {
		k.onIdle = fn
	}
}

// NewKeepalive creates a keepalive. The enabled flag is read once, here.
func NewKeepalive(enabled bool, opts ...KeepaliveOption) *Keepalive {
	k := &Keepalive{
		enabled:   enabled,
		interval:  DefaultHeartbeatInterval,
		newTicker: realTicker,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Enabled reports whether Run will block.
func (k *Keepalive) Enabled() bool {
	return k != nil && k.enabled
}

// Run returns immediately when disabled. Otherwise it heartbeats until ctx is
// cancelled and then returns nil.
func (k *Keepalive) Run(ctx context.Context) error {
	if !k.Enabled() {
		return nil
	}

	logging.Info("Keepalive", "Entering idle mode, heartbeat every %s", k.interval)

	ticks, stop := k.newTicker(k.interval)
	defer stop()

	if k.onIdle != nil {
		k.onIdle()
	}

	warned := false
	count := 0
	for {
		select {
		case <-ctx.Done():
			logging.Info("Keepalive", "Idle loop stopped after %d heartbeats", count)
			return nil

		case <-ticks:
			count++
			logging.Info("Keepalive", "Worker still running...")

			if !warned && k.tokenExpired() {
				warned = true
				logging.Warn("Keepalive", "Access token expired at %s and is not refreshed; the connection may be rejected",
					k.tokenExpiry().Format(time.RFC3339))
			}

			if k.onHeartbeat != nil {
				k.onHeartbeat(count)
			}
		}
	}
}

func (k *Keepalive) tokenExpired() bool {
	if k.tokenExpiry == nil {
		return false
	}
	expiry := k.tokenExpiry()
	return !expiry.IsZero() && k.now().After(expiry)
}

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}
