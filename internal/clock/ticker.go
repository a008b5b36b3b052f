// Package clock provides the per-session tick source.
package clock

import (
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
)

// ErrAlreadyStarted is returned when a Ticker is started a second time.
var ErrAlreadyStarted = errors.New("ticker already started")

// Ticker fires once per interval while armed. It can be started once and
// stopped any number of times. In production, use clockwork.NewRealClock().
// In tests, a fake clock.
type Ticker struct {
	clock    clockwork.Clock
	interval time.Duration
	ticker   clockwork.Ticker
	started  bool
	stopped  bool
}

// NewTicker returns a disarmed ticker. A nil clock means the real clock.
func NewTicker(c clockwork.Clock, interval time.Duration) *Ticker {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	return &Ticker{clock: c, interval: interval}
}

// Start arms the ticker.
func (t *Ticker) Start() error {
	if t.started {
		return ErrAlreadyStarted
	}
	t.started = true
	t.ticker = t.clock.NewTicker(t.interval)
	return nil
}

// Stop disarms the ticker. Stopping a stopped or never-started ticker is a no-op.
func (t *Ticker) Stop() {
	if t == nil || !t.started || t.stopped {
		return
	}
	t.stopped = true
	t.ticker.Stop()
}

// Armed reports whether ticks are being produced.
func (t *Ticker) Armed() bool {
	return t != nil && t.started && !t.stopped
}

// C returns the tick channel, or nil when not armed so that a select on it
// blocks forever.
func (t *Ticker) C() <-chan time.Time {
	if !t.Armed() {
		return nil
	}
	return t.ticker.Chan()
}
