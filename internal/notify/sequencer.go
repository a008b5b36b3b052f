// Package notify spaces out announcements over time.
package notify

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Sequencer schedules items for display one delay apart, in input order.
// Each item gets its own timer; nothing is cancelled when a new game starts.
// Calling Schedule twice with the same items shows them twice.
type Sequencer[T any] struct {
	clock clockwork.Clock
	delay time.Duration
}

// New returns a Sequencer. A nil clock means the real clock.
func New[T any](c clockwork.Clock, delay time.Duration) *Sequencer[T] {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	return &Sequencer[T]{clock: c, delay: delay}
}

// Schedule arranges for show to be called with items[i] after i*delay.
// The first item is shown right away. It returns the number of items scheduled.
func (s *Sequencer[T]) Schedule(items []T, show func(T)) int {
	for i, item := range items {
		item := item
		if i == 0 {
			go show(item)
			continue
		}
		s.clock.AfterFunc(time.Duration(i)*s.delay, func() { show(item) })
	}
	return len(items)
}
