// Package session holds the game session value and its transition functions.
//
// Every transition is a pure function: it takes the current Session and
// returns the next one plus the events the change produced. The caller owns
// the single current session and decides when each transition is applied.
package session

import (
	"errors"
	"strings"
)

var (
	// ErrUsernameRequired is returned by Start when no username was given.
	ErrUsernameRequired = errors.New("username required")
	// ErrInProgress is returned by Start while a game is counting down or active.
	ErrInProgress = errors.New("game already in progress")
)

// Start begins a session through the explicit path: it resets the counters
// and enters the pre-roll. The previous session is discarded.
func Start(prev Session, id, username string, r Rules) (Session, []Event, error) {
	if prev.Playing() {
		return prev, nil, ErrInProgress
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return prev, nil, ErrUsernameRequired
	}

	next := Session{
		ID:            id,
		Status:        StatusCountingDown,
		Username:      username,
		ClickCount:    0,
		TimeRemaining: r.Duration,
	}
	return next, []Event{SessionStarted{
		SessionID: id,
		Username:  username,
		Duration:  r.Duration,
	}}, nil
}

// BeginPlay ends the pre-roll. It is a no-op unless the session is counting down.
func BeginPlay(s Session) (Session, []Event) {
	if s.Status != StatusCountingDown {
		return s, nil
	}
	s.Status = StatusActive
	return s, []Event{GoSignaled{SessionID: s.ID}}
}

// AutoStart begins a session from a click received while not playing. There
// is no pre-roll: the session goes straight to Active and the triggering click
// counts as click #1. The username may be empty and resolved at the end.
func AutoStart(prev Session, id, username string, r Rules) (Session, []Event) {
	if prev.Playing() {
		return prev, nil
	}
	username = strings.TrimSpace(username)
	next := Session{
		ID:            id,
		Status:        StatusActive,
		Username:      username,
		ClickCount:    0,
		TimeRemaining: r.Duration,
		AutoStarted:   true,
	}
	events := []Event{
		SessionStarted{SessionID: id, Username: username, AutoStart: true, Duration: r.Duration},
		GoSignaled{SessionID: id},
	}
	next, clickEvents := Click(next, r)
	return next, append(events, clickEvents...)
}

// Click counts one click. Clicks outside Active are ignored.
func Click(s Session, r Rules) (Session, []Event) {
	if s.Status != StatusActive {
		return s, nil
	}
	s.ClickCount++
	events := []Event{ClickRegistered{Count: s.ClickCount}}
	if r.MilestoneEvery > 0 && s.ClickCount%r.MilestoneEvery == 0 {
		events = append(events, MilestoneReached{Count: s.ClickCount})
	}
	return s, events
}

// Tick consumes one second. Reaching zero ends the session.
func Tick(s Session, r Rules) (Session, []Event) {
	if !s.Playing() || s.TimeRemaining <= 0 {
		return s, nil
	}
	s.TimeRemaining--
	events := []Event{TickOccurred{Remaining: s.TimeRemaining}}
	if s.TimeRemaining <= r.WarningAt {
		events = append(events, CountdownWarning{Remaining: s.TimeRemaining})
	}
	if s.TimeRemaining == 0 {
		s.Status = StatusEnded
		events = append(events, GameEnded{
			SessionID: s.ID,
			Username:  s.Username,
			Score:     s.ClickCount,
		})
	}
	return s, events
}

// Reset returns the session to Idle once its result has been dealt with.
// The final counts are kept for display until the next start.
func Reset(s Session) Session {
	if s.Playing() {
		return s
	}
	s.Status = StatusIdle
	return s
}
