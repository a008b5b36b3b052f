package session

import "time"

// Status is the lifecycle phase of a game session.
type Status int

const (
	StatusIdle Status = iota
	StatusCountingDown
	StatusActive
	StatusEnded
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusCountingDown:
		return "counting down"
	case StatusActive:
		return "active"
	case StatusEnded:
		return "ended"
	}
	return "unknown"
}

// Rules holds the tunables the state machine needs.
type Rules struct {
	Duration       int // seconds per game
	WarningAt      int // emit CountdownWarning once TimeRemaining <= WarningAt
	MilestoneEvery int // emit MilestoneReached every N clicks
}

// DefaultRules returns the classic 10 second game.
func DefaultRules() Rules {
	return Rules{
		Duration:       10,
		WarningAt:      3,
		MilestoneEvery: 10,
	}
}

// Session is the single mutable game entity. It is a plain value: transition
// functions take one and return the next.
type Session struct {
	ID            string `json:"id"`
	Status        Status `json:"status"`
	Username      string `json:"username,omitempty"`
	ClickCount    int    `json:"click_count"`
	TimeRemaining int    `json:"time_remaining"`
	AutoStarted   bool   `json:"auto_started"`
}

// Playing reports whether the session is counting down or active.
func (s Session) Playing() bool {
	return s.Status == StatusCountingDown || s.Status == StatusActive
}

// Result is a finished game as kept in the local history.
type Result struct {
	SessionID       string    `json:"session_id"`
	Username        string    `json:"username,omitempty"`
	Clicks          int       `json:"clicks"`
	DurationSeconds int       `json:"duration_seconds"`
	AutoStarted     bool      `json:"auto_started"`
	Saved           bool      `json:"saved"` // false when declined or the submission failed
	Rank            int       `json:"rank,omitempty"`
	Achievements    []string  `json:"achievements,omitempty"`
	EndedAt         time.Time `json:"ended_at"`
}

// CPS returns clicks per second over the game duration.
func (r Result) CPS() float64 {
	if r.DurationSeconds <= 0 {
		return 0
	}
	return float64(r.Clicks) / float64(r.DurationSeconds)
}
