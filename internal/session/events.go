package session

// Event is emitted on every observable state transition. Consumers switch on
// the concrete type; EventName gives a stable string for logs.
type Event interface {
	EventName() string
}

const (
	EventNameSessionStarted   = "session.started"
	EventNameGoSignaled       = "session.go"
	EventNameClickRegistered  = "click.registered"
	EventNameMilestoneReached = "click.milestone"
	EventNameTickOccurred     = "clock.tick"
	EventNameCountdownWarning = "clock.warning"
	EventNameGameEnded        = "session.ended"
)

// SessionStarted is emitted when a fresh session begins, either into the
// pre-roll or, for auto-start, straight into play.
type SessionStarted struct {
	SessionID string
	Username  string
	AutoStart bool
	Duration  int
}

func (SessionStarted) EventName() string { return EventNameSessionStarted }

// GoSignaled marks the transition into Active.
type GoSignaled struct {
	SessionID string
}

func (GoSignaled) EventName() string { return EventNameGoSignaled }

type ClickRegistered struct {
	Count int
}

func (ClickRegistered) EventName() string { return EventNameClickRegistered }

type MilestoneReached struct {
	Count int
}

func (MilestoneReached) EventName() string { return EventNameMilestoneReached }

type TickOccurred struct {
	Remaining int
}

func (TickOccurred) EventName() string { return EventNameTickOccurred }

// CountdownWarning accompanies every tick at or below the warning threshold.
type CountdownWarning struct {
	Remaining int
}

func (CountdownWarning) EventName() string { return EventNameCountdownWarning }

// GameEnded carries the final score. Emitted exactly once per session.
type GameEnded struct {
	SessionID string
	Username  string
	Score     int
}

func (GameEnded) EventName() string { return EventNameGameEnded }
