package game

import "github.com/fakeyudi/clickrush/internal/api"

const (
	EventNameUsernameRequested      = "submit.username_requested"
	EventNameScoreSubmitted         = "submit.succeeded"
	EventNameSubmissionFailed       = "submit.failed"
	EventNameScoreNotSaved          = "submit.declined"
	EventNameSessionReset           = "session.reset"
	EventNameAchievementUnlocked    = "achievement.unlocked"
	EventNameLeaderboardLoaded      = "leaderboard.loaded"
	EventNameAchievementsLoaded     = "achievements.loaded"
	EventNameUserAchievementsLoaded = "achievements.user_loaded"
)

// UsernameRequested suspends the submission until ResolveUsername is called.
type UsernameRequested struct {
	SessionID string
	Score     int
}

func (UsernameRequested) EventName() string { return EventNameUsernameRequested }

type ScoreSubmitted struct {
	SessionID     string
	Username      string
	Score         int
	Rank          int // 0 when the backend did not rank the score
	Achievements  []api.Achievement
	Notifications int // achievement announcements scheduled
}

func (ScoreSubmitted) EventName() string { return EventNameScoreSubmitted }

type SubmissionFailed struct {
	SessionID string
	Username  string
	Score     int
	Err       error
}

func (SubmissionFailed) EventName() string { return EventNameSubmissionFailed }

// ScoreNotSaved is emitted when the player declines to give a name.
type ScoreNotSaved struct {
	SessionID string
	Score     int
}

func (ScoreNotSaved) EventName() string { return EventNameScoreNotSaved }

// SessionReset means the game is idle again and a new start is accepted.
type SessionReset struct {
	SessionID string
}

func (SessionReset) EventName() string { return EventNameSessionReset }

type AchievementUnlocked struct {
	Achievement api.Achievement
}

func (AchievementUnlocked) EventName() string { return EventNameAchievementUnlocked }

type LeaderboardLoaded struct {
	Entries []api.LeaderboardEntry
	Err     error
}

func (LeaderboardLoaded) EventName() string { return EventNameLeaderboardLoaded }

type AchievementsLoaded struct {
	Catalog []api.Achievement
	Err     error
}

func (AchievementsLoaded) EventName() string { return EventNameAchievementsLoaded }

type UserAchievementsLoaded struct {
	Username     string
	Achievements []api.Achievement
	Err          error
}

func (UserAchievementsLoaded) EventName() string { return EventNameUserAchievementsLoaded }
