package api

import "time"

// LeaderboardEntry is one row of GET /api/leaderboard.
type LeaderboardEntry struct {
	Rank     int       `json:"rank"`
	Username string    `json:"username"`
	Clicks   int       `json:"clicks"`
	GameDate time.Time `json:"game_date"`
}

// Achievement is a catalog entry or, from the per-user endpoint and score
// submission, an unlocked achievement (AchievementID and EarnedAt set).
type Achievement struct {
	ID            int        `json:"id,omitempty"`
	AchievementID int        `json:"achievement_id,omitempty"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Icon          string     `json:"icon,omitempty"`
	Color         string     `json:"color,omitempty"`
	MinCPS        float64    `json:"min_cps,omitempty"`
	MaxCPS        *float64   `json:"max_cps,omitempty"`
	EarnedAt      *time.Time `json:"earned_at,omitempty"`
}

// Range renders the click-rate band, e.g. "5.0 - 7.9 CPS" or "8.0+ CPS".
func (a Achievement) Range() string {
	if a.MaxCPS != nil {
		return formatCPS(a.MinCPS) + " - " + formatCPS(*a.MaxCPS) + " CPS"
	}
	return formatCPS(a.MinCPS) + "+ CPS"
}

// ScoreRequest is the body of POST /api/scores.
type ScoreRequest struct {
	Username string `json:"username"`
	Clicks   int    `json:"clicks"`
}

// Score is the stored score row the backend echoes back.
type Score struct {
	ID              int       `json:"id"`
	UserID          int       `json:"user_id"`
	Username        string    `json:"username"`
	Clicks          int       `json:"clicks"`
	GameDate        time.Time `json:"game_date"`
	DurationSeconds int       `json:"duration_seconds"`
}

// ScoreResult is the response of POST /api/scores. Every field is optional.
type ScoreResult struct {
	Rank         *int          `json:"rank,omitempty"`
	Score        *Score        `json:"score,omitempty"`
	Achievements []Achievement `json:"achievements,omitempty"`
}
