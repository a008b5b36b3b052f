// Package report renders leaderboards, achievements and local history for
// the command line.
package report

import (
	"time"

	"github.com/fakeyudi/clickrush/internal/api"
	"github.com/fakeyudi/clickrush/internal/session"
)

// Kind selects which section a Report carries.
type Kind string

const (
	KindLeaderboard Kind = "leaderboard"
	KindCatalog     Kind = "achievements"
	KindUnlocked    Kind = "user_achievements"
	KindHistory     Kind = "history"
)

// Report is the complete, renderable representation of one CLI listing.
type Report struct {
	Kind         Kind                   `json:"kind"`
	GeneratedAt  time.Time              `json:"generated_at"`
	BackendURL   string                 `json:"backend_url,omitempty"`
	Username     string                 `json:"username,omitempty"` // KindUnlocked only
	Leaderboard  []api.LeaderboardEntry `json:"leaderboard,omitempty"`
	Achievements []api.Achievement      `json:"achievements,omitempty"`
	History      []session.Result       `json:"history,omitempty"`
}

// Leaderboard builds a leaderboard report.
func Leaderboard(entries []api.LeaderboardEntry, backendURL string, now time.Time) *Report {
	return &Report{Kind: KindLeaderboard, GeneratedAt: now, BackendURL: backendURL, Leaderboard: entries}
}

// Catalog builds a report of every achievement.
func Catalog(achievements []api.Achievement, backendURL string, now time.Time) *Report {
	return &Report{Kind: KindCatalog, GeneratedAt: now, BackendURL: backendURL, Achievements: achievements}
}

// Unlocked builds a report of what username has earned.
func Unlocked(username string, achievements []api.Achievement, backendURL string, now time.Time) *Report {
	return &Report{Kind: KindUnlocked, GeneratedAt: now, BackendURL: backendURL, Username: username, Achievements: achievements}
}

// History builds a report of locally recorded games.
func History(results []session.Result, now time.Time) *Report {
	return &Report{Kind: KindHistory, GeneratedAt: now, History: results}
}
