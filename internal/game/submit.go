package game

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fakeyudi/clickrush/internal/api"
	"github.com/fakeyudi/clickrush/internal/session"
)

// beginSubmission resolves a username for the ended session and either
// submits right away or asks for one.
func (g *Game) beginSubmission(ctx context.Context) {
	name := g.current.Username
	if name == "" {
		name = g.lastFallback
	}
	if name == "" {
		g.awaitingUsername = true
		g.emit(UsernameRequested{SessionID: g.current.ID, Score: g.current.ClickCount})
		return
	}
	g.submit(ctx, name)
}

func (g *Game) handleUsername(ctx context.Context, in usernameInput) {
	if !g.awaitingUsername {
		log.Debug().Msg("username reply with no pending request")
		return
	}
	g.awaitingUsername = false

	name := strings.TrimSpace(in.name)
	if name == "" {
		s := g.current
		log.Info().Str("session_id", s.ID).Int("score", s.ClickCount).Msg("score not saved: no username")
		g.record(g.resultOf(s))
		g.submitting = false
		g.emit(ScoreNotSaved{SessionID: s.ID, Score: s.ClickCount})
		g.reset()
		return
	}
	g.submit(ctx, name)
}

// submit posts the score on its own goroutine. There is no retry.
func (g *Game) submit(ctx context.Context, username string) {
	g.current.Username = username
	s := g.current

	go func() {
		reqCtx, cancel := g.requestContext(ctx)
		defer cancel()

		res, err := g.backend.SubmitScore(reqCtx, api.ScoreRequest{Username: s.Username, Clicks: s.ClickCount})
		select {
		case g.outcomes <- submitOutcome{session: s, result: res, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (g *Game) handleOutcome(ctx context.Context, out submitOutcome) {
	g.submitting = false
	s := out.session
	result := g.resultOf(s)

	if out.err != nil {
		log.Error().Err(out.err).Str("session_id", s.ID).Str("username", s.Username).Msg("failed to submit score")
		g.record(result)
		g.emit(SubmissionFailed{SessionID: s.ID, Username: s.Username, Score: s.ClickCount, Err: out.err})
		g.reset()
		return
	}

	res := out.result
	if res == nil {
		res = &api.ScoreResult{}
	}
	rank := 0
	if res.Rank != nil {
		rank = *res.Rank
	}

	result.Saved = true
	result.Rank = rank
	for _, a := range res.Achievements {
		result.Achievements = append(result.Achievements, a.Name)
	}
	g.record(result)

	n := g.sequencer.Schedule(res.Achievements, func(a api.Achievement) {
		g.deliver(ctx, AchievementUnlocked{Achievement: a})
	})
	log.Info().Str("session_id", s.ID).Int("score", s.ClickCount).Int("rank", rank).Int("achievements", n).Msg("score submitted")
	g.emit(ScoreSubmitted{
		SessionID:     s.ID,
		Username:      s.Username,
		Score:         s.ClickCount,
		Rank:          rank,
		Achievements:  res.Achievements,
		Notifications: n,
	})

	g.handleRefresh(ctx, refreshInput{kind: refreshLeaderboard})
	if s.Username != "" {
		g.handleRefresh(ctx, refreshInput{kind: refreshUser, username: s.Username})
	}
	g.reset()
}

// reset returns the session to Idle and accepts new starts.
func (g *Game) reset() {
	g.current = session.Reset(g.current)
	g.emit(SessionReset{SessionID: g.current.ID})
}

func (g *Game) resultOf(s session.Session) session.Result {
	return session.Result{
		SessionID:       s.ID,
		Username:        s.Username,
		Clicks:          s.ClickCount,
		DurationSeconds: g.opts.Rules.Duration,
		AutoStarted:     s.AutoStarted,
		EndedAt:         g.clock.Now(),
	}
}

func (g *Game) record(r session.Result) {
	if g.recorder == nil {
		return
	}
	if err := g.recorder.Append(r); err != nil {
		log.Warn().Err(err).Str("session_id", r.SessionID).Msg("failed to record result")
	}
}

func (g *Game) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.opts.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.opts.RequestTimeout)
}

// handleRefresh starts a fire-and-forget fetch. Failures are logged and
// reported in the loaded event; they never touch the session.
func (g *Game) handleRefresh(ctx context.Context, in refreshInput) {
	go func() {
		reqCtx, cancel := g.requestContext(ctx)
		defer cancel()

		switch in.kind {
		case refreshLeaderboard:
			entries, err := g.backend.Leaderboard(reqCtx)
			if err != nil {
				log.Warn().Err(err).Msg("failed to load leaderboard")
			}
			g.deliver(ctx, LeaderboardLoaded{Entries: entries, Err: err})
		case refreshCatalog:
			catalog, err := g.backend.Achievements(reqCtx)
			if err != nil {
				log.Warn().Err(err).Msg("failed to load achievements")
			}
			g.deliver(ctx, AchievementsLoaded{Catalog: catalog, Err: err})
		case refreshUser:
			unlocked, err := g.backend.UserAchievements(reqCtx, in.username)
			if err != nil {
				log.Warn().Err(err).Str("username", in.username).Msg("failed to load user achievements")
			}
			g.deliver(ctx, UserAchievementsLoaded{Username: in.username, Achievements: unlocked, Err: err})
		}
	}()
}
