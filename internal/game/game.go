// Package game runs the clicking game: one goroutine owns the current
// session and processes inputs, ticks and network outcomes in arrival order.
//
// Network calls run on their own goroutines and report back over channels,
// so no session state is ever touched concurrently.
package game

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/fakeyudi/clickrush/internal/api"
	"github.com/fakeyudi/clickrush/internal/clock"
	"github.com/fakeyudi/clickrush/internal/notify"
	"github.com/fakeyudi/clickrush/internal/session"
)

// ErrBusy is returned by Start while the previous game's score is being submitted.
var ErrBusy = errors.New("score submission in progress")

// Backend is what the game needs from the API client.
type Backend interface {
	SubmitScore(ctx context.Context, req api.ScoreRequest) (*api.ScoreResult, error)
	Leaderboard(ctx context.Context) ([]api.LeaderboardEntry, error)
	Achievements(ctx context.Context) ([]api.Achievement, error)
	UserAchievements(ctx context.Context, username string) ([]api.Achievement, error)
}

// Sink consumes events. Emit is always called from the game goroutine.
type Sink interface {
	Emit(ev session.Event)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(ev session.Event)

func (f SinkFunc) Emit(ev session.Event) { f(ev) }

// ChannelSink forwards events into a channel. It blocks when the channel is full.
type ChannelSink chan session.Event

func (c ChannelSink) Emit(ev session.Event) { c <- ev }

// Recorder keeps finished games. session.ResultStore satisfies it.
type Recorder interface {
	Append(r session.Result) error
}

// Options are the timing knobs of a game.
type Options struct {
	Rules             session.Rules
	PreRoll           time.Duration // "get ready" delay on the explicit start path
	TickInterval      time.Duration
	NotificationDelay time.Duration // spacing between achievement announcements
	RequestTimeout    time.Duration // per backend call; zero means none
}

// DefaultOptions mirrors the classic browser game.
func DefaultOptions() Options {
	return Options{
		Rules:             session.DefaultRules(),
		PreRoll:           time.Second,
		TickInterval:      time.Second,
		NotificationDelay: 2 * time.Second,
		RequestTimeout:    10 * time.Second,
	}
}

// Option configures a Game.
type Option func(*Game)

// WithClock replaces the real clock, typically with a fake one in tests.
func WithClock(c clockwork.Clock) Option {
	return func(g *Game) { g.clock = c }
}

// WithRecorder records every finished game, saved or not.
func WithRecorder(r Recorder) Option {
	return func(g *Game) { g.recorder = r }
}

// State is a point-in-time copy of the game.
type State struct {
	Session          session.Session
	Submitting       bool
	AwaitingUsername bool
}

// Game is the orchestrator. Create it with New and drive it with Run.
type Game struct {
	backend  Backend
	sink     Sink
	opts     Options
	clock    clockwork.Clock
	recorder Recorder

	inputs   chan any
	outcomes chan submitOutcome
	events   chan session.Event
	stopped  chan struct{}

	// Owned by the Run goroutine.
	current          session.Session
	ticker           *clock.Ticker
	preRoll          clockwork.Timer
	submitting       bool
	awaitingUsername bool
	lastFallback     string
	sequencer        *notify.Sequencer[api.Achievement]
}

type startInput struct {
	username string
	reply    chan error
}

type clickInput struct {
	fallback string
}

type usernameInput struct {
	name string
}

type snapshotInput struct {
	reply chan State
}

type refreshKind int

const (
	refreshLeaderboard refreshKind = iota
	refreshCatalog
	refreshUser
)

type refreshInput struct {
	kind     refreshKind
	username string
}

type submitOutcome struct {
	session session.Session
	result  *api.ScoreResult
	err     error
}

// New returns a Game in the Idle state.
func New(backend Backend, sink Sink, opts Options, options ...Option) *Game {
	g := &Game{
		backend:  backend,
		sink:     sink,
		opts:     opts,
		clock:    clockwork.NewRealClock(),
		inputs:   make(chan any, 64),
		outcomes: make(chan submitOutcome, 1),
		events:   make(chan session.Event, 16),
		stopped:  make(chan struct{}),
	}
	for _, o := range options {
		o(g)
	}
	g.sequencer = notify.New[api.Achievement](g.clock, opts.NotificationDelay)
	return g
}

// Run processes events until ctx is cancelled. It must be called once.
func (g *Game) Run(ctx context.Context) error {
	defer close(g.stopped)
	defer g.stopTimers()

	log.Debug().Int("duration", g.opts.Rules.Duration).Msg("game loop started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case in := <-g.inputs:
			g.handleInput(ctx, in)
		case <-g.preRollC():
			g.handlePreRoll()
		case <-g.ticker.C():
			g.handleTick(ctx)
		case out := <-g.outcomes:
			g.handleOutcome(ctx, out)
		case ev := <-g.events:
			g.emit(ev)
		}
	}
}

// Start begins a game through the explicit path with a pre-roll. It returns
// session.ErrUsernameRequired, session.ErrInProgress or ErrBusy without
// changing anything.
func (g *Game) Start(ctx context.Context, username string) error {
	reply := make(chan error, 1)
	if err := g.send(ctx, startInput{username: username, reply: reply}); err != nil {
		return err
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-g.stopped:
		return context.Canceled
	}
}

// Click registers a click. While idle it starts a game at once and counts the
// click; fallbackUsername (stored name or current input) names that game.
func (g *Game) Click(fallbackUsername string) {
	g.post(clickInput{fallback: fallbackUsername})
}

// ResolveUsername answers a UsernameRequested event. An empty name declines
// and the score is not saved.
func (g *Game) ResolveUsername(name string) {
	g.post(usernameInput{name: name})
}

// RefreshLeaderboard fetches the leaderboard; the result arrives as LeaderboardLoaded.
func (g *Game) RefreshLeaderboard() {
	g.post(refreshInput{kind: refreshLeaderboard})
}

// LoadAchievements fetches the catalog; the result arrives as AchievementsLoaded.
func (g *Game) LoadAchievements() {
	g.post(refreshInput{kind: refreshCatalog})
}

// RefreshUserAchievements fetches what username has unlocked.
func (g *Game) RefreshUserAchievements(username string) {
	if strings.TrimSpace(username) == "" {
		return
	}
	g.post(refreshInput{kind: refreshUser, username: strings.TrimSpace(username)})
}

// Snapshot returns a copy of the current state.
func (g *Game) Snapshot(ctx context.Context) (State, error) {
	reply := make(chan State, 1)
	if err := g.send(ctx, snapshotInput{reply: reply}); err != nil {
		return State{}, err
	}
	select {
	case st := <-reply:
		return st, nil
	case <-ctx.Done():
		return State{}, ctx.Err()
	case <-g.stopped:
		return State{}, context.Canceled
	}
}

func (g *Game) send(ctx context.Context, in any) error {
	select {
	case g.inputs <- in:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-g.stopped:
		return context.Canceled
	}
}

func (g *Game) post(in any) {
	select {
	case g.inputs <- in:
	case <-g.stopped:
	}
}

// deliver hands an event from a background goroutine to the loop.
func (g *Game) deliver(ctx context.Context, ev session.Event) {
	select {
	case g.events <- ev:
	case <-ctx.Done():
	}
}

func (g *Game) emit(events ...session.Event) {
	for _, ev := range events {
		log.Debug().Str("event", ev.EventName()).Str("session_id", g.current.ID).Msg("emit")
		if g.sink != nil {
			g.sink.Emit(ev)
		}
	}
}

func (g *Game) preRollC() <-chan time.Time {
	if g.preRoll == nil {
		return nil
	}
	return g.preRoll.Chan()
}

func (g *Game) startTicker() {
	g.ticker.Stop()
	g.ticker = clock.NewTicker(g.clock, g.opts.TickInterval)
	if err := g.ticker.Start(); err != nil {
		log.Error().Err(err).Msg("failed to start ticker")
	}
}

func (g *Game) stopTimers() {
	g.ticker.Stop()
	if g.preRoll != nil {
		g.preRoll.Stop()
		g.preRoll = nil
	}
}

func (g *Game) handleInput(ctx context.Context, in any) {
	switch in := in.(type) {
	case startInput:
		g.handleStart(in)
	case clickInput:
		g.handleClick(in)
	case usernameInput:
		g.handleUsername(ctx, in)
	case refreshInput:
		g.handleRefresh(ctx, in)
	case snapshotInput:
		in.reply <- State{
			Session:          g.current,
			Submitting:       g.submitting,
			AwaitingUsername: g.awaitingUsername,
		}
	default:
		log.Warn().Type("input", in).Msg("unknown input")
	}
}

func (g *Game) handleStart(in startInput) {
	if g.submitting {
		in.reply <- ErrBusy
		return
	}
	next, events, err := session.Start(g.current, uuid.New().String(), in.username, g.opts.Rules)
	if err != nil {
		in.reply <- err
		return
	}
	g.current = next
	g.preRoll = g.clock.NewTimer(g.opts.PreRoll)
	in.reply <- nil

	log.Info().Str("session_id", next.ID).Str("username", next.Username).Msg("session started")
	g.emit(events...)
}

func (g *Game) handleClick(in clickInput) {
	g.lastFallback = strings.TrimSpace(in.fallback)

	switch {
	case g.current.Status == session.StatusActive:
		next, events := session.Click(g.current, g.opts.Rules)
		g.current = next
		g.emit(events...)
	case g.submitting || g.current.Status == session.StatusCountingDown:
		// Not playing and not allowed to auto-start.
	default:
		next, events := session.AutoStart(g.current, uuid.New().String(), g.lastFallback, g.opts.Rules)
		g.current = next
		g.startTicker()
		log.Info().Str("session_id", next.ID).Str("username", next.Username).Msg("session auto-started")
		g.emit(events...)
	}
}

func (g *Game) handlePreRoll() {
	g.preRoll = nil
	next, events := session.BeginPlay(g.current)
	if len(events) == 0 {
		return
	}
	g.current = next
	g.startTicker()
	g.emit(events...)
}

func (g *Game) handleTick(ctx context.Context) {
	next, events := session.Tick(g.current, g.opts.Rules)
	g.current = next
	ended := next.Status == session.StatusEnded && len(events) > 0
	if ended {
		g.ticker.Stop()
		g.submitting = true
		log.Info().Str("session_id", next.ID).Int("score", next.ClickCount).Msg("session ended")
	}
	g.emit(events...)
	if ended {
		g.beginSubmission(ctx)
	}
}
