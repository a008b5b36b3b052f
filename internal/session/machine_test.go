package session_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"

	"github.com/fakeyudi/clickrush/internal/session"
)

type fataler interface {
	Helper()
	Fatalf(format string, args ...any)
}

// activeSession returns a session that has passed the pre-roll.
func activeSession(t fataler, r session.Rules) session.Session {
	t.Helper()
	s, _, err := session.Start(session.Session{}, "id-1", "alice", r)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	s, _ = session.BeginPlay(s)
	return s
}

func countEvents[T session.Event](events []session.Event) int {
	n := 0
	for _, ev := range events {
		if _, ok := ev.(T); ok {
			n++
		}
	}
	return n
}

// Feature: clickrush, Property 1: Click accounting
func TestClickAccounting(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := session.DefaultRules()
		n := rapid.IntRange(0, 200).Draw(t, "clicks")
		before := rapid.IntRange(0, 20).Draw(t, "clicks_before_go")

		s, _, err := session.Start(session.Session{}, "id", "alice", r)
		if err != nil {
			t.Fatalf("Start: %v", err)
		}
		// Clicks during the pre-roll are ignored.
		for i := 0; i < before; i++ {
			var evs []session.Event
			s, evs = session.Click(s, r)
			if len(evs) != 0 {
				t.Fatalf("click during pre-roll emitted %v", evs)
			}
		}
		if s.ClickCount != 0 {
			t.Fatalf("ClickCount after pre-roll clicks: got %d, want 0", s.ClickCount)
		}

		s, _ = session.BeginPlay(s)
		for i := 0; i < n; i++ {
			s, _ = session.Click(s, r)
		}
		if s.ClickCount != n {
			t.Fatalf("ClickCount: got %d, want %d", s.ClickCount, n)
		}
	})
}

// Feature: clickrush, Property 2: Start always resets the counters
func TestStartResets(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := session.Rules{
			Duration:       rapid.IntRange(1, 60).Draw(t, "duration"),
			WarningAt:      3,
			MilestoneEvery: 10,
		}
		prev := session.Session{
			ID:            "old",
			Status:        rapid.SampledFrom([]session.Status{session.StatusIdle, session.StatusEnded}).Draw(t, "status"),
			Username:      "someone",
			ClickCount:    rapid.IntRange(0, 500).Draw(t, "old_clicks"),
			TimeRemaining: rapid.IntRange(0, 60).Draw(t, "old_remaining"),
		}

		s, evs, err := session.Start(prev, "new", "bob", r)
		if err != nil {
			t.Fatalf("Start: %v", err)
		}
		if s.ClickCount != 0 || s.TimeRemaining != r.Duration {
			t.Fatalf("got clicks=%d remaining=%d, want 0 and %d", s.ClickCount, s.TimeRemaining, r.Duration)
		}
		if s.Status != session.StatusCountingDown {
			t.Fatalf("Status: got %v, want counting down", s.Status)
		}
		want := []session.Event{session.SessionStarted{SessionID: "new", Username: "bob", Duration: r.Duration}}
		if diff := cmp.Diff(want, evs); diff != "" {
			t.Fatalf("events mismatch (-want +got):\n%s", diff)
		}

		auto, _ := session.AutoStart(prev, "auto", "", r)
		if auto.ClickCount != 1 || auto.TimeRemaining != r.Duration {
			t.Fatalf("auto-start: got clicks=%d remaining=%d, want 1 and %d", auto.ClickCount, auto.TimeRemaining, r.Duration)
		}
	})
}

// Feature: clickrush, Property 3: Countdown is monotonic and ends once
func TestTickCountdown(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := session.Rules{
			Duration:       rapid.IntRange(1, 30).Draw(t, "duration"),
			WarningAt:      rapid.IntRange(0, 5).Draw(t, "warning_at"),
			MilestoneEvery: 10,
		}
		extra := rapid.IntRange(0, 10).Draw(t, "extra_ticks")

		s := activeSession(t, r)
		ended := 0
		for i := 0; i < r.Duration+extra; i++ {
			prevRemaining := s.TimeRemaining
			var evs []session.Event
			s, evs = session.Tick(s, r)

			if prevRemaining > 0 {
				if s.TimeRemaining != prevRemaining-1 {
					t.Fatalf("tick %d: remaining %d -> %d", i, prevRemaining, s.TimeRemaining)
				}
				wantWarn := 0
				if s.TimeRemaining <= r.WarningAt {
					wantWarn = 1
				}
				if got := countEvents[session.CountdownWarning](evs); got != wantWarn {
					t.Fatalf("tick %d (remaining %d): got %d warnings, want %d", i, s.TimeRemaining, got, wantWarn)
				}
			} else if len(evs) != 0 {
				t.Fatalf("tick after end emitted %v", evs)
			}
			if s.TimeRemaining < 0 {
				t.Fatalf("remaining went negative: %d", s.TimeRemaining)
			}
			ended += countEvents[session.GameEnded](evs)
		}

		if ended != 1 {
			t.Fatalf("GameEnded emitted %d times, want 1", ended)
		}
		if s.Status != session.StatusEnded {
			t.Fatalf("Status: got %v, want ended", s.Status)
		}

		// Clicks after the end do not count.
		after, evs := session.Click(s, r)
		if after.ClickCount != s.ClickCount || len(evs) != 0 {
			t.Fatalf("click after end changed count %d -> %d", s.ClickCount, after.ClickCount)
		}
	})
}

// Feature: clickrush, Property 4: Milestones every Nth click
func TestMilestones(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := session.DefaultRules()
		n := rapid.IntRange(1, 120).Draw(t, "clicks")

		s := activeSession(t, r)
		for i := 1; i <= n; i++ {
			var evs []session.Event
			s, evs = session.Click(s, r)

			want := []session.Event{session.ClickRegistered{Count: i}}
			if i%10 == 0 {
				want = append(want, session.MilestoneReached{Count: i})
			}
			if diff := cmp.Diff(want, evs); diff != "" {
				t.Fatalf("click %d events mismatch (-want +got):\n%s", i, diff)
			}
		}
	})
}

func TestStartRequiresUsername(t *testing.T) {
	prev := session.Session{ID: "old", Status: session.StatusIdle, ClickCount: 7}
	for _, name := range []string{"", "   ", "\t"} {
		s, evs, err := session.Start(prev, "new", name, session.DefaultRules())
		if !errors.Is(err, session.ErrUsernameRequired) {
			t.Errorf("Start(%q): got err %v, want ErrUsernameRequired", name, err)
		}
		if s != prev || len(evs) != 0 {
			t.Errorf("Start(%q): state changed to %+v (events %v)", name, s, evs)
		}
	}
}

func TestStartWhilePlaying(t *testing.T) {
	r := session.DefaultRules()
	countingDown, _, _ := session.Start(session.Session{}, "a", "alice", r)
	active, _ := session.BeginPlay(countingDown)

	for _, s := range []session.Session{countingDown, active} {
		if _, _, err := session.Start(s, "b", "bob", r); !errors.Is(err, session.ErrInProgress) {
			t.Errorf("Start from %v: got %v, want ErrInProgress", s.Status, err)
		}
		if next, evs := session.AutoStart(s, "b", "bob", r); next != s || evs != nil {
			t.Errorf("AutoStart from %v changed state", s.Status)
		}
	}
}

func TestAutoStartWithoutUsername(t *testing.T) {
	r := session.DefaultRules()
	s, evs := session.AutoStart(session.Session{}, "id", "", r)

	if s.Status != session.StatusActive {
		t.Errorf("Status: got %v, want active", s.Status)
	}
	if s.ClickCount != 1 {
		t.Errorf("ClickCount: got %d, want 1", s.ClickCount)
	}
	if s.Username != "" {
		t.Errorf("Username: got %q, want empty", s.Username)
	}
	want := []session.Event{
		session.SessionStarted{SessionID: "id", AutoStart: true, Duration: r.Duration},
		session.GoSignaled{SessionID: "id"},
		session.ClickRegistered{Count: 1},
	}
	if diff := cmp.Diff(want, evs); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestBeginPlayOnlyFromCountdown(t *testing.T) {
	idle := session.Session{Status: session.StatusIdle}
	if s, evs := session.BeginPlay(idle); s != idle || evs != nil {
		t.Errorf("BeginPlay from idle: got %+v %v", s, evs)
	}
}

func TestResetKeepsScore(t *testing.T) {
	s := session.Session{ID: "x", Status: session.StatusEnded, ClickCount: 42}
	got := session.Reset(s)
	if got.Status != session.StatusIdle || got.ClickCount != 42 {
		t.Errorf("Reset: got %+v", got)
	}

	active := session.Session{Status: session.StatusActive}
	if session.Reset(active) != active {
		t.Error("Reset changed an active session")
	}
}
