package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"pgregory.net/rapid"

	"github.com/fakeyudi/clickrush/internal/config"
	"github.com/fakeyudi/clickrush/internal/profile"
	"github.com/fakeyudi/clickrush/internal/report"
	"github.com/fakeyudi/clickrush/internal/session"
)

// executeCommand runs a cobra command with the given args and captures combined output.
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)
	_, err = root.ExecuteC()
	return buf.String(), err
}

// isolate points every file the CLI touches at temp dirs.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("BACKEND_URL", "")

	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"rank":1,"username":"alice","clicks":87,"game_date":"2024-05-01T10:00:00Z"},
			{"rank":2,"username":"bob","clicks":60,"game_date":"2024-05-02T10:00:00Z"}
		]`))
	})
	mux.HandleFunc("GET /api/achievements", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":1,"name":"Snail","description":"Slow and steady","icon":"🐌","min_cps":0,"max_cps":2.9}]`))
	})
	mux.HandleFunc("GET /api/achievements/{username}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("username") != "alice" {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		w.Write([]byte(`[{"achievement_id":1,"name":"Snail","description":"Slow and steady","earned_at":"2024-05-01T10:00:01Z"}]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	t.Setenv("BACKEND_URL", srv.URL)
	return srv
}

func TestLeaderboardCommand(t *testing.T) {
	isolate(t)
	fakeBackend(t)

	out, err := executeCommand(rootCmd, "leaderboard", "--format", "markdown")
	if err != nil {
		t.Fatalf("leaderboard: %v\n%s", err, out)
	}
	for _, want := range []string{"# Leaderboard", "alice", "bob", "| 87 |"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestLeaderboardJSON(t *testing.T) {
	isolate(t)
	fakeBackend(t)

	out, err := executeCommand(rootCmd, "leaderboard", "--format", "json")
	if err != nil {
		t.Fatalf("leaderboard: %v\n%s", err, out)
	}
	var rep report.Report
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(rep.Leaderboard) != 2 || rep.Leaderboard[0].Username != "alice" {
		t.Errorf("got %+v", rep.Leaderboard)
	}
}

func TestLeaderboardBackendDown(t *testing.T) {
	isolate(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Database query failed", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	t.Setenv("BACKEND_URL", srv.URL)

	_, err := executeCommand(rootCmd, "leaderboard", "--format", "plain")
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestAchievementsCommands(t *testing.T) {
	isolate(t)
	fakeBackend(t)

	out, err := executeCommand(rootCmd, "achievements", "--format", "markdown")
	if err != nil {
		t.Fatalf("achievements: %v", err)
	}
	if !strings.Contains(out, "Snail") || !strings.Contains(out, "0.0 - 2.9 CPS") {
		t.Errorf("catalog output:\n%s", out)
	}

	out, err = executeCommand(rootCmd, "achievements", "alice", "--format", "markdown")
	if err != nil {
		t.Fatalf("achievements alice: %v", err)
	}
	if !strings.Contains(out, "# Achievements of alice") || !strings.Contains(out, "**Snail**") {
		t.Errorf("user output:\n%s", out)
	}

	// Unknown players have nothing yet rather than an error.
	out, err = executeCommand(rootCmd, "achievements", "nobody", "--format", "markdown")
	if err != nil {
		t.Fatalf("achievements nobody: %v", err)
	}
	if !strings.Contains(out, "_None yet._") {
		t.Errorf("404 output:\n%s", out)
	}
}

func TestUnknownFormat(t *testing.T) {
	isolate(t)
	fakeBackend(t)

	if _, err := executeCommand(rootCmd, "leaderboard", "--format", "xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

// Feature: clickrush, Property 11: History counts accuracy
func TestHistoryCountsAccuracy(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 20).Draw(rt, "n")

		isolate(t)
		store, err := session.NewResultStore()
		if err != nil {
			rt.Fatalf("NewResultStore: %v", err)
		}
		for i := 0; i < n; i++ {
			r := session.Result{
				SessionID:       fmt.Sprintf("s-%d", i),
				Username:        fmt.Sprintf("player%d", i),
				Clicks:          i,
				DurationSeconds: 10,
				Saved:           i%2 == 0,
				EndedAt:         time.Date(2024, 5, 1, 10, i, 0, 0, time.UTC),
			}
			if err := store.Append(r); err != nil {
				rt.Fatalf("Append: %v", err)
			}
		}

		out, err := executeCommand(rootCmd, "history", "--format", "markdown")
		if err != nil {
			rt.Fatalf("history command error: %v", err)
		}

		if n == 0 {
			if !strings.Contains(out, "_No games recorded yet._") {
				rt.Errorf("expected empty history message, got:\n%s", out)
			}
			return
		}
		rows := strings.Count(out, "| player")
		if rows != n {
			rt.Errorf("expected %d rows, got %d:\n%s", n, rows, out)
		}
	})
}

func TestProfileFormatFillsConfigGap(t *testing.T) {
	isolate(t)
	fakeBackend(t)
	if err := profile.Save(&profile.Profile{Username: "alice", DefaultFormat: "markdown"}); err != nil {
		t.Fatal(err)
	}

	out, err := executeCommand(rootCmd, "leaderboard", "--format", "")
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if !strings.Contains(out, "# Leaderboard") {
		t.Errorf("expected markdown from profile default:\n%s", out)
	}
	if GetProfile() == nil || storedUsername() != "alice" {
		t.Errorf("profile not loaded: %+v", GetProfile())
	}
}

func TestSetupCommand(t *testing.T) {
	isolate(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader("dana\njson\n"))
	rootCmd.SetArgs([]string{"setup"})
	if _, err := rootCmd.ExecuteC(); err != nil {
		t.Fatalf("setup: %v\n%s", err, buf.String())
	}

	prof, err := profile.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if prof.Username != "dana" || prof.DefaultFormat != "json" {
		t.Errorf("got %+v", prof)
	}
	if !strings.Contains(buf.String(), "Profile saved") {
		t.Errorf("output:\n%s", buf.String())
	}
}

func TestSaveUsername(t *testing.T) {
	isolate(t)
	activeProfile = nil
	cfg = config.Defaults()

	saveUsername("erin")
	prof, err := profile.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if prof.Username != "erin" || prof.DefaultFormat != "plain" {
		t.Errorf("got %+v", prof)
	}
	if storedUsername() != "erin" {
		t.Errorf("active profile not updated: %q", storedUsername())
	}
}

func TestGameOptionsFromConfig(t *testing.T) {
	c := config.Defaults()
	c.GameSeconds = 15
	c.PreRollMS = 500

	opts := gameOptions(c)
	if opts.Rules.Duration != 15 || opts.Rules.WarningAt != 3 || opts.Rules.MilestoneEvery != 10 {
		t.Errorf("rules: got %+v", opts.Rules)
	}
	if opts.PreRoll != 500*time.Millisecond || opts.NotificationDelay != 2*time.Second {
		t.Errorf("timings: got %+v", opts)
	}
}

func TestFormatResultLine(t *testing.T) {
	r := session.Result{
		Username:        "",
		Clicks:          42,
		DurationSeconds: 10,
		Saved:           true,
		Rank:            3,
		Achievements:    []string{"Rabbit"},
		EndedAt:         time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	line := formatResultLine(r)
	for _, want := range []string{"(anonymous)", "42 clicks", "4.2 CPS", "rank #3", "+1 achievements"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
}
