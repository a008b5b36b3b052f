package cmd

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/clickrush/internal/config"
	"github.com/fakeyudi/clickrush/internal/game"
	"github.com/fakeyudi/clickrush/internal/logging"
	"github.com/fakeyudi/clickrush/internal/profile"
	"github.com/fakeyudi/clickrush/internal/session"
	"github.com/fakeyudi/clickrush/internal/tui"
)

var playUser string

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a timed clicking game",
	RunE: func(cmd *cobra.Command, args []string) error {
		closer, err := logging.SetupFile(cfg.LogLevel)
		if err != nil {
			return err
		}
		defer closer.Close()

		client, err := newClient()
		if err != nil {
			return err
		}
		store, err := session.NewResultStore()
		if err != nil {
			return err
		}

		events := make(game.ChannelSink, 64)
		g := game.New(client, events, gameOptions(cfg), game.WithRecorder(store))

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		go g.Run(ctx)

		username := playUser
		if username == "" {
			username = storedUsername()
		}
		log.Info().Str("backend", client.BaseURL()).Str("username", username).Msg("starting game")

		return tui.Run(g, events, tui.Options{
			Username:     username,
			Duration:     cfg.GameSeconds,
			RefreshEvery: cfg.LeaderboardRefresh(),
			OnRename:     saveUsername,
		})
	},
}

func gameOptions(c config.Config) game.Options {
	return game.Options{
		Rules: session.Rules{
			Duration:       c.GameSeconds,
			WarningAt:      c.WarningSeconds,
			MilestoneEvery: c.MilestoneEvery,
		},
		PreRoll:           c.PreRoll(),
		TickInterval:      time.Second,
		NotificationDelay: c.NotificationDelay(),
		RequestTimeout:    c.RequestTimeout(),
	}
}

// saveUsername stores a name typed in the game as the profile's player name.
func saveUsername(name string) {
	prof := activeProfile
	if prof == nil {
		prof = &profile.Profile{DefaultFormat: cfg.DefaultFormat}
	}
	if prof.Username == name {
		return
	}
	updated := *prof
	updated.Username = name
	if err := profile.Save(&updated); err != nil {
		log.Warn().Err(err).Msg("failed to save player name")
		return
	}
	activeProfile = &updated
}

func init() {
	playCmd.Flags().StringVarP(&playUser, "user", "u", "", "player name for this run (defaults to the profile name)")
	rootCmd.AddCommand(playCmd)
}
