package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/clickrush/internal/api"
	"github.com/fakeyudi/clickrush/internal/config"
	"github.com/fakeyudi/clickrush/internal/logging"
	"github.com/fakeyudi/clickrush/internal/profile"
	"github.com/fakeyudi/clickrush/internal/report"
)

// cfg holds the merged configuration, populated in PersistentPreRunE.
var cfg config.Config

// activeProfile holds the loaded user profile.
var activeProfile *profile.Profile

// backendFlag overrides every other source of the backend URL.
var backendFlag string

// now stamps reports.
var now = time.Now

var rootCmd = &cobra.Command{
	Use:   "clickrush",
	Short: "A ten-second clicking game with a shared leaderboard",
	Long: `clickrush is a terminal clicking game. Hit space as fast as you can
before the timer runs out, then compare your score on the leaderboard and
collect achievements based on your clicks per second.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip setup check for the setup command itself.
		if cmd.Name() == "setup" {
			return nil
		}

		// .env is optional.
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}

		// First-run: profile missing → run setup wizard automatically.
		// Only do this when stdin is an interactive terminal.
		if !profile.Exists() && term.IsTerminal(os.Stdin.Fd()) {
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), "  Welcome to clickrush! Looks like this is your first time.")
			if err := runSetup(cmd, true); err != nil {
				return err
			}
		}

		activeProfile = nil
		if profile.Exists() {
			p, err := profile.Load()
			if err != nil {
				return fmt.Errorf("loading profile: %w", err)
			}
			activeProfile = p
		}

		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded

		// Profile values fill in config gaps.
		if activeProfile != nil && cfg.DefaultFormat == config.Defaults().DefaultFormat {
			if config.ValidFormat(activeProfile.DefaultFormat) {
				cfg.DefaultFormat = activeProfile.DefaultFormat
			}
		}
		if backendFlag != "" {
			cfg.BackendURL = backendFlag
		}

		// play switches to a log file once it owns the terminal.
		return logging.Setup(cfg.LogLevel, cmd.ErrOrStderr())
	},
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetConfig returns the merged configuration for use by subcommands.
func GetConfig() config.Config {
	return cfg
}

// GetProfile returns the active user profile.
func GetProfile() *profile.Profile {
	return activeProfile
}

// storedUsername is the profile's player name, or empty.
func storedUsername() string {
	if activeProfile == nil {
		return ""
	}
	return activeProfile.Username
}

func newClient() (*api.Client, error) {
	base, err := api.ResolveBaseURL(cfg.BackendURL)
	if err != nil {
		return nil, err
	}
	return api.NewClient(base, api.WithTimeout(cfg.RequestTimeout())), nil
}

// printReport renders rep in format, falling back to the configured default.
func printReport(cmd *cobra.Command, rep *report.Report, format string) error {
	if format == "" {
		format = cfg.DefaultFormat
	}
	r, err := report.ForFormat(format)
	if err != nil {
		return err
	}
	data, err := r.Render(rep)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "backend URL (overrides BACKEND_URL and config)")
}
