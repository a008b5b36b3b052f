package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fakeyudi/clickrush/internal/report"
)

var leaderboardFormat string

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the top scores",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		entries, err := client.Leaderboard(cmd.Context())
		if err != nil {
			return err
		}
		return printReport(cmd, report.Leaderboard(entries, client.BaseURL(), now()), leaderboardFormat)
	},
}

func init() {
	leaderboardCmd.Flags().StringVarP(&leaderboardFormat, "format", "f", "", "output format: plain, markdown or json")
	rootCmd.AddCommand(leaderboardCmd)
}
