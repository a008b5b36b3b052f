package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fakeyudi/clickrush/internal/report"
)

var achievementsFormat string

var achievementsCmd = &cobra.Command{
	Use:   "achievements [username]",
	Short: "List achievements, or the ones a player has unlocked",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		if len(args) == 0 {
			catalog, err := client.Achievements(cmd.Context())
			if err != nil {
				return err
			}
			return printReport(cmd, report.Catalog(catalog, client.BaseURL(), now()), achievementsFormat)
		}

		unlocked, err := client.UserAchievements(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printReport(cmd, report.Unlocked(args[0], unlocked, client.BaseURL(), now()), achievementsFormat)
	},
}

func init() {
	achievementsCmd.Flags().StringVarP(&achievementsFormat, "format", "f", "", "output format: plain, markdown or json")
	rootCmd.AddCommand(achievementsCmd)
}
