package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/clickrush/internal/report"
	"github.com/fakeyudi/clickrush/internal/session"
)

var (
	historyFormat string
	historyFollow bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show games recorded on this machine",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := session.NewResultStore()
		if err != nil {
			return err
		}
		results, err := store.List()
		if err != nil {
			return err
		}
		if err := printReport(cmd, report.History(results, now()), historyFormat); err != nil {
			return err
		}
		if !historyFollow {
			return nil
		}

		w, err := session.WatchHistory(store)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return followHistory(ctx, w, cmd.OutOrStdout())
	},
}

// followHistory prints one line per newly recorded game.
func followHistory(ctx context.Context, w *session.HistoryWatcher, out io.Writer) error {
	fmt.Fprintln(out, "Watching for new games (ctrl+c to stop)…")
	return w.Run(ctx, func(added []session.Result) {
		for _, r := range added {
			fmt.Fprintln(out, formatResultLine(r))
		}
	})
}

func formatResultLine(r session.Result) string {
	player := r.Username
	if player == "" {
		player = "(anonymous)"
	}
	line := fmt.Sprintf("%s  %s  %d clicks  %.1f CPS",
		r.EndedAt.Local().Format("2006-01-02 15:04:05"), player, r.Clicks, r.CPS())
	switch {
	case !r.Saved:
		line += "  not saved"
	case r.Rank > 0:
		line += fmt.Sprintf("  rank #%d", r.Rank)
	}
	if len(r.Achievements) > 0 {
		line += fmt.Sprintf("  +%d achievements", len(r.Achievements))
	}
	return line
}

func init() {
	historyCmd.Flags().StringVarP(&historyFormat, "format", "f", "", "output format: plain, markdown or json")
	historyCmd.Flags().BoolVar(&historyFollow, "follow", false, "keep running and print games as they finish")
	rootCmd.AddCommand(historyCmd)
}
