package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/Clark-Hu/filmfeud/internal/compare"
)

func init() {
	rootCmd.AddCommand(diaryCmd)
}

var diaryCmd = &cobra.Command{
	Use:   "diary <username>",
	Short: "Fetches one user's diary and prints every logged film.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := buildService(cmd, true)
		if err != nil {
			return err
		}
		defer closeFn()

		d, err := svc.Diary(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		stats := compare.Stats(d.Movies, time.Now())
		if jsonFlag {
			return printJSON(cmd.OutOrStdout(), map[string]any{"diary": d, "stats": stats})
		}
		renderDiary(cmd.OutOrStdout(), d, stats)
		return nil
	},
}
