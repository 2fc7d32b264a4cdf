package commands

import (
	"github.com/spf13/cobra"
)

var noQuipsFlag bool

func init() {
	compareCmd.Flags().BoolVar(&noQuipsFlag, "no-quips", false, "skip quip generation even when QUIP_API_KEY is set")
	rootCmd.AddCommand(compareCmd)
}

var compareCmd = &cobra.Command{
	Use:   "compare <user1> <user2>",
	Short: "Compares two users' diaries and lists their biggest disagreements.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := buildService(cmd, noQuipsFlag)
		if err != nil {
			return err
		}
		defer closeFn()

		result, err := svc.Compare(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if jsonFlag {
			return printJSON(cmd.OutOrStdout(), result)
		}
		renderComparison(cmd.OutOrStdout(), result)
		return nil
	},
}
