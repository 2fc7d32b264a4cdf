package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Clark-Hu/filmfeud/internal/config"
	"github.com/Clark-Hu/filmfeud/internal/migrate"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:       "migrate <up|down>",
	Short:     "Applies or rolls back the database schema at DB_URL.",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		step := migrate.Up
		if args[0] == "down" {
			step = migrate.Down
		}
		if err := step(cfg.DBURL); err != nil {
			return fmt.Errorf("migrate %s: %w", args[0], err)
		}
		logger.Info().Str("direction", args[0]).Msg("migrations applied")
		return nil
	},
}
