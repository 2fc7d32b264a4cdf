package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Clark-Hu/filmfeud/internal/app"
	"github.com/Clark-Hu/filmfeud/internal/comparison"
	"github.com/Clark-Hu/filmfeud/internal/config"
	"github.com/Clark-Hu/filmfeud/internal/diary"
	"github.com/Clark-Hu/filmfeud/internal/logging"
)

var (
	layoutFlag  string
	partialFlag bool
	noCacheFlag bool
	jsonFlag    bool
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:           "filmfeud",
	Short:         "filmfeud compares two Letterboxd diaries and lists where the users disagree most.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&layoutFlag, "layout", "", "listing layout to scrape: diary or grid (defaults to LISTING_LAYOUT)")
	flags.BoolVar(&partialFlag, "partial", false, "keep going when some pages fail to load")
	flags.BoolVar(&noCacheFlag, "no-cache", false, "always fetch diaries from the site")
	flags.BoolVar(&jsonFlag, "json", false, "print JSON instead of tables")
	flags.BoolVarP(&verboseFlag, "verbose", "v", false, "log at debug level")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) zerolog.Logger {
	level := cfg.LogLevel
	if verboseFlag {
		level = "debug"
	}
	return logging.New(os.Stderr, level, true)
}

// buildService loads CLI configuration and applies the persistent flags.
func buildService(cmd *cobra.Command, noQuips bool) (*comparison.Service, func(), error) {
	cfg, err := config.LoadCLI()
	if err != nil {
		return nil, nil, err
	}

	o := app.Overrides{NoQuips: noQuips, NoCache: noCacheFlag}
	if layoutFlag != "" {
		layout, err := diary.ParseLayout(layoutFlag)
		if err != nil {
			return nil, nil, err
		}
		o.Layout = &layout
	}
	if cmd.Flags().Changed("partial") {
		o.AllowPartial = &partialFlag
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return app.Build(ctx, cfg, nil, newLogger(cfg), o)
}
