package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/amichne/konditional/internal/filesource"
	"github.com/amichne/konditional/internal/observability"
	"github.com/amichne/konditional/internal/parse"
	"github.com/amichne/konditional/internal/registry"
)

var (
	watchDeclarations string
	watchSkipUnknown  bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Load a configuration file and keep it republished on every change",
	Long: `Load a configuration file into a registry and watch it for changes,
republishing on every write, until interrupted.

Examples:
  konditional watch flags.json --declarations decls.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		decls, err := loadDeclarations(watchDeclarations)
		if err != nil {
			return err
		}

		logger := observability.NewZerologLogger(zerolog.New(os.Stderr).With().Timestamp().Logger(), "filesource")
		reg := registry.New(registry.WithLogger(logger))
		src := filesource.New(args[0], decls, parse.Options{SkipUnknownKeys: watchSkipUnknown}, reg, logger)

		if err := src.LoadOnce(); err != nil {
			return fmt.Errorf("initial load: %w", err)
		}
		if !quiet {
			fmt.Printf("loaded %d feature(s) from %s\n", len(reg.Current().FeatureIds()), args[0])
		}

		if err := src.Watch(); err != nil {
			return fmt.Errorf("watch: %w", err)
		}
		defer src.Stop()

		if !quiet {
			fmt.Println("watching for changes, press Ctrl+C to stop")
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchDeclarations, "declarations", "", "Path to the feature declarations file (required)")
	watchCmd.Flags().BoolVar(&watchSkipUnknown, "skip-unknown-keys", false, "Discard undeclared feature keys instead of failing")
	watchCmd.MarkFlagRequired("declarations")
}
