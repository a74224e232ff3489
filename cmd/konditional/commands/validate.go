package commands

import (
	"fmt"
	"os"

	"github.com/amichne/konditional/internal/parse"
	"github.com/spf13/cobra"
)

var (
	validateDeclarations string
	validateSkipUnknown  bool
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a configuration file against its declarations",
	Long: `Decode a configuration file and report any errors or warnings without
publishing it anywhere.

Examples:
  konditional validate flags.json --declarations decls.json
  konditional validate flags.json --declarations decls.json --skip-unknown-keys`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		decls, err := loadDeclarations(validateDeclarations)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read configuration file: %w", err)
		}

		result := parse.Decode(data, decls, parse.Options{SkipUnknownKeys: validateSkipUnknown})
		for _, w := range result.Warnings {
			fmt.Printf("warning: %s (feature=%s)\n", w.Message, w.Feature)
		}

		if !result.Ok() {
			return result.Err
		}

		if !quiet {
			fmt.Printf("OK: %d feature(s) valid\n", len(result.Configuration.FeatureIds()))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateDeclarations, "declarations", "", "Path to the feature declarations file (required)")
	validateCmd.Flags().BoolVar(&validateSkipUnknown, "skip-unknown-keys", false, "Discard undeclared feature keys instead of failing")
	validateCmd.MarkFlagRequired("declarations")
}
