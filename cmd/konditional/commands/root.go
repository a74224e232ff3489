package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	format string
	quiet  bool
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "konditional",
	Short: "CLI tool for inspecting and evaluating Konditional configurations",
	Long: `Konditional is a command-line tool for working with Konditional feature
configuration files: validating them against a declared schema, canonicalizing
them to the byte-stable wire form, evaluating a single feature for a given
context, and watching a file for live changes.

Examples:
  konditional validate flags.json --declarations decls.json
  konditional canonicalize flags.json --declarations decls.json
  konditional eval flags.json --declarations decls.json --feature new-checkout --stable-id user-42
  konditional watch flags.json --declarations decls.json`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&format, "format", "text", "Output format (text, json)")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress non-essential output")
}
