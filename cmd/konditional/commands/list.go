package commands

import (
	"fmt"
	"os"

	"github.com/amichne/konditional/internal/cli"
	"github.com/amichne/konditional/internal/parse"
	"github.com/spf13/cobra"
)

var (
	listDeclarations string
	listSkipUnknown  bool
	listFormat       string
)

var listCmd = &cobra.Command{
	Use:   "list <file>",
	Short: "Decode a configuration file and list its flags",
	Long: `Decode a configuration file and print one row per flag: its type,
active state, default value, rule count, and bucketing salt.

Examples:
  konditional list flags.json --declarations decls.json
  konditional list flags.json --declarations decls.json --output table
  konditional list flags.json --declarations decls.json --output yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		decls, err := loadDeclarations(listDeclarations)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read configuration file: %w", err)
		}

		result := parse.Decode(data, decls, parse.Options{SkipUnknownKeys: listSkipUnknown})
		if !result.Ok() {
			return result.Err
		}

		return cli.PrintFlags(cli.Summarize(result.Configuration), cli.OutputFormat(listFormat))
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listDeclarations, "declarations", "", "Path to the feature declarations file (required)")
	listCmd.Flags().BoolVar(&listSkipUnknown, "skip-unknown-keys", false, "Discard undeclared feature keys instead of failing")
	listCmd.Flags().StringVar(&listFormat, "output", "table", "Output format: table, json, or yaml")
	listCmd.MarkFlagRequired("declarations")
}
