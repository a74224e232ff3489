package commands

import (
	"fmt"
	"os"

	"github.com/amichne/konditional/internal/parse"
	"github.com/spf13/cobra"
)

var (
	canonicalizeDeclarations string
	canonicalizeOutput       string
)

var canonicalizeCmd = &cobra.Command{
	Use:   "canonicalize <file>",
	Short: "Re-encode a configuration file to its canonical wire form",
	Long: `Decode a configuration file and re-encode it with sorted feature ids and
rules in precedence order, so that two configurations with the same content
always produce byte-identical output.

Examples:
  konditional canonicalize flags.json --declarations decls.json
  konditional canonicalize flags.json --declarations decls.json --output canonical.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		decls, err := loadDeclarations(canonicalizeDeclarations)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read configuration file: %w", err)
		}

		result := parse.Decode(data, decls, parse.Options{})
		if !result.Ok() {
			return result.Err
		}

		encoded, err := parse.Encode(result.Configuration)
		if err != nil {
			return fmt.Errorf("encode configuration: %w", err)
		}

		if canonicalizeOutput == "" || canonicalizeOutput == "-" {
			fmt.Println(string(encoded))
			return nil
		}
		return os.WriteFile(canonicalizeOutput, encoded, 0o644)
	},
}

func init() {
	rootCmd.AddCommand(canonicalizeCmd)

	canonicalizeCmd.Flags().StringVar(&canonicalizeDeclarations, "declarations", "", "Path to the feature declarations file (required)")
	canonicalizeCmd.Flags().StringVarP(&canonicalizeOutput, "output", "o", "", "Output file (default: stdout)")
	canonicalizeCmd.MarkFlagRequired("declarations")
}
