package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/amichne/konditional/internal/engine"
	"github.com/amichne/konditional/internal/ids"
	"github.com/amichne/konditional/internal/parse"
	"github.com/amichne/konditional/internal/targeting"
	"github.com/spf13/cobra"
)

var (
	evalDeclarations string
	evalFeature      string
	evalStableId     string
	evalLocale       string
	evalPlatform     string
	evalAppVersion   string
	evalAxes         []string
)

var evalCmd = &cobra.Command{
	Use:   "eval <file>",
	Short: "Evaluate a single feature against a context and print the decision trace",
	Long: `Decode a configuration file and evaluate one feature in EXPLAIN mode: the
selected rule or default, the rollout bucket, and every rule skipped along
the way.

Examples:
  konditional eval flags.json --declarations decls.json --feature new-checkout --stable-id user-42
  konditional eval flags.json --declarations decls.json --feature new-checkout \
    --platform IOS --locale en-US --app-version 2.3.0 --axis plan=premium`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if evalFeature == "" {
			return fmt.Errorf("--feature is required")
		}

		decls, err := loadDeclarations(evalDeclarations)
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

		ctx, err := buildContext()
		if err != nil {
			return err
		}

		value, diag, err := engine.Explain(result.Configuration, evalFeature, ctx)
		if err != nil {
			return err
		}

		if strings.EqualFold(format, "json") {
			return printJSON(map[string]any{
				"value":       value.Raw(),
				"reason":      diag.Reason,
				"selectedRule":    diag.SelectedRule,
				"selectedDefault": diag.SelectedDefault,
				"bucket":          diag.Bucket,
				"bucketMissing":   diag.BucketMissing,
			})
		}

		fmt.Printf("value:  %v\n", value.Raw())
		fmt.Printf("reason: %s\n", diag.Reason)
		if diag.SelectedRule != "" {
			fmt.Printf("rule:   %s\n", diag.SelectedRule)
		}
		if !diag.BucketMissing {
			fmt.Printf("bucket: %d\n", diag.Bucket)
		}
		for _, skip := range diag.RolloutSkipped {
			fmt.Printf("skipped rule %q at bucket %d (not in rollout)\n", skip.RuleNote, skip.Bucket)
		}
		return nil
	},
}

func buildContext() (targeting.Context, error) {
	ctx := targeting.NewContext()

	if evalStableId != "" {
		ctx = ctx.WithStableId(ids.StableIdOfOpaque(evalStableId))
	}
	if evalLocale != "" {
		ctx = ctx.WithLocale(ids.AppLocale(evalLocale))
	}
	if evalPlatform != "" {
		ctx = ctx.WithPlatform(ids.Platform(evalPlatform))
	}
	if evalAppVersion != "" {
		v, err := ids.ParseVersion(evalAppVersion)
		if err != nil {
			return ctx, fmt.Errorf("invalid --app-version %q: %w", evalAppVersion, err)
		}
		ctx = ctx.WithAppVersion(v)
	}
	for _, axis := range evalAxes {
		parts := strings.SplitN(axis, "=", 2)
		if len(parts) != 2 {
			return ctx, fmt.Errorf("invalid --axis %q, expected key=value", axis)
		}
		ctx = ctx.WithAxisValue(parts[0], parts[1])
	}

	return ctx, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringVar(&evalDeclarations, "declarations", "", "Path to the feature declarations file (required)")
	evalCmd.Flags().StringVar(&evalFeature, "feature", "", "Feature id to evaluate (required)")
	evalCmd.Flags().StringVar(&evalStableId, "stable-id", "", "Stable identity for bucketing (opaque, not hex-validated)")
	evalCmd.Flags().StringVar(&evalLocale, "locale", "", "Context locale, e.g. en-US")
	evalCmd.Flags().StringVar(&evalPlatform, "platform", "", "Context platform, e.g. IOS")
	evalCmd.Flags().StringVar(&evalAppVersion, "app-version", "", "Context app version, e.g. 2.3.0")
	evalCmd.Flags().StringSliceVar(&evalAxes, "axis", nil, "Axis value as key=value (repeatable)")
	evalCmd.MarkFlagRequired("declarations")
	evalCmd.MarkFlagRequired("feature")
}
