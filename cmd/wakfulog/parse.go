package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wakfulog/wakfulog-go/pkg/wakfulog"
	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/event"
	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/rules"
)

var (
	parseFormat    string
	parseArchetype string
	parseTypes     []string
	parseRaw       bool
	parseRulesFile string
)

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Classify a saved chat log into events",
	Long: `Classify a saved chat log into combat events, in file order.

Examples:
  # All recognized events as JSON Lines
  wakfulog parse wakfu_chat.log

  # Only Crâ casts, human-readable
  wakfulog parse --archetype cra --types spell_cast --format pretty wakfu_chat.log`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "jsonl",
		"Output format: jsonl, pretty")
	parseCmd.Flags().StringVarP(&parseArchetype, "archetype", "a", rules.ArchetypeIop,
		"Archetype context for classification: iop, cra")
	parseCmd.Flags().StringSliceVarP(&parseTypes, "types", "t", nil,
		"Event types to show (comma-separated)")
	parseCmd.Flags().BoolVar(&parseRaw, "raw", false,
		"Include raw log lines in output")
	parseCmd.Flags().StringVar(&parseRulesFile, "rules", "",
		"Detection rules YAML file (built-in rules if not specified)")

	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	if !ValidFormats[parseFormat] {
		return fmt.Errorf("unknown format: %s", parseFormat)
	}

	opts := []wakfulog.Option{
		wakfulog.WithArchetype(parseArchetype),
		wakfulog.WithIncludeRawLine(parseRaw),
	}
	if parseRulesFile != "" {
		opts = append(opts, wakfulog.WithRulesFile(parseRulesFile))
	}
	if len(parseTypes) > 0 {
		types := make([]event.Type, len(parseTypes))
		for i, t := range parseTypes {
			types[i] = event.Type(t)
		}
		opts = append(opts, wakfulog.WithIncludeEvents(types...))
	}

	events, err := wakfulog.ParseFile(args[0], opts...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, ev := range events {
		if err := OutputEvent(parseFormat, ev, out); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}
	return nil
}
