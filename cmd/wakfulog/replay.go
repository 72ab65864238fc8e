package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wakfulog/wakfulog-go/pkg/wakfulog"
	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/rules"
	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/state"
)

var (
	replayFormat    string
	replayCharacter string
	replayArchetype string
	replayKinds     []string
	replayRulesFile string
)

var replayCmd = &cobra.Command{
	Use:   "replay FILE",
	Short: "Interpret a saved chat log into state-change notifications",
	Long: `Run the full tracking pipeline over a saved chat log and print every
state-change notification in order. Offline counterpart of watch.

Examples:
  # Resolve a whole recorded fight
  wakfulog replay wakfu_chat.log

  # Only resolved casts of a named Crâ
  wakfulog replay --character Sylvarin --archetype cra \
      --kinds cast_resolved wakfu_chat.log`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().StringVarP(&replayFormat, "format", "f", "jsonl",
		"Output format: jsonl, pretty")
	replayCmd.Flags().StringVarP(&replayCharacter, "character", "c", "",
		"Fighter name to track (first caster seen if not specified)")
	replayCmd.Flags().StringVarP(&replayArchetype, "archetype", "a", rules.ArchetypeIop,
		"Archetype to track: iop, cra")
	replayCmd.Flags().StringSliceVarP(&replayKinds, "kinds", "k", nil,
		"Notification kinds to show (comma-separated)")
	replayCmd.Flags().StringVar(&replayRulesFile, "rules", "",
		"Detection rules YAML file (built-in rules if not specified)")

	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	if !ValidFormats[replayFormat] {
		return fmt.Errorf("unknown format: %s", replayFormat)
	}

	opts := []wakfulog.Option{
		wakfulog.WithLogger(buildLogger()),
		wakfulog.WithCharacter(replayCharacter, replayArchetype),
	}
	if replayRulesFile != "" {
		opts = append(opts, wakfulog.WithRulesFile(replayRulesFile))
	}
	if len(replayKinds) > 0 {
		kinds := make([]state.Kind, len(replayKinds))
		for i, k := range replayKinds {
			kinds[i] = state.Kind(k)
		}
		opts = append(opts, wakfulog.WithIncludeKinds(kinds...))
	}

	tracker, err := wakfulog.NewTracker(opts...)
	if err != nil {
		return err
	}
	defer tracker.Close()

	notes, err := tracker.ProcessFile(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, note := range notes {
		if err := OutputNotification(replayFormat, note, out); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}
	return nil
}
