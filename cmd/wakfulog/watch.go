package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wakfulog/wakfulog-go/pkg/wakfulog"
	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/rules"
	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/state"
)

var (
	watchLogDir     string
	watchFormat     string
	watchCharacter  string
	watchArchetype  string
	watchKinds      []string
	watchReplayLast int
	watchRulesFile  string
	watchWait       bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the chat log and print state-change notifications",
	Long: `Follow the Wakfu chat log and print resource, buff, cast and combo
notifications as they happen.

Notifications are output as JSON Lines by default (one JSON object per
line), which makes it easy to process with tools like jq.

Examples:
  # Track an Iop, auto-adopting the first fighter seen casting
  wakfulog watch

  # Track a named Crâ
  wakfulog watch --character Sylvarin --archetype cra

  # Human-readable output, only resource changes and resolved casts
  wakfulog watch --format pretty --kinds resource_changed,cast_resolved

  # Replay the last 500 lines first (catch up on a running combat)
  wakfulog watch --replay-last 500

  # Pipe to jq
  wakfulog watch | jq 'select(.kind == "cast_resolved")'`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchLogDir, "log-dir", "d", "",
		"Chat log directory (auto-detected if not specified)")
	watchCmd.Flags().StringVarP(&watchFormat, "format", "f", "jsonl",
		"Output format: jsonl, pretty")
	watchCmd.Flags().StringVarP(&watchCharacter, "character", "c", "",
		"Fighter name to track (first caster seen if not specified)")
	watchCmd.Flags().StringVarP(&watchArchetype, "archetype", "a", rules.ArchetypeIop,
		"Archetype to track: iop, cra")
	watchCmd.Flags().StringSliceVarP(&watchKinds, "kinds", "k", nil,
		"Notification kinds to show (comma-separated: resource_changed,cast_resolved,...)")
	watchCmd.Flags().IntVar(&watchReplayLast, "replay-last", -1,
		"Replay last N lines before following (-1 = disabled, 0 = from start)")
	watchCmd.Flags().StringVar(&watchRulesFile, "rules", "",
		"Detection rules YAML file (built-in rules if not specified)")
	watchCmd.Flags().BoolVar(&watchWait, "wait", false,
		"Wait for the chat log to appear instead of failing")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !ValidFormats[watchFormat] {
		return fmt.Errorf("unknown format: %s", watchFormat)
	}

	opts := []wakfulog.Option{
		wakfulog.WithLogDir(watchLogDir),
		wakfulog.WithWaitForLogs(watchWait),
		wakfulog.WithLogger(buildLogger()),
		wakfulog.WithCharacter(watchCharacter, watchArchetype),
	}
	if watchRulesFile != "" {
		opts = append(opts, wakfulog.WithRulesFile(watchRulesFile))
	}
	if len(watchKinds) > 0 {
		kinds := make([]state.Kind, len(watchKinds))
		for i, k := range watchKinds {
			kinds[i] = state.Kind(k)
		}
		opts = append(opts, wakfulog.WithIncludeKinds(kinds...))
	}
	switch {
	case watchReplayLast == 0:
		opts = append(opts, wakfulog.WithReplayFromStart())
	case watchReplayLast > 0:
		opts = append(opts, wakfulog.WithReplayLastN(watchReplayLast))
	}

	tracker, err := wakfulog.NewTracker(opts...)
	if err != nil {
		return err
	}
	defer tracker.Close()

	notes, errs, err := tracker.Track(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for {
		select {
		case note, ok := <-notes:
			if !ok {
				return nil
			}
			if err := OutputNotification(watchFormat, note, out); err != nil {
				return fmt.Errorf("output error: %w", err)
			}
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			if verbose {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}
		case <-ctx.Done():
			return nil
		}
	}
}
