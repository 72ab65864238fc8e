package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wakfulog/wakfulog-go/pkg/wakfulog"
	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/event"
	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/rules"
)

var (
	eventsLogDir     string
	eventsFormat     string
	eventsArchetype  string
	eventsTypes      []string
	eventsRaw        bool
	eventsReplayLast int
	eventsRulesFile  string
	eventsWait       bool
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Follow the chat log and print classified events",
	Long: `Follow the Wakfu chat log and print classified combat events without
state interpretation. Useful for debugging detection rules.

Examples:
  # All recognized events as JSON Lines
  wakfulog events

  # Only casts and buff gains, human-readable
  wakfulog events --types spell_cast,buff_gained --format pretty

  # Keep the raw line alongside each event
  wakfulog events --raw`,
	RunE: runEvents,
}

func init() {
	eventsCmd.Flags().StringVarP(&eventsLogDir, "log-dir", "d", "",
		"Chat log directory (auto-detected if not specified)")
	eventsCmd.Flags().StringVarP(&eventsFormat, "format", "f", "jsonl",
		"Output format: jsonl, pretty")
	eventsCmd.Flags().StringVarP(&eventsArchetype, "archetype", "a", rules.ArchetypeIop,
		"Archetype context for classification: iop, cra")
	eventsCmd.Flags().StringSliceVarP(&eventsTypes, "types", "t", nil,
		"Event types to show (comma-separated: spell_cast,buff_gained,...)")
	eventsCmd.Flags().BoolVar(&eventsRaw, "raw", false,
		"Include raw log lines in output")
	eventsCmd.Flags().IntVar(&eventsReplayLast, "replay-last", -1,
		"Replay last N lines before following (-1 = disabled, 0 = from start)")
	eventsCmd.Flags().StringVar(&eventsRulesFile, "rules", "",
		"Detection rules YAML file (built-in rules if not specified)")
	eventsCmd.Flags().BoolVar(&eventsWait, "wait", false,
		"Wait for the chat log to appear instead of failing")

	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !ValidFormats[eventsFormat] {
		return fmt.Errorf("unknown format: %s", eventsFormat)
	}

	opts := []wakfulog.Option{
		wakfulog.WithLogDir(eventsLogDir),
		wakfulog.WithWaitForLogs(eventsWait),
		wakfulog.WithLogger(buildLogger()),
		wakfulog.WithArchetype(eventsArchetype),
		wakfulog.WithIncludeRawLine(eventsRaw),
	}
	if eventsRulesFile != "" {
		opts = append(opts, wakfulog.WithRulesFile(eventsRulesFile))
	}
	if len(eventsTypes) > 0 {
		types := make([]event.Type, len(eventsTypes))
		for i, t := range eventsTypes {
			types[i] = event.Type(t)
		}
		opts = append(opts, wakfulog.WithIncludeEvents(types...))
	}
	switch {
	case eventsReplayLast == 0:
		opts = append(opts, wakfulog.WithReplayFromStart())
	case eventsReplayLast > 0:
		opts = append(opts, wakfulog.WithReplayLastN(eventsReplayLast))
	}

	watcher, err := wakfulog.NewWatcher(opts...)
	if err != nil {
		return err
	}
	defer watcher.Close()

	events, errs, err := watcher.Watch(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := OutputEvent(eventsFormat, ev, out); err != nil {
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
