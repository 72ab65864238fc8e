package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "wakfulog",
	Short: "Track Wakfu combat resources from chat logs",
	Long: `wakfulog follows the Wakfu chat log, classifies French combat lines
and tracks per-character resources (PA/PM/PW), buffs, procs and combo
chains, emitting state changes as they happen.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false,
		"Print warnings and debug output to stderr")
}

// buildLogger returns a debug logger on stderr when --verbose is set,
// nil otherwise (library logging disabled).
func buildLogger() *slog.Logger {
	if !verbose {
		return nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}
