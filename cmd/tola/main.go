// Command tola builds and serves a site compiled from a directory of
// Markdown sources (the Typst compiler seam in internal/compiler/typst is
// not enabled by this command): a one-shot
// `tola build`, a `tola serve` with filesystem-watching hot reload, plus
// the `tola query` and `tola validate` supplemented commands.
//
// This file is the entry point and command registration hub, mirroring
// the teacher CLI's main.go: a root command with persistent
// --workspace/--verbose flags, a PersistentPreRunE that brings up
// logging before any subcommand runs, and a PersistentPostRun that tears
// it back down.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tola-rs/tola/internal/logging"
)

var (
	verbose   bool
	workspace string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tola",
	Short: "tola builds and serves a statically compiled site with sub-second hot reload",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		ws := workspaceRoot()
		if err := logging.Initialize(ws, verbose); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to initialize file logging: %v\n", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

// workspaceRoot resolves --workspace to an absolute path, defaulting to
// the current directory.
func workspaceRoot() string {
	if workspace == "" {
		wd, _ := os.Getwd()
		return wd
	}
	abs, err := filepath.Abs(workspace)
	if err != nil {
		return workspace
	}
	return abs
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "site root directory (default: current directory)")

	rootCmd.AddCommand(buildCmd, serveCmd, validateCmd, queryCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
