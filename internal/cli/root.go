// Package cli provides the command-line interface for logplay.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/logplay/internal/cli/commands"
	"github.com/ccollicutt/logplay/internal/cli/plugins"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	return run(os.Args[1:])
}

func run(args []string) int {
	rootCmd := NewRootCommand()
	rootCmd.SetArgs(args)

	// Unknown first words are handed to a plugin before cobra sees them.
	plugin := pluginCandidate(rootCmd, args)
	if plugin != "" {
		if pluginPath, err := plugins.Find(plugin); err == nil {
			return plugins.Execute(pluginPath, args[1:])
		}
	}

	if err := rootCmd.Execute(); err != nil {
		if plugin != "" {
			_, _ = fmt.Fprintln(os.Stderr, plugins.NotFoundMessage(plugin))
			return 2
		}
		// SilenceErrors prevents Cobra from printing this
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	return commands.ExitCode
}

// pluginCandidate returns the first argument if it could name a plugin.
func pluginCandidate(rootCmd *cobra.Command, args []string) string {
	if len(args) == 0 {
		return ""
	}
	name := args[0]
	if name == "" || name[0] == '-' || isBuiltinCommand(rootCmd, name) {
		return ""
	}
	return name
}

// isBuiltinCommand checks if a command name is a built-in cobra command.
func isBuiltinCommand(rootCmd *cobra.Command, name string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == name || cmd.HasAlias(name) {
			return true
		}
	}
	return name == "help" || name == "completion"
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "logplay",
		Short: "Replay recorded delta logs as a live feed",
		Long: `logplay replays recorded delta logs, one JSON object per line, at a fixed
rate. It loops over every *.log file in a directory forever, so a recorded
session can stand in for a live data source.

Deltas can be printed, filtered, streamed over WebSocket and posted to webhooks.

PLUGINS:
  Plugins are standalone binaries named logplay-<command> that are
  discovered and invoked for unknown commands.

  Plugin locations (searched in order):
    1. Same directory as the logplay binary
    2. $LOGPLAY_PLUGIN_DIR, or ~/.logplay/plugins/
    3. Anywhere in PATH`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewPlayCommand())
	rootCmd.AddCommand(commands.NewInspectCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
