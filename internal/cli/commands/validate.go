package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/logplay/pkg/config"
	"github.com/ccollicutt/logplay/pkg/parser"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a logplay configuration file without replaying anything.

Checks:
  - YAML syntax
  - on_stop policy, log level and filter expression
  - Webhook URLs
  - Log directory access and log files (warning only)`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(w, "\nConfiguration valid!\n")
	fmt.Fprintf(w, "  Directory: %s\n", cfg.Directory)
	fmt.Fprintf(w, "  Rate:      %.2f Hz (every %s)\n", float64(cfg.RateHz), config.PacingInterval(float64(cfg.RateHz)))
	fmt.Fprintf(w, "  On stop:   %s\n", cfg.OnStop)
	if cfg.Filter != "" {
		fmt.Fprintf(w, "  Filter:    %s\n", cfg.Filter)
	}
	if cfg.Listen != "" {
		fmt.Fprintf(w, "  Listen:    %s\n", cfg.Listen)
	}
	fmt.Fprintf(w, "  Webhooks:  %d\n", len(cfg.Webhooks))

	// Directory problems are warnings; the directory may not exist on this host yet.
	if info, err := os.Stat(cfg.Directory); err != nil {
		fmt.Fprintf(w, "\nWarning: Can't access log directory: %v\n", err)
		return nil
	} else if !info.IsDir() {
		fmt.Fprintf(w, "\nWarning: %s is not a directory\n", cfg.Directory)
		return nil
	}

	files, err := parser.FindLogFiles(cfg.Directory, parser.LogFileMarker)
	if err != nil {
		fmt.Fprintf(w, "\nWarning: Error listing log files: %v\n", err)
	} else if len(files) == 0 {
		fmt.Fprintf(w, "\nWarning: No log files found in %s\n", cfg.Directory)
	} else {
		fmt.Fprintf(w, "\nLog files found: %d\n", len(files))
		for _, f := range files {
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}

	return nil
}
