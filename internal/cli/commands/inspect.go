package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/logplay/pkg/config"
	"github.com/ccollicutt/logplay/pkg/detector"
)

// InspectOptions holds command-line options for the inspect command.
type InspectOptions struct {
	Output      string
	SampleSize  int
	WriteConfig string
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	opts := &InspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect <log-file|directory>",
		Short: "Check how many lines of a log file will replay",
		Long: `Sample lines from a log file, or from every *.log file in a directory, and
report how many decode as deltas.

Lines are classified as:
  - delta   JSON object with an "updates" array
  - object  any other JSON object (still replayed)
  - invalid not a JSON object (skipped during replay)

Optionally generates a starter config file with --write-config.

Example:
  logplay inspect ./deltalogs/2024-06-01.log
  logplay inspect --sample 1000 ./deltalogs
  logplay inspect -w logplay.yaml ./deltalogs`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", 100, "Number of lines to sample per file")
	cmd.Flags().StringVarP(&opts.WriteConfig, "write-config", "w", "", "Write starter config to file (will not overwrite)")

	return cmd
}

// FileReport is the inspection result for one file.
type FileReport struct {
	File         string                 `json:"file"`
	SampledLines int                    `json:"sampled_lines"`
	Deltas       int                    `json:"deltas"`
	Objects      int                    `json:"objects"`
	Invalid      int                    `json:"invalid"`
	Confidence   float64                `json:"confidence"`
	Contexts     []string               `json:"contexts,omitempty"`
	Examples     []detector.InvalidLine `json:"invalid_examples,omitempty"`
}

func runInspect(cmd *cobra.Command, args []string, opts *InspectOptions) error {
	target := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	info, err := os.Stat(target)
	if os.IsNotExist(err) {
		return fmt.Errorf("log file not found: %s", target)
	}
	if err != nil {
		return err
	}

	reports, err := inspect(ctx, target, info.IsDir(), opts.SampleSize)
	if err != nil {
		return fmt.Errorf("inspection failed: %w", err)
	}

	if opts.WriteConfig != "" {
		dir := target
		if !info.IsDir() {
			dir = filepath.Dir(target)
		}
		if err := writeStarterConfig(out, dir, reports, opts.WriteConfig); err != nil {
			return err
		}
	}

	switch opts.Output {
	case "json":
		return outputInspectJSON(out, reports)
	case "text":
		return outputInspectText(out, reports)
	default:
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}
}

func inspect(ctx context.Context, target string, isDir bool, sampleSize int) ([]FileReport, error) {
	d := detector.New(detector.WithSampleSize(sampleSize))

	results := make(map[string]*detector.DetectionResult)
	if isDir {
		var err error
		if results, err = d.SampleDirectory(ctx, target); err != nil {
			return nil, err
		}
	} else {
		r, err := d.DetectFromFile(ctx, target)
		if err != nil {
			return nil, err
		}
		results[target] = r
	}

	reports := make([]FileReport, 0, len(results))
	for file, r := range results {
		reports = append(reports, FileReport{
			File:         file,
			SampledLines: r.SampledLines,
			Deltas:       r.Deltas,
			Objects:      r.Objects,
			Invalid:      r.Invalid,
			Confidence:   r.Confidence(),
			Contexts:     r.Contexts,
			Examples:     r.Examples,
		})
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].File < reports[j].File })
	return reports, nil
}

func outputInspectText(w io.Writer, reports []FileReport) error {
	fmt.Fprintln(w, "=== Delta Log Inspection ===")
	fmt.Fprintln(w)

	if len(reports) == 0 {
		fmt.Fprintln(w, "No log files found.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Tip: only files with \".log\" in their name are replayed.")
		return nil
	}

	for _, r := range reports {
		fmt.Fprintf(w, "File: %s\n", r.File)
		fmt.Fprintf(w, "Lines sampled: %d\n", r.SampledLines)

		if r.Deltas+r.Objects == 0 {
			fmt.Fprintln(w, "No replayable lines found.")
		} else {
			fmt.Fprintf(w, "Replayable: %.1f%% (%d deltas, %d other objects)\n",
				r.Confidence*100, r.Deltas, r.Objects)
		}
		if len(r.Contexts) > 0 {
			fmt.Fprintln(w, "Contexts:")
			for _, c := range r.Contexts {
				fmt.Fprintf(w, "  - %s\n", c)
			}
		}
		if r.Invalid > 0 {
			fmt.Fprintf(w, "Skipped lines: %d\n", r.Invalid)
			for _, ex := range r.Examples {
				fmt.Fprintf(w, "  line %d: %s\n", ex.LineNum, ex.Error)
				fmt.Fprintf(w, "    %s\n", ex.Line)
			}
		}
		fmt.Fprintln(w)
	}
	return nil
}

func outputInspectJSON(w io.Writer, reports []FileReport) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(struct {
		Files []FileReport `json:"files"`
	}{Files: reports})
}

// writeStarterConfig writes a config file pointing at dir. It refuses to overwrite.
func writeStarterConfig(w io.Writer, dir string, reports []FileReport, configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s (will not overwrite)", configPath)
	}

	playable := 0
	for _, r := range reports {
		playable += r.Deltas + r.Objects
	}
	if playable == 0 {
		return fmt.Errorf("cannot generate config: no replayable lines found")
	}

	// #nosec G306 - config file doesn't need restrictive permissions
	if err := os.WriteFile(configPath, []byte(generateStarterConfig(dir, len(reports))), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(w, "Wrote starter config to: %s\n\n", configPath)
	return nil
}

// generateStarterConfig creates a YAML config template.
func generateStarterConfig(dir string, files int) string {
	absDir := dir
	if abs, err := filepath.Abs(dir); err == nil {
		absDir = abs
	}

	return fmt.Sprintf(`# logplay configuration
# Generated by: logplay inspect (%d log file(s))

directory: %s

# Deltas per second, 0 < rate_hz <= %g
rate_hz: %g

# drain keeps reading while stopped, pause blocks the reader
on_stop: %s

# Only output deltas matching this expression:
# filter: 'context == "vessels.self"'

# Serve /stream (WebSocket) and /metrics:
# listen: ":3000"

logging:
  level: %s
  # path: /var/log/logplay/logplay.log

# webhooks:
#   - name: collector
#     url: https://example.com/deltas
#     token: ${COLLECTOR_TOKEN}
#     timeout: 10s
`, files, absDir, config.MaxRateHz, config.DefaultRateHz, config.DefaultStopPolicy, config.DefaultLogLevel)
}
