package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ccollicutt/logplay/pkg/parser"
	"github.com/ccollicutt/logplay/pkg/player"
)

// TextFormatter writes deltas as compact JSON lines and statuses as plain text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// FormatDelta writes the delta on one line.
func (f *TextFormatter) FormatDelta(ctx context.Context, delta parser.Delta, w io.Writer) error {
	data, err := json.Marshal(delta)
	if err != nil {
		return fmt.Errorf("encoding delta: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

// FormatStatus writes "Status: <message>".
func (f *TextFormatter) FormatStatus(ctx context.Context, status player.Status, w io.Writer) error {
	if !f.opts.wantStatus(status) {
		return nil
	}
	_, err := fmt.Fprintf(w, "Status: %s\n", status)
	return err
}

// FormatSummary writes a short session report.
func (f *TextFormatter) FormatSummary(ctx context.Context, summary *Summary, w io.Writer) error {
	if f.opts.Quiet {
		return nil
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Replayed %d deltas from %s at %.2f Hz (%d filtered out)\n",
		summary.Deltas, summary.Directory, summary.RateHz, summary.Filtered)

	if f.opts.Verbose {
		fmt.Fprintf(w, "Files: %d\n", len(summary.Files))
		for _, file := range summary.Files {
			fmt.Fprintf(w, "  - %s\n", file)
		}
		fmt.Fprintf(w, "Duration: %s\n", summary.Duration.Round(1e6))
	}
	if summary.WebhookFailures > 0 {
		fmt.Fprintf(w, "Webhook failures: %d\n", summary.WebhookFailures)
	}
	if summary.Failed() {
		fmt.Fprintf(w, "Error: %s\n", summary.Error)
	}
	return nil
}
