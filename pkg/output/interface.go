package output

import (
	"context"
	"fmt"
	"io"

	"github.com/ccollicutt/logplay/pkg/parser"
	"github.com/ccollicutt/logplay/pkg/player"
)

// Formatter renders replay output in a specific format.
type Formatter interface {
	// FormatDelta renders one played delta.
	FormatDelta(ctx context.Context, delta parser.Delta, w io.Writer) error

	// FormatStatus renders a status message. It may write nothing, depending on options.
	FormatStatus(ctx context.Context, status player.Status, w io.Writer) error

	// FormatSummary renders the end-of-session summary.
	FormatSummary(ctx context.Context, summary *Summary, w io.Writer) error

	// Name returns the format name (text, json).
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Verbose includes per-delta progress statuses.
	Verbose bool

	// Quiet suppresses all statuses and the summary.
	Quiet bool
}

// wantStatus reports whether s should be rendered under opts.
func (o FormatOptions) wantStatus(s player.Status) bool {
	if o.Quiet {
		return false
	}
	return s.IsLifecycle() || o.Verbose
}

// New returns the formatter for name.
func New(name string, opts FormatOptions) (Formatter, error) {
	switch name {
	case "text":
		return NewTextFormatter(opts), nil
	case "json":
		return NewJSONFormatter(opts), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use text or json)", name)
	}
}
