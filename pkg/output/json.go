package output

import (
	"context"
	"encoding/json"
	"io"

	"github.com/ccollicutt/logplay/pkg/parser"
	"github.com/ccollicutt/logplay/pkg/player"
)

// JSONFormatter writes one JSON document per line, tagged with its type.
type JSONFormatter struct {
	opts FormatOptions
}

// NewJSONFormatter creates a new JSON formatter with the given options.
func NewJSONFormatter(opts FormatOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

type deltaRecord struct {
	Type  string       `json:"type"`
	Delta parser.Delta `json:"delta"`
}

type statusRecord struct {
	Type    string   `json:"type"`
	Kind    string   `json:"kind"`
	Message string   `json:"message"`
	File    string   `json:"file,omitempty"`
	Count   int      `json:"count,omitempty"`
	RateHz  *float64 `json:"rate_hz,omitempty"`
}

type summaryRecord struct {
	Type    string   `json:"type"`
	Summary *Summary `json:"summary"`
}

// FormatDelta writes {"type":"delta","delta":...}.
func (f *JSONFormatter) FormatDelta(ctx context.Context, delta parser.Delta, w io.Writer) error {
	return json.NewEncoder(w).Encode(deltaRecord{Type: "delta", Delta: delta})
}

// FormatStatus writes {"type":"status",...}.
func (f *JSONFormatter) FormatStatus(ctx context.Context, status player.Status, w io.Writer) error {
	if !f.opts.wantStatus(status) {
		return nil
	}

	rec := statusRecord{
		Type:    "status",
		Kind:    status.Kind.String(),
		Message: status.String(),
	}
	if !status.IsLifecycle() {
		rate := status.RateHz
		rec.File = status.File
		rec.Count = status.Count
		rec.RateHz = &rate
	}
	return json.NewEncoder(w).Encode(rec)
}

// FormatSummary writes {"type":"summary","summary":...}.
func (f *JSONFormatter) FormatSummary(ctx context.Context, summary *Summary, w io.Writer) error {
	if f.opts.Quiet {
		return nil
	}
	return json.NewEncoder(w).Encode(summaryRecord{Type: "summary", Summary: summary})
}
