// Package detector samples log files and reports whether they replay as delta logs.
package detector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/ccollicutt/logplay/pkg/parser"
)

// LineKind classifies one sampled line.
type LineKind string

const (
	// KindDelta is a JSON object with an "updates" array, the shape of a Signal K delta.
	KindDelta LineKind = "delta"
	// KindObject is any other JSON object. It still replays.
	KindObject LineKind = "object"
	// KindInvalid is skipped during replay.
	KindInvalid LineKind = "invalid"
)

// InvalidLine records a sampled line that will be skipped.
type InvalidLine struct {
	LineNum int    `json:"line_num"`
	Line    string `json:"line"`
	Error   string `json:"error"`
}

// DetectionResult holds the result of sampling a log file.
type DetectionResult struct {
	SampledLines int
	Deltas       int
	Objects      int
	Invalid      int
	Contexts     []string      // distinct "context" values, sorted
	Examples     []InvalidLine // first few invalid lines
}

// Playable returns the number of lines that would be emitted during replay.
func (r *DetectionResult) Playable() int {
	return r.Deltas + r.Objects
}

// Confidence is the fraction of sampled lines that replay, 0.0 to 1.0.
func (r *DetectionResult) Confidence() float64 {
	if r.SampledLines == 0 {
		return 0
	}
	return float64(r.Playable()) / float64(r.SampledLines)
}

// HasMatch returns true if at least one sampled line replays.
func (r *DetectionResult) HasMatch() bool {
	return r.Playable() > 0
}

// Detector samples log files.
type Detector struct {
	sampleSize  int
	maxExamples int
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of lines to sample (default 100).
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// New creates a new Detector.
func New(opts ...Option) *Detector {
	d := &Detector{
		sampleSize:  100,
		maxExamples: 5,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Classify decodes a line and reports its kind.
func Classify(line string) (LineKind, parser.Delta, error) {
	delta, err := parser.Decode(line)
	if err != nil {
		return KindInvalid, nil, err
	}
	if _, ok := delta["updates"].([]any); ok {
		return KindDelta, delta, nil
	}
	return KindObject, delta, nil
}

// DetectFromFile samples the head of a log file.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*DetectionResult, error) {
	lines, err := d.sampleFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return d.DetectFromLines(lines), nil
}

// DetectFromLines classifies a slice of log lines. Blank lines count as invalid,
// as they do during replay.
func (d *Detector) DetectFromLines(lines []string) *DetectionResult {
	result := &DetectionResult{SampledLines: len(lines)}
	contexts := make(map[string]bool)

	for i, line := range lines {
		kind, delta, err := Classify(line)
		switch kind {
		case KindDelta:
			result.Deltas++
		case KindObject:
			result.Objects++
		case KindInvalid:
			result.Invalid++
			if len(result.Examples) < d.maxExamples {
				result.Examples = append(result.Examples, InvalidLine{
					LineNum: i + 1,
					Line:    truncate(line, 80),
					Error:   err.Error(),
				})
			}
			continue
		}
		if c, ok := delta["context"].(string); ok && c != "" {
			contexts[c] = true
		}
	}

	for c := range contexts {
		result.Contexts = append(result.Contexts, c)
	}
	sort.Strings(result.Contexts)
	return result
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// sampleFile reads up to sampleSize lines from the head of a file.
func (d *Detector) sampleFile(ctx context.Context, path string) ([]string, error) {
	reader, err := parser.OpenLineReader(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var lines []string
	for len(lines) < d.sampleSize {
		line, err := reader.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("sampling %s: %w", path, err)
		}
		lines = append(lines, line.Content)
	}
	return lines, nil
}

// SampleDirectory runs DetectFromFile on every log file in dir.
func (d *Detector) SampleDirectory(ctx context.Context, dir string) (map[string]*DetectionResult, error) {
	files, err := parser.FindLogFiles(dir, parser.LogFileMarker)
	if err != nil {
		return nil, err
	}
	results := make(map[string]*DetectionResult, len(files))
	for _, f := range files {
		r, err := d.DetectFromFile(ctx, f)
		if err != nil {
			return nil, err
		}
		results[f] = r
	}
	return results, nil
}
