package parser

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
)

// MaxLineSize is the longest line a LineReader accepts.
const MaxLineSize = 1024 * 1024

// LineReader reads one log file line by line.
// It is not safe for concurrent use.
type LineReader struct {
	path    string
	file    *os.File
	scanner *bufio.Scanner
	lineNum int
}

// OpenLineReader opens path for sequential reading.
func OpenLineReader(path string) (*LineReader, error) {
	f, err := os.Open(path) // #nosec G304 -- paths come from the configured log directory
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)

	return &LineReader{
		path:    path,
		file:    f,
		scanner: scanner,
	}, nil
}

// Next returns the next line. Returns io.EOF when the file is exhausted.
func (r *LineReader) Next(ctx context.Context) (Line, error) {
	select {
	case <-ctx.Done():
		return Line{}, ctx.Err()
	default:
	}

	if r.scanner.Scan() {
		r.lineNum++
		return Line{
			Content: r.scanner.Text(),
			Source:  r.path,
			LineNum: r.lineNum,
		}, nil
	}

	if err := r.scanner.Err(); err != nil {
		return Line{}, fmt.Errorf("reading %s: %w", r.path, err)
	}
	return Line{}, io.EOF
}

// Path returns the file being read.
func (r *LineReader) Path() string {
	return r.path
}

// Close releases the underlying file.
func (r *LineReader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
