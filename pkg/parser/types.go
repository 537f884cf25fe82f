// Package parser reads delta log files and decodes their lines.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrDecode is returned when a line is not a JSON object.
var ErrDecode = errors.New("line is not a JSON object")

// Delta is a single decoded event record read from a log line.
type Delta map[string]any

// Line is a raw log line with its position.
type Line struct {
	// Content is the raw line text.
	Content string

	// Source is the file path this line came from.
	Source string

	// LineNum is the 1-based line number in the source file.
	LineNum int
}

// Decode parses a line as a delta. Anything other than a JSON object fails with ErrDecode.
func Decode(line string) (Delta, error) {
	var delta Delta
	if err := json.Unmarshal([]byte(line), &delta); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if delta == nil {
		return nil, fmt.Errorf("%w: null", ErrDecode)
	}
	return delta, nil
}
