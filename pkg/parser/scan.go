package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LogFileMarker is the substring that makes a directory entry a log file.
const LogFileMarker = ".log"

// FindLogFiles lists dir and returns the paths of entries whose name contains marker,
// in directory listing order. Sub-directories are skipped.
func FindLogFiles(dir, marker string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.Contains(entry.Name(), marker) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}
