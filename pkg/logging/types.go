// Package logging builds the structured logger used by logplay.
package logging

// Config defines how log output is written.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Path is the log file. Empty means stderr.
	Path string `yaml:"path,omitempty"`

	// Rotation settings, only used when Path is set.
	MaxSize    int  `yaml:"max_size,omitempty"` // megabytes
	MaxBackups int  `yaml:"max_backups,omitempty"`
	MaxAge     int  `yaml:"max_age,omitempty"` // days
	Compress   bool `yaml:"compress,omitempty"`
}
