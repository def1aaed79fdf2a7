package check

import (
	"log/slog"
	"time"
)

// Output formats accepted by Render.
const (
	FormatText = "text"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Config holds settings for a check run.
type Config struct {
	Request  string        // request document (required)
	Tables   []string      // type table files, consulted in order
	Dir      string        // optional: directory to load Go packages from
	Packages []string      // package patterns inside Dir (default "./")
	Format   string        // output format for Render
	Jobs     int           // max concurrent validations (<= 0: one per CPU)
	Debounce time.Duration // watch mode: quiet period before re-running
	Logger   *slog.Logger  // defaults to slog.Default()
	Command  string        // canonical invocation, echoed in reports
	Version  string        // shimcheck build version
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c Config) debounce() time.Duration {
	if c.Debounce > 0 {
		return c.Debounce
	}
	return 300 * time.Millisecond
}
