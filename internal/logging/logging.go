package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// New returns a logger writing to stdout with the given prefix and level name.
// Unknown levels fall back to info.
func New(prefix, level string) *log.Logger {
	return NewWithWriter(os.Stdout, prefix, level)
}

func NewWithWriter(w io.Writer, prefix, level string) *log.Logger {
	logger := log.New(w)
	logger.SetPrefix(prefix)
	logger.SetReportTimestamp(true)
	logger.SetTimeFormat(time.DateTime)
	logger.SetLevel(ParseLevel(level))
	return logger
}

// ParseLevel maps debug, warn and error to their levels and anything else to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
