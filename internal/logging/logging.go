// Package logging builds the gommon loggers shared by the server, the
// services and the CLI.
package logging

import (
	"io"
	"strings"

	"github.com/labstack/gommon/log"
)

// ParseLevel maps debug|info|warn|error|off to a gommon level. The boolean
// is false for unknown names, which fall back to WARN.
func ParseLevel(name string) (log.Lvl, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return log.DEBUG, true
	case "info":
		return log.INFO, true
	case "warn", "":
		return log.WARN, true
	case "error":
		return log.ERROR, true
	case "off":
		return log.OFF, true
	default:
		return log.WARN, false
	}
}

// New returns a logger with the given prefix writing to out at the named level.
func New(prefix string, level string, out io.Writer) *log.Logger {
	l := log.New(prefix)
	if out != nil {
		l.SetOutput(out)
	}
	lvl, ok := ParseLevel(level)
	l.SetLevel(lvl)
	if !ok {
		l.Warnf("unknown log level: %s . fall-backed to warn", level)
	}
	return l
}
