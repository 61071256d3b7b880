// Package logging installs the process-wide slog handler.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// ParseLevel maps debug, info, warn and error to a log level.
func ParseLevel(s string) (log.Level, error) {
	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return log.InfoLevel, fmt.Errorf("invalid log level %q (debug, info, warn, error)", s)
	}
	return level, nil
}

// New returns a charm logger writing to w at level.
func New(w io.Writer, level log.Level) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
	logger.SetStyles(styles())
	return logger
}

// Setup makes a charm logger the slog default and returns it.
func Setup(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger := New(w, lvl)
	slog.SetDefault(slog.New(logger))
	return logger, nil
}

func styles() *log.Styles {
	s := log.DefaultStyles()
	s.Levels[log.DebugLevel] = s.Levels[log.DebugLevel].Foreground(lipgloss.Color("241"))
	s.Levels[log.WarnLevel] = s.Levels[log.WarnLevel].Foreground(lipgloss.Color("3"))
	s.Levels[log.ErrorLevel] = s.Levels[log.ErrorLevel].Foreground(lipgloss.Color("1")).Bold(true)
	s.Keys["tool"] = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	s.Keys["error"] = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	return s
}
