// Package logging builds the logrus loggers used by jr.
//
// Diagnostics go to stderr as logfmt-style text. Messages meant for the user
// (results, warnings about their data) do not go through here; commands print
// those through their IO.
package logging

import (
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = log.WarnLevel

type Options struct {
	Level     string
	Writer    io.Writer
	Component string
}

// New returns an entry tagged with the component field when one is given.
func New(opts Options) *log.Entry {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}

	logger := log.New()
	logger.SetOutput(writer)
	logger.SetLevel(ParseLevel(opts.Level))
	logger.SetFormatter(&log.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})

	entry := log.NewEntry(logger)

	component := strings.TrimSpace(opts.Component)
	if component != "" {
		entry = entry.WithField("component", component)
	}

	return entry
}

// ParseLevel maps a config level to logrus. Empty, unknown, and levels outside
// error..debug fall back to [DefaultLevel].
func ParseLevel(level string) log.Level {
	lvl, ok := configLevel(level)
	if !ok {
		return DefaultLevel
	}

	return lvl
}

// IsValidLevel reports whether level is accepted in config files.
func IsValidLevel(level string) bool {
	_, ok := configLevel(level)

	return ok
}

// configLevel restricts logrus levels to the ones config may name. panic,
// fatal, and trace parse in logrus but are not offered.
func configLevel(level string) (log.Level, bool) {
	lvl, err := log.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return 0, false
	}

	return lvl, lvl >= log.ErrorLevel && lvl <= log.DebugLevel
}

// Discard returns a logger that drops everything.
func Discard() *log.Entry {
	logger := log.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(log.PanicLevel)

	return log.NewEntry(logger)
}
