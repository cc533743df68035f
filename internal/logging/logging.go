// Package logging builds the process logger.
//
// Logs always go to stderr because stdout carries the MCP protocol. When a
// log file is configured, entries are also written there with rotation.
package logging

import (
	"io"
	"os"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configure New.
type Options struct {
	Level logrus.Level

	// File, when set, receives a copy of every entry and is rotated at
	// MaxSizeMB megabytes.
	File      string
	MaxSizeMB int

	// Stderr overrides the console writer. Tests use it to capture output.
	Stderr io.Writer
}

// New returns a logger writing nested-format entries to stderr and, when
// configured, to a rotating file.
func New(opts Options) *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(opts.Level)
	logger.SetFormatter(&formatter.Formatter{
		NoColors:        true,
		TimestampFormat: "2006-01-02 15:04:05",
		HideKeys:        false,
		FieldsOrder:     []string{"call_id", "tool", "method"},
	})

	console := opts.Stderr
	if console == nil {
		console = os.Stderr
	}
	writers := []io.Writer{console}

	if opts.File != "" {
		maxSize := opts.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 20
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.File,
			LocalTime:  true,
			MaxSize:    maxSize,
			MaxAge:     7,
			MaxBackups: 3,
		})
	}

	logger.SetOutput(io.MultiWriter(writers...))
	return logger
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
