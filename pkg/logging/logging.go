// Package logging configures the process-wide zerolog logger for the CLI
// entry points: console or JSON output, optional rotated file logging, and a
// verbosity shortcut.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	// Level is one of trace, debug, info, warn, error. Defaults to info.
	Level string
	// Format is console or json. Empty picks console on a terminal, json
	// otherwise.
	Format string
	// File, when set, sends logs to a size-rotated file instead of stderr.
	File string
	// Verbose raises the level to debug unless Level is already lower.
	Verbose bool
	// WithCaller adds the calling file and line to every entry.
	WithCaller bool
}

// Setup installs the global logger. Call once, early in main.
func Setup(cfg Config) error {
	levelName := cfg.Level
	if levelName == "" {
		levelName = "info"
	}
	level, err := zerolog.ParseLevel(strings.ToLower(levelName))
	if err != nil {
		return errors.Wrapf(err, "unknown log level %s", cfg.Level)
	}
	if cfg.Verbose && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	var w io.Writer
	switch {
	case cfg.File != "":
		w = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		}
	case useConsole(cfg.Format):
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	default:
		w = os.Stderr
	}

	logger := zerolog.New(w).With().Timestamp()
	if cfg.WithCaller {
		logger = logger.Caller()
	}
	log.Logger = logger.Logger()
	return nil
}

func useConsole(format string) bool {
	switch strings.ToLower(format) {
	case "console", "text":
		return true
	case "json":
		return false
	default:
		return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	}
}
