package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// Options are the defaults of loggers created after Configure.
type Options struct {
	Level   string
	Console bool
	// File, when set, receives a copy of every entry as JSON lines and is
	// rotated by size.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var (
	defaultsMu sync.RWMutex
	defaults   = Options{Level: "info"}
	fileOut    *lumberjack.Logger
)

// Configure sets the options used by loggers created afterwards. LOG_LEVEL
// and APP_ENV still take precedence over Level and Console.
func Configure(opts Options) error {
	var lj *lumberjack.Logger
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
		lj = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
		}
	}
	defaultsMu.Lock()
	defer defaultsMu.Unlock()
	if fileOut != nil {
		_ = fileOut.Close()
	}
	defaults, fileOut = opts, lj
	return nil
}

// NewZerologLogger creates a ZerologLogger writing to stdout and to the
// configured log file. APP_ENV=dev selects the human readable console
// writer; LOG_LEVEL (debug, info, warn, error) sets the minimum level. Both
// fall back to the configured options. All entries carry the component field.
func NewZerologLogger(component string) Logger {
	defaultsMu.RLock()
	opts, file := defaults, fileOut
	defaultsMu.RUnlock()
	level, console := opts.Level, opts.Console
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		level = env
	}
	if env := os.Getenv("APP_ENV"); env != "" {
		console = strings.ToLower(env) == "dev"
	}

	var out io.Writer = os.Stdout
	if console {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	if file != nil {
		out = zerolog.MultiLevelWriter(out, file)
	}
	return NewZerologLoggerTo(out, component, level)
}

// NewZerologLoggerTo creates a logger writing to w at the given level name.
// An unknown or empty level selects info.
func NewZerologLoggerTo(w io.Writer, component, level string) *ZerologLogger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	z := zerolog.New(w).Level(lvl).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	l.log.Debug().Fields(fields).Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Infow(msg string, fields map[string]any) {
	l.log.Info().Fields(fields).Msg(msg)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
