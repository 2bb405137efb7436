package log

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"

	rotateMaxSizeMB  = 50
	rotateMaxBackups = 10
	rotateMaxAgeDays = 14
)

var logger = zerolog.Nop()
var once sync.Once

type LoggerOption func(*LoggerConfig)

type LoggerConfig struct {
	format   string
	fileName string
	level    zerolog.Level
	stdout   io.Writer
}

// WithFormat selects the stdout encoding. Anything other than "console" is JSON.
func WithFormat(format string) LoggerOption {
	return func(l *LoggerConfig) {
		l.format = strings.ToLower(strings.TrimSpace(format))
	}
}

// WithFileLogger adds a rotated JSON file next to stdout.
func WithFileLogger(fileName string) LoggerOption {
	return func(l *LoggerConfig) {
		l.fileName = fileName
	}
}

// WithLevel sets the level from its textual name (debug, info, warn, ...).
// Unknown names keep the default info level.
func WithLevel(level string) LoggerOption {
	return func(l *LoggerConfig) {
		lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
		if err != nil || lvl == zerolog.NoLevel {
			return
		}
		l.level = lvl
	}
}

// Init builds the process logger once. Later calls are ignored.
func Init(serviceName string, opts ...LoggerOption) {
	once.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano
		logger = build(serviceName, newConfig(opts...))
	})
}

func GetLogger() zerolog.Logger {
	return logger
}

func newConfig(opts ...LoggerOption) *LoggerConfig {
	l := &LoggerConfig{
		format: FormatJSON,
		level:  zerolog.InfoLevel,
		stdout: os.Stdout,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func build(serviceName string, l *LoggerConfig) zerolog.Logger {
	var out io.Writer = l.stdout
	if l.format == FormatConsole {
		out = zerolog.ConsoleWriter{Out: l.stdout, TimeFormat: time.RFC3339}
	}

	writers := []io.Writer{out}
	if l.fileName != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   l.fileName,
			MaxSize:    rotateMaxSizeMB,
			MaxBackups: rotateMaxBackups,
			MaxAge:     rotateMaxAgeDays,
			Compress:   true,
		})
	}

	return zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(l.level).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}
