package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger represents a structured logger
type Logger struct {
	logger zerolog.Logger
}

// Fields represents log fields
type Fields map[string]interface{}

var (
	// Default is the default logger instance
	Default *Logger

	initOnce sync.Once
)

// Init initializes the logger. Output always goes to stderr: stdout is
// reserved for the single result object.
func Init() {
	initOnce.Do(func() {
		if Default == nil {
			InitWithWriter(os.Stderr)
		}
	})
}

// InitWithWriter initializes the logger with a custom destination
func InitWithWriter(w io.Writer) {
	level := getLogLevel()

	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(level)

	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}

	Default = &Logger{logger: zerolog.New(output).With().Timestamp().Logger()}

	Default.Debug().
		Str("level", level.String()).
		Msg("Logger initialized")
}

// getLogLevel returns the log level from environment variable
func getLogLevel() zerolog.Level {
	levelStr := os.Getenv("LOG_LEVEL")
	if levelStr == "" {
		if os.Getenv("SCRAPER_ENVIRONMENT") == "production" {
			return zerolog.InfoLevel
		}
		return zerolog.DebugLevel
	}

	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// WithFields creates a new logger with fields
func (l *Logger) WithFields(fields Fields) *Logger {
	newLogger := l.logger.With()
	for k, v := range fields {
		newLogger = newLogger.Interface(k, v)
	}
	return &Logger{logger: newLogger.Logger()}
}

// WithField creates a new logger with a single field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{logger: l.logger.With().Interface(key, value).Logger()}
}

// Debug returns a debug event
func (l *Logger) Debug() *zerolog.Event {
	return l.logger.Debug()
}

// Info returns an info event
func (l *Logger) Info() *zerolog.Event {
	return l.logger.Info()
}

// Warn returns a warn event
func (l *Logger) Warn() *zerolog.Event {
	return l.logger.Warn()
}

// Error returns an error event
func (l *Logger) Error() *zerolog.Event {
	return l.logger.Error()
}

func component(name string) *Logger {
	Init()
	return Default.WithField("component", name)
}

// ForFetcher creates a logger for a page fetcher
func ForFetcher(mode string) *Logger {
	return component("fetcher").WithField("mode", mode)
}

// ForScraper creates a logger for the extraction pipeline
func ForScraper() *Logger {
	return component("scraper")
}

// ForServer creates a logger for the HTTP wrapper
func ForServer() *Logger {
	return component("server")
}

// ForWorker creates a logger for the job worker
func ForWorker() *Logger {
	return component("worker")
}

// ForPublisher creates a logger for the publisher
func ForPublisher() *Logger {
	return component("publisher")
}

// ForCache creates a logger for the cache
func ForCache() *Logger {
	return component("cache")
}
