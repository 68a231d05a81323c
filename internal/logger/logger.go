package logger

import (
	"sync"
)

// Log levels used across the application.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// Options controls where and how verbosely the service logs.
type Options struct {
	Level      string // debug | info | warn | error
	File       string // optional rotating log file, in addition to stdout
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var (
	// globalLogger holds the singleton logger instance.
	globalLogger *Logger
	once         sync.Once
)

// Get returns a singleton logger configured with the provided options.
// The first call initializes the logger; subsequent calls ignore opts
// and return the already initialized instance.
func Get(opts Options) *Logger {
	once.Do(func() {
		globalLogger = newZapLogger(opts)
	})
	return globalLogger
}
