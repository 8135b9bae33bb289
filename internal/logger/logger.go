// Package logger performs the process-wide zerolog setup. Init is meant to be
// called once before any pipeline call; later calls are ignored.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options selects level, output format and destination.
type Options struct {
	Level  string    // trace, debug, info, warn, error
	Format string    // "console" or "json"
	Output io.Writer // defaults to os.Stderr
}

var (
	once sync.Once
	mu   sync.RWMutex
	opts Options
)

// Init installs the global logger. Only the first call has any effect; call
// it before starting goroutines that log.
func Init(o Options) {
	once.Do(func() {
		apply(o)
	})
}

// SetOutput redirects the global logger, keeping level and format. It
// replaces log.Logger without synchronizing with goroutines that are logging,
// so it is meant for tests and must not be called while requests are served.
func SetOutput(w io.Writer) {
	mu.RLock()
	o := opts
	mu.RUnlock()

	o.Output = w
	apply(o)
}

// L returns the global logger.
func L() *zerolog.Logger {
	return &log.Logger
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(name string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

func apply(o Options) {
	mu.Lock()
	defer mu.Unlock()

	if o.Output == nil {
		o.Output = os.Stderr
	}
	opts = o

	w := o.Output
	if o.Format == "console" {
		w = zerolog.ConsoleWriter{Out: o.Output, TimeFormat: time.Kitchen}
	}

	zerolog.SetGlobalLevel(ParseLevel(o.Level))
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}
