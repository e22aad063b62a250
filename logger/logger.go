package logger

import (
	"log"
	"os"
	"sync"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
)

var (
	mu sync.RWMutex
	l  = newDefault()
)

func newDefault() logr.Logger {
	if !envBool(envLogEnable, true) {
		return logr.Discard()
	}

	verbosity := envInt(envLogLevel, 0)
	if envBool(envDebug, false) && verbosity < 1 {
		verbosity = 1
	}
	stdr.SetVerbosity(verbosity)

	return stdr.New(log.New(os.Stdout, "", log.LstdFlags|log.Lshortfile)).WithName("socketio")
}

// ReplaceLogger replaces the logger used by every package of the client.
// Loggers obtained earlier through GetLogger keep their old sink.
func ReplaceLogger(logger logr.Logger) {
	mu.Lock()
	defer mu.Unlock()

	l = logger
}

// GetLogger returns the shared logger with name appended.
func GetLogger(name string) logr.Logger {
	mu.RLock()
	defer mu.RUnlock()

	return l.WithName(name)
}
