// Package vcslog is the shared log sink; the manifest loader's
// warnings are the only messages written to it. It writes to a rotating
// file when one is configured, and falls back to stderr otherwise.
package vcslog

import (
	"io"
	"log"
	"os"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu     sync.Mutex
	logger = log.New(os.Stderr, "vcspull: ", 0)
)

// Configure points the shared logger at a rotating file. Passing an
// empty path reverts to stderr.
func Configure(path string) {
	mu.Lock()
	defer mu.Unlock()

	var w io.Writer = os.Stderr
	if path != "" {
		w = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
	}
	logger = log.New(w, "vcspull: ", log.LstdFlags)
}

// Warnf logs a warning, e.g. the Loader's duplicate-workspace-key
// notice.
func Warnf(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	logger.Printf("WARN "+format, args...)
}

// Infof logs an informational message.
func Infof(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	logger.Printf("INFO "+format, args...)
}
