package panics

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/kaspanet/ledgersim/infrastructure/logger"
)

const exitHandlerTimeout = 5 * time.Second

// HandlePanic recovers panics, logs them with both the recovering and the
// spawning stack traces and exits the process.
func HandlePanic(log *logger.Logger, spawnStackTrace []byte) {
	err := recover()
	if err == nil {
		return
	}
	exit(log, fmt.Sprintf("Fatal error: %+v", err), debug.Stack(), spawnStackTrace)
}

// GoroutineWrapperFunc returns a function that starts goroutines whose
// panics are written to log before the process exits.
func GoroutineWrapperFunc(log *logger.Logger) func(func()) {
	return func(f func()) {
		spawnStackTrace := debug.Stack()
		go func() {
			defer HandlePanic(log, spawnStackTrace)
			f()
		}()
	}
}

// Exit logs reason at critical level, flushes the log backend and exits
// with status 1.
func Exit(log *logger.Logger, reason string) {
	exit(log, reason, nil, nil)
}

func exit(log *logger.Logger, reason string, stackTrace []byte, spawnStackTrace []byte) {
	flushed := make(chan struct{})
	go func() {
		log.Criticalf("Exiting: %s", reason)
		if spawnStackTrace != nil {
			log.Criticalf("Spawned at: %s", spawnStackTrace)
		}
		if stackTrace != nil {
			log.Criticalf("Stack trace: %s", stackTrace)
		}
		log.Backend().Close()
		close(flushed)
	}()

	select {
	case <-time.After(exitHandlerTimeout):
		fmt.Fprintln(os.Stderr, "Couldn't flush the log before exiting.")
	case <-flushed:
	}
	os.Exit(1)
}
