package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync/atomic"

	"github.com/jrick/logrotate/rotator"
	"github.com/pkg/errors"
)

const (
	normalLogSize = 512

	// entriesBuffer bounds the log lines waiting for the writing goroutine.
	entriesBuffer = 256

	defaultThresholdKB = 10 * 1000 // 10 MB logs by default.
	defaultMaxRolls    = 3
)

// Flags to modify Backend's behavior.
const (
	// LogFlagLongFile modifies the logger output to include full path and line number
	// of the logging callsite, e.g. /a/b/c/main.go:123.
	LogFlagLongFile uint32 = 1 << iota

	// LogFlagShortFile modifies the logger output to include filename and line number
	// of the logging callsite, e.g. main.go:123. takes precedence over LogFlagLongFile.
	LogFlagShortFile
)

// ErrBackendRunning is returned when configuring or starting a backend that
// already runs
var ErrBackendRunning = errors.New("the logger backend is already running")

// defaultFlags is read once from the LOGFLAGS environment variable, a comma
// separated list of "longfile" and "shortfile".
var defaultFlags = parseFlags(os.Getenv("LOGFLAGS"))

func parseFlags(value string) (flags uint32) {
	for _, flag := range strings.Split(value, ",") {
		switch flag {
		case "longfile":
			flags |= LogFlagLongFile
		case "shortfile":
			flags |= LogFlagShortFile
		}
	}
	return flags
}

// levelWriter receives the log lines at or above its level
type levelWriter struct {
	io.WriteCloser
	level Level
}

// Backend fans the lines of all its subsystem loggers out to its writers.
// A single goroutine does the writing, so lines are never interleaved.
type Backend struct {
	flag    uint32
	running uint32
	writers []levelWriter
	entries chan logEntry
	done    chan struct{}
}

// NewBackendWithFlags configures a Backend to use the specified flags rather
// than the ones read from LOGFLAGS.
func NewBackendWithFlags(flags uint32) *Backend {
	return &Backend{
		flag:    flags,
		entries: make(chan logEntry, entriesBuffer),
		done:    make(chan struct{}),
	}
}

// NewBackend creates a new logger backend.
func NewBackend() *Backend {
	return NewBackendWithFlags(defaultFlags)
}

// AddLogFile adds a rotated file receiving the lines at or above logLevel.
// The file and its directory are created if missing.
func (b *Backend) AddLogFile(logFile string, logLevel Level) error {
	return b.AddLogFileWithCustomRotator(logFile, logLevel, defaultThresholdKB, defaultMaxRolls)
}

// AddLogFileWithCustomRotator is AddLogFile with explicit rotation settings.
func (b *Backend) AddLogFileWithCustomRotator(logFile string, logLevel Level, thresholdKB int64, maxRolls int) error {
	if b.IsRunning() {
		return errors.WithStack(ErrBackendRunning)
	}
	logDir := filepath.Dir(logFile)
	if logDir != "." {
		err := os.MkdirAll(logDir, 0700)
		if err != nil {
			return errors.Wrapf(err, "failed to create log directory %s", logDir)
		}
	}
	r, err := rotator.New(logFile, thresholdKB, false, maxRolls)
	if err != nil {
		return errors.Wrapf(err, "failed to create file rotator for %s", logFile)
	}
	return b.addWriter(levelWriter{WriteCloser: r, level: logLevel})
}

// AddLogWriter adds a writer receiving the lines at or above logLevel.
func (b *Backend) AddLogWriter(logWriter io.WriteCloser, logLevel Level) error {
	return b.addWriter(levelWriter{WriteCloser: logWriter, level: logLevel})
}

func (b *Backend) addWriter(writer levelWriter) error {
	if b.IsRunning() {
		return errors.WithStack(ErrBackendRunning)
	}
	b.writers = append(b.writers, writer)
	return nil
}

// Run starts writing log lines. Loggers drop their lines until Run is
// called. It may only be called once.
func (b *Backend) Run() error {
	if !atomic.CompareAndSwapUint32(&b.running, 0, 1) {
		return errors.WithStack(ErrBackendRunning)
	}
	go b.writeEntries()
	return nil
}

func (b *Backend) writeEntries() {
	defer close(b.done)
	defer func() {
		if err := recover(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Fatal error in logger.Backend goroutine: %+v\n", err)
			_, _ = fmt.Fprintf(os.Stderr, "Goroutine stacktrace: %s\n", debug.Stack())
		}
	}()

	for entry := range b.entries {
		for _, writer := range b.writers {
			if entry.level >= writer.level {
				_, _ = writer.Write(entry.log)
			}
		}
	}
}

// IsRunning returns true if backend.Run() has been called and the backend
// was not closed since.
func (b *Backend) IsRunning() bool {
	return atomic.LoadUint32(&b.running) != 0
}

// Close flushes the pending lines and closes every writer.
func (b *Backend) Close() {
	if !atomic.CompareAndSwapUint32(&b.running, 1, 0) {
		return
	}
	close(b.entries)
	<-b.done
	for _, writer := range b.writers {
		_ = writer.Close()
	}
}

// Logger returns a new logger for a particular subsystem that writes to the
// Backend b. A tag describes the subsystem and is included in all log
// messages. The logger uses the info verbosity level by default.
func (b *Backend) Logger(subsystemTag string) *Logger {
	return &Logger{lvl: LevelInfo, tag: subsystemTag, b: b}
}
