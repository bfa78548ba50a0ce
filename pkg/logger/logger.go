// Package logger provides levelled logging for sobel.
//
// Every message goes to stderr; stdout carries nothing but command results
// such as the confirmation line printed after each processed image. With
// --debug the same lines are appended to ~/.sobel/logs/sobel-YYYY-MM-DD.log.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"sobel/pkg/terminal"
)

// Level represents log severity
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelVerbose
	LevelDebug
)

var levelStyle = [...]struct {
	name  string
	color string
}{
	LevelError:   {"ERROR", terminal.Red},
	LevelWarn:    {"WARN", terminal.Yellow},
	LevelInfo:    {"INFO", terminal.Green},
	LevelVerbose: {"VERBOSE", terminal.Cyan},
	LevelDebug:   {"DEBUG", terminal.Purple},
}

func (l Level) String() string {
	if l < LevelError || l > LevelDebug {
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
	return levelStyle[l].name
}

// Logger writes levelled lines to stderr and, in debug mode, a log file.
type Logger struct {
	mu     sync.Mutex
	level  Level
	output io.Writer
	file   *os.File
	colors bool
	timers map[string]time.Time
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// levelFor maps the global --verbose/--debug flags to a level.
func levelFor(verbose, debug bool) Level {
	switch {
	case debug:
		return LevelDebug
	case verbose:
		return LevelVerbose
	default:
		return LevelInfo
	}
}

// Initialize sets up the global logger. Only the first call has an effect.
func Initialize(verbose, debug bool) {
	once.Do(func() {
		defaultLogger = &Logger{
			level:  levelFor(verbose, debug),
			output: os.Stderr,
			colors: terminal.Attached(os.Stderr) && os.Getenv("NO_COLOR") == "",
			timers: make(map[string]time.Time),
		}
		if debug {
			if f, err := openDebugLog(time.Now()); err == nil {
				defaultLogger.file = f
				Debugf("Logging to %s", f.Name())
			}
		}
	})
}

// openDebugLog opens today's log file under ~/.sobel/logs. The directory
// is created 0700, which is what sobel doctor expects of ~/.sobel.
func openDebugLog(day time.Time) (*os.File, error) {
	home := os.Getenv("HOME")
	if home == "" {
		var err error
		if home, err = os.UserHomeDir(); err != nil {
			return nil, err
		}
	}
	dir := filepath.Join(home, ".sobel", "logs")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	name := filepath.Join(dir, "sobel-"+day.Format("2006-01-02")+".log")
	return os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
}

// Close closes the debug log file, if any.
func Close() {
	if defaultLogger == nil {
		return
	}
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	if defaultLogger.file != nil {
		_ = defaultLogger.file.Close()
		defaultLogger.file = nil
	}
}

// Enabled reports whether messages at level would be written.
func Enabled(level Level) bool {
	return defaultLogger != nil && level <= defaultLogger.level
}

func logAt(level Level, msg string) {
	if Enabled(level) {
		defaultLogger.write(level, msg)
	}
}

// Info logs at info level (always shown)
func Info(msg string)                          { logAt(LevelInfo, msg) }
func Infof(format string, args ...interface{}) { logAt(LevelInfo, fmt.Sprintf(format, args...)) }

// Verbose logs at verbose level (shown with -v)
func Verbose(msg string)                          { logAt(LevelVerbose, msg) }
func Verbosef(format string, args ...interface{}) { logAt(LevelVerbose, fmt.Sprintf(format, args...)) }

// Debug logs at debug level with the caller's file and line.
func Debug(msg string)                          { logAt(LevelDebug, msg) }
func Debugf(format string, args ...interface{}) { logAt(LevelDebug, fmt.Sprintf(format, args...)) }

func Warn(msg string)                          { logAt(LevelWarn, msg) }
func Warnf(format string, args ...interface{}) { logAt(LevelWarn, fmt.Sprintf(format, args...)) }

func Error(msg string)                          { logAt(LevelError, msg) }
func Errorf(format string, args ...interface{}) { logAt(LevelError, fmt.Sprintf(format, args...)) }

// StartTimer records the start of an operation (verbose mode only).
func StartTimer(operation string) {
	if !Enabled(LevelVerbose) {
		return
	}
	defaultLogger.mu.Lock()
	defaultLogger.timers[operation] = time.Now()
	defaultLogger.mu.Unlock()
	Verbosef("Starting: %s", operation)
}

// EndTimer logs how long an operation took since StartTimer.
func EndTimer(operation string) {
	if !Enabled(LevelVerbose) {
		return
	}
	defaultLogger.mu.Lock()
	start, ok := defaultLogger.timers[operation]
	delete(defaultLogger.timers, operation)
	defaultLogger.mu.Unlock()
	if ok {
		Verbosef("Completed %s in %v", operation, time.Since(start).Round(time.Millisecond))
	}
}

func (l *Logger) write(level Level, msg string) {
	caller := ""
	if level == LevelDebug {
		// skip write, logAt and Debug/Debugf
		if _, file, line, ok := runtime.Caller(3); ok {
			caller = fmt.Sprintf("%s:%d", filepath.Base(file), line)
		}
	}
	ts := time.Now()
	line := l.format(ts, level, caller, msg)

	l.mu.Lock()
	defer l.mu.Unlock()
	io.WriteString(l.output, line)
	if l.file != nil {
		// the log file never gets colour codes
		io.WriteString(l.file, plain(ts, level, caller, msg))
	}
}

func (l *Logger) format(ts time.Time, level Level, caller, msg string) string {
	if !l.colors {
		return plain(ts, level, caller, msg)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s%s%s", ts.Format("15:04:05"), levelStyle[level].color, level, terminal.Reset)
	if caller != "" {
		fmt.Fprintf(&sb, " [%s]", caller)
	}
	fmt.Fprintf(&sb, ": %s\n", strings.TrimRight(msg, "\n"))
	return sb.String()
}

func plain(ts time.Time, level Level, caller, msg string) string {
	if caller != "" {
		return fmt.Sprintf("[%s] %s [%s]: %s\n", ts.Format("15:04:05"), level, caller, strings.TrimRight(msg, "\n"))
	}
	return fmt.Sprintf("[%s] %s: %s\n", ts.Format("15:04:05"), level, strings.TrimRight(msg, "\n"))
}
