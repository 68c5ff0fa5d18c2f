package internal

// Leveled logging shared by the metadata layer and its storage backends.

import (
	"fmt"
	"io"
	"log"
	"os"
	"runtime/debug"
)

// Prefix starts every line the module logs.
const Prefix = "nc4meta"

type Logger struct {
	logLevel LogLevel
	logger   *log.Logger
}

type LogLevel int

const (
	// always printed
	LevelFatal LogLevel = iota // the program stops
	LevelError                 // an operation is about to fail

	// may be disabled
	LevelWarn // something was skipped or repaired while reading
	LevelInfo // traversal traces

	LogLevelDefault = LevelWarn

	LevelMin = LevelFatal
	LevelMax = LevelInfo
)

var levelToPrefix = []string{
	"FATAL ",
	"ERROR ",
	"WARN ",
	"INFO ",
}

// NewLogger returns a logger writing to stderr whose lines are tagged
// with the module prefix and component, as in "nc4meta/memstore: ".
func NewLogger(component string) *Logger {
	prefix := Prefix + ": "
	if component != "" {
		prefix = Prefix + "/" + component + ": "
	}
	logger := log.New(os.Stderr, prefix, log.LstdFlags)
	return &Logger{logLevel: LogLevelDefault, logger: logger}
}

// SetOutput redirects the logger, mostly so tests can read what it wrote.
func (l *Logger) SetOutput(w io.Writer) {
	l.logger.SetOutput(w)
}

func (l *Logger) LogLevel() LogLevel {
	return l.logLevel
}

// SetLogLevel returns the old level
func (l *Logger) SetLogLevel(level LogLevel) LogLevel {
	if level < LevelMin || level > LevelMax {
		panic("trying to set invalid log level")
	}
	old := l.logLevel
	l.logLevel = level
	return old
}

// LevelOf maps a verbosity count to a level: 0 is fatal only and anything
// past 3 is info.
func LevelOf(n int) LogLevel {
	switch {
	case n <= int(LevelMin):
		return LevelMin
	case n >= int(LevelMax):
		return LevelMax
	}
	return LogLevel(n)
}

func (l *Logger) output(level LogLevel, s string) {
	if level > l.logLevel {
		return
	}
	l.logger.Output(3, levelToPrefix[level]+s)
}

func (l *Logger) Info(v ...any)                 { l.output(LevelInfo, fmt.Sprintln(v...)) }
func (l *Logger) Infof(format string, v ...any) { l.output(LevelInfo, fmt.Sprintf(format, v...)) }

func (l *Logger) Warn(v ...any)                 { l.output(LevelWarn, fmt.Sprintln(v...)) }
func (l *Logger) Warnf(format string, v ...any) { l.output(LevelWarn, fmt.Sprintf(format, v...)) }

func (l *Logger) Error(v ...any)                 { l.output(LevelError, fmt.Sprintln(v...)) }
func (l *Logger) Errorf(format string, v ...any) { l.output(LevelError, fmt.Sprintf(format, v...)) }

func (l *Logger) Fatal(v ...any) {
	l.logger.Print(string(debug.Stack()))
	l.output(LevelFatal, fmt.Sprintln(v...))
	os.Exit(1)
}

func (l *Logger) Fatalf(format string, v ...any) {
	l.logger.Print(string(debug.Stack()))
	l.output(LevelFatal, fmt.Sprintf(format, v...))
	os.Exit(1)
}
