package krotov

import (
	"fmt"
	"io"
)

// LogLevel selects how much progress output an optimization emits.
type LogLevel int

const (
	// LogNone disables all output.
	LogNone LogLevel = iota
	// LogInfo prints one block of messages per iteration.
	LogInfo
	// LogDebug additionally prints per-objective propagation progress.
	LogDebug
)

// Logger writes optimization progress. A nil *Logger is silent and safe to
// use. Out must tolerate concurrent writes when the optimization runs with a
// parallel mapper.
type Logger struct {
	Level LogLevel
	Out   io.Writer
}

func (l *Logger) enabled(level LogLevel) bool {
	return l != nil && l.Out != nil && l.Level >= level
}

// Infof logs iteration-level progress.
func (l *Logger) Infof(format string, a ...any) {
	if l.enabled(LogInfo) {
		fmt.Fprintf(l.Out, format+"\n", a...)
	}
}

// Debugf logs per-objective propagation progress.
func (l *Logger) Debugf(format string, a ...any) {
	if l.enabled(LogDebug) {
		fmt.Fprintf(l.Out, format+"\n", a...)
	}
}
