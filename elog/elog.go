// Copyright 2026 The goefc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package elog provides the logging used by this module's commands and
// supporting infrastructure: a thin facade over llog with severity levels,
// V-style verbosity guards, and flag-settable configuration.  Library
// packages (esync, equeue) never log; only the worker pool and the command
// line tools do.
package elog

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cosmosnicolaou/llog"
)

type logger struct {
	log        *llog.Log
	mu         sync.Mutex // guards updates to the vars below.
	autoFlush  bool
	configured bool
}

var (
	// Log is the process-wide logger.
	Log *logger

	// Configured is returned when Configure is called a second time.
	Configured = errors.New("logger has already been configured")
)

const stackSkip = 1

func init() {
	Log = &logger{log: llog.NewLogger("goefc", stackSkip)}
}

// Level specifies a verbosity level for V logs.  It implements the
// flag.Value interface (and so pflag's) to support command line parsing.
type Level llog.Level

// Set is part of the flag.Value interface.
func (l *Level) Set(v string) error {
	return (*llog.Level)(l).Set(v)
}

// String is part of the flag.Value interface.
func (l *Level) String() string {
	return (*llog.Level)(l).String()
}

// Type is part of the pflag.Value interface.
func (l *Level) Type() string {
	return "Level"
}

// LoggingOpts configure the logger; see Configure.
type LoggingOpts interface {
	loggingOpt()
}

// AlsoLogToStderr writes logs to standard error as well as to files.
type AlsoLogToStderr bool

// LogToStderr writes logs to standard error instead of to files.
type LogToStderr bool

// LogDir writes log files to this directory instead of the default
// temporary directory.
type LogDir string

// AutoFlush flushes log output on every call.
type AutoFlush bool

func (AlsoLogToStderr) loggingOpt() {}

func (LogToStderr) loggingOpt() {}

func (LogDir) loggingOpt() {}

func (AutoFlush) loggingOpt() {}

func (Level) loggingOpt() {}

// Configure configures all future logging.  The Configured error is
// returned if Configure has already been called.
func (l *logger) Configure(opts ...LoggingOpts) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.configured {
		return Configured
	}
	for _, o := range opts {
		switch v := o.(type) {
		case AlsoLogToStderr:
			l.log.SetAlsoLogToStderr(bool(v))
		case LogToStderr:
			l.log.SetLogToStderr(bool(v))
		case LogDir:
			l.log.SetLogDir(string(v))
		case Level:
			l.log.SetV(llog.Level(v))
		case AutoFlush:
			l.autoFlush = bool(v)
		}
	}
	l.configured = true
	return nil
}

func (l *logger) maybeFlush() {
	if l.autoFlush {
		l.log.Flush()
	}
}

// Info logs to the INFO log.
// Arguments are handled in the manner of fmt.Print; a newline is appended if missing.
func (l *logger) Info(args ...interface{}) {
	l.log.Print(llog.InfoLog, args...)
	l.maybeFlush()
}

// Infof logs to the INFO log.
// Arguments are handled in the manner of fmt.Printf; a newline is appended if missing.
func (l *logger) Infof(format string, args ...interface{}) {
	l.log.Printf(llog.InfoLog, format, args...)
	l.maybeFlush()
}

// Error logs to the ERROR and INFO logs.
// Arguments are handled in the manner of fmt.Print; a newline is appended if missing.
func (l *logger) Error(args ...interface{}) {
	l.log.Print(llog.ErrorLog, args...)
	l.maybeFlush()
}

// Errorf logs to the ERROR and INFO logs.
// Arguments are handled in the manner of fmt.Printf; a newline is appended if missing.
func (l *logger) Errorf(format string, args ...interface{}) {
	l.log.Printf(llog.ErrorLog, format, args...)
	l.maybeFlush()
}

// Fatal logs to the FATAL, ERROR and INFO logs, then exits the process.
func (l *logger) Fatal(args ...interface{}) {
	l.log.Print(llog.FatalLog, args...)
}

// Fatalf logs to the FATAL, ERROR and INFO logs, then exits the process.
func (l *logger) Fatalf(format string, args ...interface{}) {
	l.log.Printf(llog.FatalLog, format, args...)
}

// Panicf is equivalent to Errorf followed by a call to panic.
func (l *logger) Panicf(format string, args ...interface{}) {
	l.Errorf(format, args...)
	panic(fmt.Sprintf(format, args...))
}

// V returns true if the configured verbosity level is at least its
// parameter.
func (l *logger) V(v Level) bool {
	return l.log.V(llog.Level(v))
}

// InfoLog is the subset of the logger that VI either forwards or discards.
type InfoLog interface {
	Info(args ...interface{})
	Infof(format string, args ...interface{})
}

type discardInfo struct{}

func (discardInfo) Info(args ...interface{}) {}

func (discardInfo) Infof(format string, args ...interface{}) {}

// VI is like V, except that it returns an InfoLog that either logs (if the
// level is enabled) or discards its arguments.  This allows for
// elog.Log.VI(2).Infof style usage.
func (l *logger) VI(v Level) InfoLog {
	if l.log.V(llog.Level(v)) {
		return l
	}
	return discardInfo{}
}

// FlushLog flushes all pending log I/O.
func (l *logger) FlushLog() {
	l.log.Flush()
}
