// Package sqlog is the logging surface every other package logs
// through: a thin wrapper around logrus with an atomically-gated level,
// so checking whether a statement's debug trace should be rendered
// never takes a lock. Grounded on the teacher's ad-hoc
// "\x1b[33m[name]\x1b[0m query args duration" debug line in
// middleware.go's DebugMiddleware, replacing its raw ANSI codes and
// stdlib *log.Logger with logrus + fatih/color per the dependency
// survey.
package sqlog

import (
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// Level mirrors logrus levels but is stored in an atomic.Int32 so
// Enabled can be checked on every statement without synchronisation
// overhead.
type Level int32

const (
	LevelSilent Level = iota
	LevelError
	LevelInfo
	LevelDebug
)

var current atomic.Int32

func init() {
	current.Store(int32(LevelInfo))
}

// SetLevel changes the process-wide log level.
func SetLevel(l Level) { current.Store(int32(l)) }

// Enabled reports whether l would currently be logged.
func Enabled(l Level) bool { return Level(current.Load()) >= l }

var base = logrus.New()

func init() {
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	// The atomic gate above decides what is emitted; logrus passes it on.
	base.SetLevel(logrus.DebugLevel)
}

var (
	nameColor = color.New(color.FgYellow)
	sqlColor  = color.New(color.FgGreen)
	argsColor = color.New(color.FgWhite)
	timeColor = color.New(color.FgRed)
)

// Statement renders one executed-statement trace line, matching the
// teacher's field order (name, query, args, elapsed) but through
// logrus/fatih-color instead of raw ANSI + stdlib log.
func Statement(name, query string, args []any, elapsed time.Duration) {
	if !Enabled(LevelDebug) {
		return
	}
	base.Debugf("%s %s %s %s",
		nameColor.Sprintf("[%s]", name),
		sqlColor.Sprint(query),
		argsColor.Sprintf("%v", args),
		timeColor.Sprintf("%v", elapsed),
	)
}

// Errorf logs at error level when the gate allows it.
func Errorf(format string, args ...any) {
	if !Enabled(LevelError) {
		return
	}
	base.Errorf(format, args...)
}

// Infof logs at info level when the gate allows it.
func Infof(format string, args ...any) {
	if !Enabled(LevelInfo) {
		return
	}
	base.Infof(format, args...)
}
