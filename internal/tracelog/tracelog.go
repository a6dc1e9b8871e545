// Package tracelog wraps zap with the named, per-concern child loggers
// that this lowering pipeline's phases emit through. It stands in for
// the source's debuginfo/active_prefixes mechanism: instead of a
// module-global prefix list, each phase gets its own named *zap.Logger
// obtained once and threaded through explicitly.
package tracelog

import "go.uber.org/zap"

// Logger is a thin facade over *zap.Logger exposing one named child
// per compiler phase, so call sites never construct their own "with"
// field set for the phase tag.
type Logger struct {
	base *zap.Logger
}

// New builds a Logger backed by a production config when debug is
// false, or a development config (human-readable, debug-level) when
// debug is true — mirroring the CLI's -d/--debug flag.
func New(debug bool) (*Logger, error) {
	var (
		zl  *zap.Logger
		err error
	)
	if debug {
		zl, err = zap.NewDevelopment()
	} else {
		zl, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return &Logger{base: zl}, nil
}

// Noop returns a Logger that discards everything, used where no
// *tracelog.Logger was supplied (e.g. unit tests, library callers that
// don't care about diagnostics).
func Noop() *Logger {
	return &Logger{base: zap.NewNop()}
}

func (l *Logger) phase(name string) *zap.Logger {
	return l.base.Named(name)
}

// Lambda returns the logger for lambda activation bookkeeping: opening
// and closing entries on the active-lambdas stack, stack-offset
// broadcasts.
func (l *Logger) Lambda() *zap.Logger { return l.phase("lambda") }

// Sequence returns the logger for Sequence/MacroSequence expansion.
func (l *Logger) Sequence() *zap.Logger { return l.phase("sequence") }

// Conditional returns the logger for Conditional resolution and
// ConditionalLambda construction.
func (l *Logger) Conditional() *zap.Logger { return l.phase("conditional") }

// Eval returns the logger for the central evaluate() recursion.
func (l *Logger) Eval() *zap.Logger { return l.phase("eval") }

// Simulate returns the logger for the instruction-stream simulator.
func (l *Logger) Simulate() *zap.Logger { return l.phase("simulate") }

// Sync flushes any buffered log entries; callers defer this from main.
func (l *Logger) Sync() error {
	return l.base.Sync()
}
