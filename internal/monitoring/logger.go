package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// Tracef receives per-event detail from the filter (seeds, extensions,
// veto decisions). It is muted until SetTracer installs a sink.
var Tracef func(format string, v ...interface{}) = noop

var tracing bool

func noop(string, ...interface{}) {}

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = noop
		return
	}
	Logf = f
}

// SetTracer installs the per-event trace sink. Passing nil mutes tracing.
func SetTracer(f func(format string, v ...interface{})) {
	if f == nil {
		Tracef = noop
		tracing = false
		return
	}
	Tracef = f
	tracing = true
}

// TraceEnabled reports whether a trace sink is installed. Hot paths check
// it before building trace arguments.
func TraceEnabled() bool {
	return tracing
}
