package glint

import "fmt"

// ProtocolError reports misuse of the runtime API: firing an untyped event,
// mutating a foreign component, double-registering an id. These are
// programmer errors and are raised as panics immediately, before they can
// corrupt the update log.
type ProtocolError struct {
	Op     string
	Reason string
}

func (e *ProtocolError) Error() string {
	return "glint: " + e.Op + ": " + e.Reason
}

// protocolViolation panics with a ProtocolError.
func protocolViolation(op, format string, args ...any) {
	panic(&ProtocolError{Op: op, Reason: fmt.Sprintf(format, args...)})
}

// debugChecks promotes resolution misses (a record naming an id with no
// resolvable component, or a record parent with no adapter) from logged
// skips to panics. Off by default.
var debugChecks bool

// SetDebugChecks toggles assertion behavior for internal consistency
// failures. Enable in tests and debug builds.
func SetDebugChecks(on bool) { debugChecks = on }

// resolutionMiss handles an internal inconsistency: panic under debug
// checks, otherwise log and let the caller skip.
func resolutionMiss(op, format string, args ...any) {
	if debugChecks {
		protocolViolation(op, format, args...)
	}
	logger.Warn("resolution miss", "op", op, "detail", fmt.Sprintf(format, args...))
}
