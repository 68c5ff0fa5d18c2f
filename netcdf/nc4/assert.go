package nc4

import (
	"github.com/batchatco/go-thrower"
)

// Various kinds of assertions

// Asserts with given error and message
func assertError(condition bool, err error, msg string) {
	if condition {
		return
	}
	failError(err, msg)
}

// Throws ErrInternal
func assert(condition bool, msg string) {
	assertError(condition, ErrInternal, msg)
}

// Warns if condition isn't met
func warnAssert(condition bool, msg string) {
	if condition {
		return
	}
	logger.Warn(msg)
}

// Throws with specified error and message
func failError(err error, msg string) {
	logger.Error(msg)
	thrower.Throw(err)
	panic("never gets here")
}

// check throws a BackendError if err is set.
func check(op string, err error) {
	if err != nil {
		logger.Error(op, "failed:", err)
		thrower.Throw(&BackendError{Op: op, Err: err})
	}
}

// closeOnExit is deferred to release a transient handle. Close failures
// are logged; the container close reports any handle left open.
func closeOnExit(op string, c interface{ Close() error }) {
	if err := c.Close(); err != nil {
		logger.Error(op, "close failed:", err)
	}
}
