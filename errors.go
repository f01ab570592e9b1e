package taskrt

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions the runtime treats as fatal. These are
// never returned; they are wrapped in a *FatalError and passed to panic,
// matching the source design's "the runtime does not attempt recovery"
// policy for programmer errors.
var (
	// ErrPollsetFull is raised when the pollset would grow past its
	// configured capacity.
	ErrPollsetFull = errors.New("taskrt: pollset at capacity")
	// ErrDoubleBlocking is raised when Task.Blocking is called on a task
	// that is already inside a blocking section.
	ErrDoubleBlocking = errors.New("taskrt: task is already in a blocking section")
	// ErrNotBlocking is raised when Task.Nonblocking is called on a task
	// that never entered a blocking section.
	ErrNotBlocking = errors.New("taskrt: task is not in a blocking section")
	// ErrDeadlock is raised when every live worker is stalled and at
	// least one task still exists anywhere in the runtime.
	ErrDeadlock = errors.New("taskrt: all workers stalled with live tasks remaining")
	// ErrSelfPipe is raised when the self-pipe used for poller/registrant
	// handover cannot be created, and when the poller's poll(2) call
	// fails with an error other than EINTR.
	ErrSelfPipe = errors.New("taskrt: failed to create self-pipe")
	// ErrContextSwitch is raised when the channel-based context-switch
	// primitive observes a protocol violation (a task switching out or
	// exiting with no active worker).
	ErrContextSwitch = errors.New("taskrt: context switch protocol violation")
	// ErrListCorrupt is raised when an intrusive list operation detects
	// a task linked into more than one list at once.
	ErrListCorrupt = errors.New("taskrt: task present in more than one list")
)

// User-surfaced (non-fatal) errors, returned as ordinary values.
var (
	// ErrPoolClosed reports that the runtime is draining. No function in
	// this package returns it.
	ErrPoolClosed = errors.New("taskrt: runtime is draining")
	// ErrFDOutOfRange is returned by fd registration when fd is negative.
	ErrFDOutOfRange = errors.New("taskrt: fd out of range")
)

// FatalError wraps a programmer-error sentinel with diagnostic context.
// The runtime panics with a *FatalError rather than attempting recovery;
// a caller embedding the runtime in a larger process may recover at a
// boundary it controls, but the core itself never does.
type FatalError struct {
	Cause   error
	Message string
}

// Error implements the error interface.
func (e *FatalError) Error() string {
	if e.Message == "" {
		return e.Cause.Error()
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

// Unwrap returns the wrapped sentinel, for errors.Is/errors.As.
func (e *FatalError) Unwrap() error {
	return e.Cause
}

// fatal panics with a *FatalError wrapping cause, annotated with msg.
func fatal(cause error, msg string) {
	panic(&FatalError{Cause: cause, Message: msg})
}
