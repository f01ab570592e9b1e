// Package taskrt implements a user-space cooperative task runtime with
// integrated non-blocking I/O.
//
// The runtime multiplexes many lightweight Tasks, each with its own stack,
// onto a bounded pool of OS threads (Workers). Tasks switch cooperatively
// at well-defined suspension points: Yield, Exit, Delay, FDWait, and
// Rendez.Sleep. A single Poller task owns the pollset and a self-pipe, and
// integrates a deadline-sorted sleep list, so that blocking syscalls never
// stall a worker thread for longer than the runtime chooses to let them.
//
// # Context switching
//
// Go does not expose raw CPU-context save/restore outside of cgo or
// hand-written per-architecture assembly. Instead, every Task owns a
// goroutine (whose growable stack is the Task's stack) and "context
// switch" is a blocking handoff over a pair of channels: switching out of
// a task parks its goroutine on a channel receive, switching into a task
// unparks it. Exactly one goroutine per Worker is ever unblocked at a
// time, which is sufficient to reproduce every ordering guarantee of a
// true stackful-coroutine scheduler.
//
// # Scope
//
// This package is the scheduler/poller/task core only. Socket dialing,
// name resolution, and command-line surfaces are the caller's concern.
package taskrt
