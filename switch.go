package taskrt

import goruntime "runtime"

// Context switch primitive.
//
// The source design calls for saving the current CPU context into a
// source slot and loading a destination context — raw register
// save/restore between two stacks. Go gives every goroutine its own
// growable stack already, so this package reproduces the same ordering
// guarantees with a blocking channel handoff instead of assembly:
//
//   - switching OUT of a task blocks its goroutine on a channel receive
//     (t.resume); this is the "save" — everything the task needs to
//     resume is implicit in its parked goroutine state.
//   - switching INTO a task sends on t.resume and then blocks the
//     worker goroutine on a receive (w.suspended) until the task
//     switches out again; this is the "load".
//
// Exactly one of {worker goroutine, task goroutine} is runnable at a
// time per worker, which is what spec.md's "tasks never run
// concurrently with themselves" and "a worker runs at most one task at
// a time" invariants require.

// trampoline is the goroutine body for a newly created task. It blocks
// until the scheduler first switches into it, runs the user entry
// function, then exits with value 0 if the function returns normally.
func (t *Task) trampoline() {
	<-t.resume
	t.fn(t, t.arg)
	t.doExit(0)
}

// switchInto resumes t on worker w: it sends the resume signal and
// blocks until t suspends again (by calling switchOut or doExit).
// Caller must not hold any runtime lock; switching never happens while
// a lock is held, per spec.md's "the scheduler never holds any lock
// during context_switch".
func (w *worker) switchInto(t *Task) {
	t.activeWorker = w
	w.current = t
	t.resume <- struct{}{}
	<-w.suspended
	w.current = nil
	t.activeWorker = nil
}

// switchOut suspends the calling task's goroutine until it is next
// switched into. It must be called from within the task's own
// goroutine, and only after the task has been linked into whichever
// list (sleep list, pollset waiters, rendezvous wait-set) will make it
// ready again later — task_ready(t) is what makes switchOut return.
func (t *Task) switchOut() {
	w := t.activeWorker
	if w == nil {
		fatal(ErrContextSwitch, "switchOut called with no active worker")
	}
	w.suspended <- struct{}{}
	<-t.resume
}

// doExit records v as the task's (and, last-writer-wins, the runtime's)
// exit value, marks the task exiting, and switches out one final time
// without ever resuming — the goroutine returns immediately afterward
// and is not scheduled again.
func (t *Task) doExit(v int) {
	t.exitValue = v
	t.exiting = true
	t.SetState("exiting")

	rt := t.rt
	rt.schedMu.Lock()
	rt.exitValue = v
	rt.schedMu.Unlock()

	rt.metrics.incExited()
	logTask(rt.logger, LevelDebug, t, "task exiting", F("exit_value", v))

	w := t.activeWorker
	if w == nil {
		fatal(ErrContextSwitch, "doExit called with no active worker")
	}
	w.suspended <- struct{}{}
}

// Exit terminates the calling task; v becomes the runtime's exit value
// (last writer wins across concurrently exiting tasks). Exit never
// returns: it unwinds the calling goroutine's defers via runtime.Goexit
// after handing control back to the scheduler, so code after Exit never
// runs.
func (t *Task) Exit(v int) {
	t.doExit(v)
	goruntime.Goexit()
}
