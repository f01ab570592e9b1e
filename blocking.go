package taskrt

// Blocking-section admission control, per spec.md §4.9: a task that is
// about to call out to code that might block the underlying OS thread
// (cgo, a blocking syscall not mediated by the poller, etc.) declares
// that intent with Blocking, and releases it with Nonblocking. Too
// large a fraction of worker threads blocking at once would leave the
// rest of the runtime unresponsive, so admission is gated by a
// dedicated rendezvous keyed on the pool lock: a task that can't be
// admitted sleeps on it until Nonblocking wakes it.

// Blocking declares that the calling task's goroutine is about to
// enter code that may block its OS thread for an unbounded time. It
// must be paired with a later call to Nonblocking from the same task.
// Calling Blocking twice without an intervening Nonblocking is a fatal
// programmer error (ErrDoubleBlocking).
func (t *Task) Blocking() {
	if t.blocking {
		fatal(ErrDoubleBlocking, "Blocking called while already blocking")
	}

	rt := t.rt
	rt.poolMu.Lock()
	for !rt.admitBlockingLocked() {
		rt.admission.Sleep(t, &rt.poolMu)
	}
	rt.nblocking++
	rt.poolMu.Unlock()

	t.blocking = true
}

// admitBlockingLocked reports whether one more blocking thread would
// still satisfy (nblocking+1)*100/curthr <= threshold. Caller must hold
// poolMu.
//
// curthr <= 1 is a special case: the threshold formula can never admit
// any blocking section at all in a one-thread pool (100% always exceeds
// any threshold below 100), yet the whole point of the bound is to keep
// other worker threads responsive while one is tied up — moot when
// there are no other threads to protect. Admit unconditionally there
// rather than deadlock the poller's own bracketed poll(2) call.
func (rt *Runtime) admitBlockingLocked() bool {
	if rt.curthr <= 1 {
		return true
	}
	thresh := rt.cfg.blockedThreshPct
	return (rt.nblocking+1)*100/rt.curthr <= thresh
}

// Nonblocking ends a blocking section started by Blocking, and wakes
// one task (if any) waiting for admission. Calling it without a
// matching Blocking is a fatal programmer error (ErrNotBlocking).
func (t *Task) Nonblocking() {
	if !t.blocking {
		fatal(ErrNotBlocking, "Nonblocking called without a matching Blocking")
	}
	t.blocking = false

	rt := t.rt
	rt.poolMu.Lock()
	rt.nblocking--
	rt.poolMu.Unlock()

	rt.admission.Wake()
}
