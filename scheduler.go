package taskrt

import (
	"sync"
	"time"
)

// worker is one OS thread running the scheduler loop. It is pinned to
// its OS thread for its whole lifetime via runtime.LockOSThread, so
// that the pool's curthr count genuinely reflects live OS threads, not
// just goroutines.
type worker struct {
	rt        *Runtime
	current   *Task
	suspended chan struct{}
}

func newWorker(rt *Runtime) *worker {
	return &worker{rt: rt, suspended: make(chan struct{})}
}

// schedulerLoopStallTimeout bounds how long a stalled worker waits on
// the run-queue condition variable before re-checking pool-size and
// deadlock invariants, per spec.md's 2-second figure.
const schedulerLoopStallTimeout = 2 * time.Second

// schedulerLoop is the per-worker scheduling loop described in
// spec.md §4.3: dequeue a ready task, switch into it, handle its
// post-state, and adjust the worker pool to its configured size.
// Returns when this worker should terminate (either the runtime has
// drained, or the pool is shrinking and this worker drew the short
// straw).
func schedulerLoop(w *worker) {
	rt := w.rt
	for {
		rt.schedMu.RLock()
		drained := rt.nalltaskLocked() == 0
		rt.schedMu.RUnlock()
		if drained {
			rt.poolMu.Lock()
			rt.curthr--
			rt.poolMu.Unlock()
			return
		}

		t := rt.dequeueReadyOrStall(w)
		if t == nil {
			// Either a stall wait elapsed (retry), or this worker was
			// told to retire while stalled.
			if rt.shrinkIfNeeded(w) {
				return
			}
			continue
		}

		runOneTask(w, t)

		if rt.shrinkIfNeeded(w) {
			return
		}
		rt.growIfNeeded(w)
	}
}

// runOneTask performs one scheduler/task switch and handles the task's
// post-switch state, per spec.md §4.3 steps 3-5.
func runOneTask(w *worker, t *Task) {
	rt := w.rt

	t.ready = false
	t.readyOut = false

	rt.schedMu.Lock()
	rt.switchCount++
	rt.schedMu.Unlock()
	rt.metrics.incSwitch()

	w.switchInto(t)

	switch {
	case t.exiting:
		rt.schedMu.Lock()
		rt.unregisterTask(t)
		rt.schedMu.Unlock()
	case t.readyOut:
		rt.ready(t)
	default:
		// The task linked itself into the sleep list, pollset, or a
		// rendezvous wait-set before switching out; nothing to do here.
	}
}

// dequeueReadyOrStall pops the head of the run queue. If the queue is
// empty it marks this worker stalled, checks the all-workers-stalled
// deadlock invariant, and waits on the run-queue condition variable
// with a timeout, per spec.md §4.3 step 2. Returns nil if no task was
// dequeued (caller should loop back around).
func (rt *Runtime) dequeueReadyOrStall(w *worker) *Task {
	rt.runqMu.Lock()
	defer rt.runqMu.Unlock()

	t := rt.runq.popFront()
	if t != nil {
		return t
	}

	rt.nstalled++
	defer func() { rt.nstalled-- }()

	rt.poolMu.Lock()
	curthr := rt.curthr
	rt.poolMu.Unlock()

	if rt.nstalled >= curthr && curthr > 0 {
		rt.schedMu.RLock()
		anyTask := rt.nalltaskLocked() > 0
		rt.schedMu.RUnlock()
		if anyTask {
			fatal(ErrDeadlock, "all live workers stalled with tasks remaining")
		}
	}

	if condWaitTimeout(rt.runqCond, &rt.runqMu, schedulerLoopStallTimeout) {
		rt.metrics.incTimedOut()
	}
	return nil
}

// condWaitTimeout waits on c, which must guard l (already held by the
// caller), until either c is signaled or timeout elapses. Reports
// whether the timeout fired (as opposed to a genuine signal/broadcast).
func condWaitTimeout(c *sync.Cond, l sync.Locker, timeout time.Duration) bool {
	fired := false
	timer := time.AfterFunc(timeout, func() {
		l.Lock()
		fired = true
		c.Broadcast()
		l.Unlock()
	})
	defer timer.Stop()
	c.Wait()
	return fired
}
