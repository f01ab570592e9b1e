package taskrt

import goruntime "runtime"

// shrinkIfNeeded decrements curthr and returns true (telling the
// caller's scheduler loop to terminate this worker) if the pool is
// currently over its target size. Otherwise returns false.
func (rt *Runtime) shrinkIfNeeded(w *worker) bool {
	rt.poolMu.Lock()
	defer rt.poolMu.Unlock()
	if rt.curthr > rt.nthr {
		rt.curthr--
		return true
	}
	return false
}

// growIfNeeded spawns additional workers, fanning out so that N new
// workers start in O(log N) rounds rather than one at a time: each
// newly spawned worker immediately spawns roughly half of whatever is
// still left, recursively, instead of the caller spawning all of them
// serially.
func (rt *Runtime) growIfNeeded(w *worker) {
	rt.poolMu.Lock()
	left := rt.nthr - rt.curthr
	if left <= 0 {
		rt.poolMu.Unlock()
		return
	}
	rt.curthr += left
	rt.poolMu.Unlock()

	rt.spawnFanout(left)
}

// spawnFanout spawns n workers using recursive halving: this call
// spawns ceil(n/2) directly and asks one of those to spawn the
// remaining floor(n/2), and so on, so that a large pool growth request
// fills out in logarithmic depth instead of linear.
func (rt *Runtime) spawnFanout(n int) {
	if n <= 0 {
		return
	}
	mine := (n + 1) / 2
	rest := n - mine
	for i := 0; i < mine; i++ {
		remaining := 0
		if i == 0 {
			remaining = rest
		}
		go rt.startWorker(remaining)
	}
}

// startWorker pins the calling goroutine to an OS thread and runs the
// scheduler loop on it. If fanout is positive, it first spawns that
// many more workers (recursive halving continues one level down).
func (rt *Runtime) startWorker(fanout int) {
	goruntime.LockOSThread()
	defer goruntime.UnlockOSThread()

	if fanout > 0 {
		rt.spawnFanout(fanout)
	}

	w := newWorker(rt)
	schedulerLoop(w)
}

// Run starts nthr worker threads, creates a single initial task running
// entry(arg), and blocks until every task (including any spawned by
// entry) has exited. It returns the runtime's final exit value — the
// value passed to the last call to Exit by any task (a task whose entry
// function returns exits with 0), or 0 if no task called Exit.
//
// Run is the equivalent of the source design's main/threadmain: it
// owns the one Runtime instance it creates and tears down fully before
// returning.
func Run(entry EntryFunc, arg any, nthr int, opts ...Option) int {
	if nthr < 1 {
		nthr = 1
	}
	cfg := resolveOptions(opts)
	rt := newRuntime(cfg)
	rt.poolMu.Lock()
	rt.nthr = nthr
	rt.curthr = nthr
	rt.poolMu.Unlock()

	rt.createTask(entry, arg, WithTaskName("main"))

	done := make(chan struct{})
	go func() {
		rt.spawnFanout(nthr)
		close(done)
	}()
	<-done

	rt.drain()

	rt.schedMu.RLock()
	ev := rt.exitValue
	rt.schedMu.RUnlock()
	return ev
}

// drain blocks the calling goroutine until every worker has returned.
// schedulerLoop retires a worker on its own, with no help from drain,
// the moment it observes zero live tasks; drain just waits for curthr
// to reach zero as those retirements land, nudging stalled workers
// awake so they notice promptly rather than waiting out their stall
// timeout.
func (rt *Runtime) drain() {
	for {
		rt.poolMu.Lock()
		curthr := rt.curthr
		rt.poolMu.Unlock()
		if curthr == 0 {
			return
		}
		rt.runqMu.Lock()
		rt.runqCond.Broadcast()
		rt.runqMu.Unlock()
		goruntime.Gosched()
	}
}
