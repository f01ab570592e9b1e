package taskrt

import (
	"sync"

	"golang.org/x/sys/unix"
)

// Runtime is one independent universe of tasks and workers: a process
// (or per-instance) runtime context. Multiple Runtimes may coexist; all
// state here is per-instance, never process-global, matching the source
// design's "global mutable state" note.
//
// Fields group into four locking domains, exactly as specified:
//
//	sched lock (rwmutex)  -> all-tasks registry, id generator, switch counter, exit value, poller bookkeeping
//	runq lock (mutex+cond) -> ready queue, nstalled
//	poll lock (mutex)      -> pollset, waiter array, sleep list, self-pipe state, nwaiters
//	pool lock (mutex)      -> target/current thread counts, nblocking, admission rendez
type Runtime struct {
	cfg     *config
	logger  Logger
	metrics *Metrics

	// sched domain
	schedMu       sync.RWMutex
	tasks         []*Task
	freeSlots     []int
	nextID        uint64
	switchCount   uint64
	exitValue     int
	pollerStarted bool
	pollerTask    *Task

	// runq domain
	runqMu   sync.Mutex
	runqCond *sync.Cond
	runq     *taskList
	nstalled int

	// poll domain
	pollMu      sync.Mutex
	pollFDs     []unix.PollFd
	pollWaiters []*Task
	sleepList   *taskList
	selfPipeR   int
	selfPipeW   int
	nwaiters    int

	// pool domain
	poolMu    sync.Mutex
	nthr      int
	curthr    int
	nblocking int
	admission *Rendez
}

// newRuntime allocates a Runtime with the given resolved configuration.
// It does not start any workers; callers use Run.
func newRuntime(cfg *config) *Runtime {
	rt := &Runtime{
		cfg:       cfg,
		logger:    cfg.logger,
		metrics:   newMetrics(cfg.metricsEnabled),
		nextID:    1,
		runq:      newTaskList("runq"),
		sleepList: newTaskList("sleep"),
		selfPipeR: -1,
		selfPipeW: -1,
	}
	rt.runqCond = sync.NewCond(&rt.runqMu)
	rt.admission = NewRendez()
	rt.admission.bindRuntime(rt)
	// slot 0 of the pollset is reserved for the self-pipe read end.
	rt.pollFDs = append(rt.pollFDs, unix.PollFd{Fd: -1, Events: unix.POLLIN})
	rt.pollWaiters = append(rt.pollWaiters, nil)
	return rt
}

// nalltaskLocked returns the number of live, registered tasks. Caller must
// hold schedMu (read or write).
func (rt *Runtime) nalltaskLocked() int {
	return len(rt.tasks) - len(rt.freeSlots)
}

// createTask allocates and registers a new Task, appending it to the
// ready queue. It never runs synchronously.
func (rt *Runtime) createTask(fn EntryFunc, arg any, opts ...CreateOption) *Task {
	rt.schedMu.Lock()
	t := rt.createTaskLocked(fn, arg, opts...)
	rt.schedMu.Unlock()
	return t
}

// createTaskLocked is createTask's core, for call sites that already
// hold schedMu (namely ensurePoller, which must register the poller
// task atomically with setting pollerStarted).
func (rt *Runtime) createTaskLocked(fn EntryFunc, arg any, opts ...CreateOption) *Task {
	t := &Task{
		rt:        rt,
		fn:        fn,
		arg:       arg,
		stackSize: rt.cfg.stackSize,
		resume:    make(chan struct{}),
		state:     "runnable",
	}
	t.SetName("task")
	for _, o := range opts {
		if o != nil {
			o.applyTask(t)
		}
	}

	t.id = rt.nextID
	rt.nextID++
	if n := len(rt.freeSlots); n > 0 {
		idx := rt.freeSlots[n-1]
		rt.freeSlots = rt.freeSlots[:n-1]
		rt.tasks[idx] = t
		t.regIndex = idx
	} else {
		t.regIndex = len(rt.tasks)
		rt.tasks = append(rt.tasks, t)
	}

	rt.metrics.incCreated()
	logTask(rt.logger, LevelDebug, t, "task created")

	go t.trampoline()

	rt.ready(t)
	return t
}

// unregisterTask removes t from the all-tasks registry by
// swap-with-last-style index reuse (here: free-list reuse, which is the
// index-based equivalent). Caller must hold schedMu for writing.
func (rt *Runtime) unregisterTask(t *Task) {
	rt.tasks[t.regIndex] = nil
	rt.freeSlots = append(rt.freeSlots, t.regIndex)
}

// ready marks t runnable and appends it to the tail of the run queue,
// signaling any worker waiting for work. t must not currently be linked
// into any other list.
func (rt *Runtime) ready(t *Task) {
	rt.runqMu.Lock()
	t.ready = true
	rt.runq.pushBack(t)
	rt.runqCond.Signal()
	rt.runqMu.Unlock()
}

// SetPoolSize changes the target worker-thread count. Workers are
// spawned or retired lazily by the scheduler loop; see pool.go.
func (rt *Runtime) SetPoolSize(n int) {
	if n < 0 {
		n = 0
	}
	rt.poolMu.Lock()
	rt.nthr = n
	rt.poolMu.Unlock()
	rt.runqMu.Lock()
	rt.runqCond.Broadcast()
	rt.runqMu.Unlock()
}

// Metrics returns a snapshot of the runtime's counters. The counters are
// zero if metrics were not enabled via WithMetrics; CurrentThreads and
// Blocking are filled in either way.
func (rt *Runtime) Metrics() MetricsSnapshot {
	return rt.metrics.Snapshot(rt)
}

// CurrentThreads returns the number of live worker OS threads.
func (rt *Runtime) CurrentThreads() int {
	rt.poolMu.Lock()
	defer rt.poolMu.Unlock()
	return rt.curthr
}
