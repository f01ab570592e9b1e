package taskrt

import (
	"time"

	"golang.org/x/sys/unix"
)

// Direction selects which readiness a task waits for in FDWait.
type Direction int

const (
	// DirRead waits for the fd to become readable (or hang up/error).
	DirRead Direction = iota
	// DirWrite waits for the fd to become writable (or hang up/error).
	DirWrite
)

func (d Direction) events() int16 {
	if d == DirWrite {
		return unix.POLLOUT
	}
	return unix.POLLIN
}

// maxPollTimeout bounds how long a single poll(2) call blocks even with
// no pending deadlines, so that the poller task periodically wakes to
// notice pool shutdown and other bookkeeping, matching spec.md's 5
// second ceiling.
const maxPollTimeout = 5 * time.Second

// ensurePoller lazily starts the poller task the first time a task
// needs to wait on a file descriptor or sleep for a duration. Only one
// poller task ever runs per Runtime.
func (rt *Runtime) ensurePoller() error {
	rt.schedMu.Lock()
	defer rt.schedMu.Unlock()
	if rt.pollerStarted {
		return nil
	}

	fds, err := unix.Pipe2(unix.O_NONBLOCK | unix.O_CLOEXEC)
	if err != nil {
		return err
	}

	rt.pollMu.Lock()
	rt.selfPipeR = fds[0]
	rt.selfPipeW = fds[1]
	rt.pollFDs[0] = unix.PollFd{Fd: int32(rt.selfPipeR), Events: unix.POLLIN}
	rt.pollMu.Unlock()

	rt.pollerStarted = true
	rt.pollerTask = rt.createTaskLocked(pollerTaskBody, nil, WithTaskName("poller"))
	return nil
}

// pollerTaskBody is the body of the runtime's single poller task,
// matching spec.md §4.4: it yields until no other task is ready, bails
// out once it is the only task left, then calls poll(2) over the
// packed fd array (bracketed as a blocking section), drains the
// self-pipe wakeup byte, promotes expired sleepers, and readies
// whichever tasks have satisfied events.
func pollerTaskBody(t *Task, _ any) {
	rt := t.rt
	for {
		for t.Yield() > 0 {
		}

		rt.schedMu.RLock()
		shouldStop := rt.nalltaskLocked() <= 1 // only the poller itself remains
		rt.schedMu.RUnlock()
		if shouldStop {
			rt.pollMu.Lock()
			unix.Close(rt.selfPipeR)
			unix.Close(rt.selfPipeW)
			rt.selfPipeR, rt.selfPipeW = -1, -1
			rt.pollMu.Unlock()
			// Exit with the runtime's current exit value so that the
			// poller's own exit does not overwrite it.
			rt.schedMu.RLock()
			ev := rt.exitValue
			rt.schedMu.RUnlock()
			t.Exit(ev)
		}

		rt.pollMu.Lock()
		fds := make([]unix.PollFd, len(rt.pollFDs))
		copy(fds, rt.pollFDs)
		timeout := rt.nextTimeoutLocked()
		rt.pollMu.Unlock()

		t.Blocking()
		n, err := unix.Poll(fds, timeout)
		t.Nonblocking()
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			fatal(ErrSelfPipe, "poll: "+err.Error())
		}

		rt.pollMu.Lock()
		rt.drainSelfPipeLocked(fds[0])
		var woken []*Task
		if n > 0 {
			woken = rt.dispatchReadyLocked(fds)
		}
		woken = append(woken, rt.promoteExpiredSleepersLocked()...)
		rt.pollMu.Unlock()

		rt.metrics.incPollWakeup()
		for _, w := range woken {
			w.readyOut = true
			rt.ready(w)
		}
	}
}

// nextTimeoutLocked computes the poll(2) timeout in milliseconds:
// maxPollTimeout if there is no sleeper, 0 if one has already expired,
// or the time until the earliest deadline, capped at maxPollTimeout.
// Caller must hold pollMu.
func (rt *Runtime) nextTimeoutLocked() int {
	if rt.sleepList.empty() {
		return int(maxPollTimeout / time.Millisecond)
	}
	earliest := rt.sleepList.head.deadlineNS
	now := time.Now().UnixNano()
	if earliest <= now {
		return 0
	}
	remain := time.Duration(earliest-now) * time.Nanosecond
	if remain > maxPollTimeout {
		remain = maxPollTimeout
	}
	return int(remain / time.Millisecond)
}

// drainSelfPipeLocked reads and discards any bytes written to the
// self-pipe by submitWakeup, so the next poll(2) doesn't immediately
// fire again on stale readiness. Caller must hold pollMu.
func (rt *Runtime) drainSelfPipeLocked(selfFd unix.PollFd) {
	if selfFd.Revents&unix.POLLIN == 0 {
		return
	}
	var buf [64]byte
	for {
		n, err := unix.Read(rt.selfPipeR, buf[:])
		if n <= 0 || err != nil {
			return
		}
	}
}

// dispatchReadyLocked scans fds (index-aligned with rt.pollFDs) for
// satisfied events, builds the list of tasks to wake, and compacts the
// pollset by swap-removal of every satisfied (or errored) slot except
// slot 0, the self-pipe. Caller must hold pollMu.
func (rt *Runtime) dispatchReadyLocked(fds []unix.PollFd) []*Task {
	var woken []*Task
	// Walk from the end: swap-removing slot i only moves a slot at or
	// after i, so every lower slot stays aligned with fds.
	for i := len(fds) - 1; i >= 1; i-- {
		if fds[i].Revents != 0 {
			woken = append(woken, rt.pollWaiters[i])
			rt.swapRemoveLocked(i)
		}
	}
	return woken
}

// swapRemoveLocked removes pollset slot i by swapping in the last
// slot, keeping the array packed. Caller must hold pollMu.
func (rt *Runtime) swapRemoveLocked(i int) {
	last := len(rt.pollFDs) - 1
	rt.pollFDs[i] = rt.pollFDs[last]
	rt.pollWaiters[i] = rt.pollWaiters[last]
	rt.pollFDs = rt.pollFDs[:last]
	rt.pollWaiters = rt.pollWaiters[:last]
}

// promoteExpiredSleepersLocked pops every sleeper whose deadline has
// passed off the front of the (deadline-sorted) sleep list. Caller
// must hold pollMu.
func (rt *Runtime) promoteExpiredSleepersLocked() []*Task {
	now := time.Now().UnixNano()
	var woken []*Task
	for !rt.sleepList.empty() && rt.sleepList.head.deadlineNS <= now {
		t := rt.sleepList.popFront()
		rt.metrics.incDeadlineFired()
		woken = append(woken, t)
	}
	return woken
}

// submitWakeup writes a single byte to the self-pipe, interrupting a
// blocked poll(2) call so it re-evaluates timeouts and the pollset
// immediately. Safe to call with the poller not yet started (no-op).
func (rt *Runtime) submitWakeup() {
	rt.pollMu.Lock()
	w := rt.selfPipeW
	rt.pollMu.Unlock()
	if w < 0 {
		return
	}
	var b [1]byte
	unix.Write(w, b[:])
}
