package taskrt

import (
	"time"

	"golang.org/x/sys/unix"
)

// FDWait registers fd with the poller for the given direction and
// switches out until fd becomes ready (or errors/hangs up), per
// spec.md §4.5. It starts the poller task on first use. Exceeding the
// pollset capacity (WithPollsetCapacity) is a fatal error
// (ErrPollsetFull), matching the
// source design's "pollset is a fixed-size array" constraint.
func (t *Task) FDWait(fd int, dir Direction) error {
	rt := t.rt
	if fd < 0 {
		return ErrFDOutOfRange
	}
	if err := rt.ensurePoller(); err != nil {
		return err
	}

	rt.pollMu.Lock()
	if len(rt.pollFDs) >= rt.cfg.pollsetCapacity {
		rt.pollMu.Unlock()
		fatal(ErrPollsetFull, "pollset capacity exceeded")
	}
	rt.pollFDs = append(rt.pollFDs, unix.PollFd{Fd: int32(fd), Events: dir.events()})
	rt.pollWaiters = append(rt.pollWaiters, t)
	rt.pollMu.Unlock()

	t.blocked = true
	t.SetState("fdwait")
	rt.submitWakeup()
	t.switchOut()
	t.blocked = false
	return nil
}

// Delay suspends the calling task for at least d, then readies it
// again, returning the actual elapsed duration.
func (t *Task) Delay(d time.Duration) time.Duration {
	rt := t.rt
	if err := rt.ensurePoller(); err != nil {
		fatal(ErrSelfPipe, "Delay: "+err.Error())
	}
	if d < 0 {
		d = 0
	}
	start := time.Now()

	rt.pollMu.Lock()
	t.deadlineNS = start.Add(d).UnixNano()
	rt.sleepList.insertSorted(t)
	rt.pollMu.Unlock()

	t.blocked = true
	t.SetState("sleeping")
	rt.submitWakeup()
	t.switchOut()
	t.blocked = false

	return time.Since(start)
}

// FDSetNonblock puts fd into non-blocking mode, a prerequisite for
// using it with FDWait/FDRead/FDWrite.
func FDSetNonblock(fd int) error {
	return unix.SetNonblock(fd, true)
}

// FDRead reads into buf from fd, waiting for readability via FDWait
// and retrying on EAGAIN/EINTR. It returns 0, nil on EOF.
func (t *Task) FDRead(fd int, buf []byte) (int, error) {
	for {
		n, err := unix.Read(fd, buf)
		switch {
		case err == nil:
			return n, nil
		case err == unix.EAGAIN:
			if werr := t.FDWait(fd, DirRead); werr != nil {
				return 0, werr
			}
		case err == unix.EINTR:
			continue
		default:
			return 0, err
		}
	}
}

// FDRead1 always calls FDWait before reading, unlike FDRead, which only
// waits after a read attempt reports EAGAIN. Use this when the caller
// already knows there is likely no data waiting yet.
func (t *Task) FDRead1(fd int, buf []byte) (int, error) {
	for {
		if err := t.FDWait(fd, DirRead); err != nil {
			return 0, err
		}
		n, err := unix.Read(fd, buf)
		switch {
		case err == nil:
			return n, nil
		case err == unix.EAGAIN:
			continue
		default:
			return 0, err
		}
	}
}

// FDWrite writes all of buf to fd, waiting for writability via FDWait
// and retrying on EAGAIN/EINTR/short writes.
func (t *Task) FDWrite(fd int, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := unix.Write(fd, buf[total:])
		switch {
		case err == nil:
			total += n
		case err == unix.EAGAIN:
			if werr := t.FDWait(fd, DirWrite); werr != nil {
				return total, werr
			}
		case err == unix.EINTR:
			continue
		default:
			return total, err
		}
	}
	return total, nil
}
