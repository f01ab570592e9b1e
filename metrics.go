package taskrt

import "sync/atomic"

// Metrics is a lightweight snapshot of runtime counters, in the style of
// the source corpus's metrics.go: plain atomic counters bumped on the
// hot path, with a cheap Snapshot for observability.
type Metrics struct {
	enabled bool

	switches     atomic.Uint64
	tasksCreated atomic.Uint64
	tasksExited  atomic.Uint64
	pollWakeups  atomic.Uint64
	timedOut     atomic.Uint64
	deadlines    atomic.Uint64
}

// MetricsSnapshot is a point-in-time copy of Metrics' counters.
type MetricsSnapshot struct {
	Switches     uint64
	TasksCreated uint64
	TasksExited  uint64
	PollWakeups  uint64
	TimedOut     uint64
	Deadlines    uint64
	CurrentThreads int
	Blocking       int
}

func newMetrics(enabled bool) *Metrics {
	return &Metrics{enabled: enabled}
}

func (m *Metrics) incSwitch() {
	if m == nil || !m.enabled {
		return
	}
	m.switches.Add(1)
}

func (m *Metrics) incCreated() {
	if m == nil || !m.enabled {
		return
	}
	m.tasksCreated.Add(1)
}

func (m *Metrics) incExited() {
	if m == nil || !m.enabled {
		return
	}
	m.tasksExited.Add(1)
}

func (m *Metrics) incPollWakeup() {
	if m == nil || !m.enabled {
		return
	}
	m.pollWakeups.Add(1)
}

func (m *Metrics) incTimedOut() {
	if m == nil || !m.enabled {
		return
	}
	m.timedOut.Add(1)
}

func (m *Metrics) incDeadlineFired() {
	if m == nil || !m.enabled {
		return
	}
	m.deadlines.Add(1)
}

// Snapshot returns a copy of the counters. Safe to call concurrently
// with a running Runtime.
func (m *Metrics) Snapshot(rt *Runtime) MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	s := MetricsSnapshot{
		Switches:     m.switches.Load(),
		TasksCreated: m.tasksCreated.Load(),
		TasksExited:  m.tasksExited.Load(),
		PollWakeups:  m.pollWakeups.Load(),
		TimedOut:     m.timedOut.Load(),
		Deadlines:    m.deadlines.Load(),
	}
	if rt != nil {
		rt.poolMu.Lock()
		s.CurrentThreads = rt.curthr
		s.Blocking = rt.nblocking
		rt.poolMu.Unlock()
	}
	return s
}
