package taskrt

import "sync"

// Rendez is a FIFO rendezvous wait-set: tasks sleep on it while holding
// some external lock, and other tasks (or the runtime itself) wake one
// or all of them. It is the Go-side equivalent of the source design's
// rendez_sleep/rendez_wake/rendez_wakeall, used both for user-level
// coordination and internally for blocking-section admission.
//
// Sleep requires the caller to already hold the external lock passed
// to it; Rendez unlocks it for
// the duration of the sleep and re-acquires it before returning,
// exactly like the source primitive's "atomically unlock and sleep"
// contract.
type Rendez struct {
	mu   sync.Mutex // protects waiters only
	rt   *Runtime
	wait *taskList
}

// NewRendez creates an unattached Rendez. rendez created this way may
// be used by a single Runtime only, wired up via bindRuntime before
// first use; Runtime's own admission rendez is bound in newRuntime.
func NewRendez() *Rendez {
	return &Rendez{wait: newTaskList("rendez")}
}

func (r *Rendez) bindRuntime(rt *Runtime) { r.rt = rt }

// NewRendez creates a Rendez bound to this runtime, for user-level
// coordination between tasks. This is the constructor application code
// should use; the package-level NewRendez is for internal wiring only.
func (rt *Runtime) NewRendez() *Rendez {
	r := NewRendez()
	r.bindRuntime(rt)
	return r
}

// Sleep atomically unlocks external, links the calling task into r's
// wait-set, and switches out. It re-locks external before returning,
// whether woken by Wake/WakeAll or (conceptually) spuriously; callers
// must re-check their condition in a loop, as with any condition
// variable.
func (r *Rendez) Sleep(t *Task, external sync.Locker) {
	r.mu.Lock()
	r.wait.pushBack(t)
	t.blocked = true
	t.SetState("rendez")
	r.mu.Unlock()

	external.Unlock()
	t.switchOut()
	external.Lock()
}

// Wake readies at most one sleeper (the longest-waiting one) and
// returns how many tasks were woken (0 or 1).
func (r *Rendez) Wake() int {
	r.mu.Lock()
	t := r.wait.popFront()
	r.mu.Unlock()
	if t == nil {
		return 0
	}
	t.blocked = false
	t.readyOut = true
	r.rt.ready(t)
	return 1
}

// WakeAll readies every current sleeper and returns how many were
// woken.
func (r *Rendez) WakeAll() int {
	r.mu.Lock()
	var woken []*Task
	for {
		t := r.wait.popFront()
		if t == nil {
			break
		}
		woken = append(woken, t)
	}
	r.mu.Unlock()
	for _, t := range woken {
		t.blocked = false
		t.readyOut = true
		r.rt.ready(t)
	}
	return len(woken)
}

// Len reports the current number of sleepers, for diagnostics.
func (r *Rendez) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.wait.Len()
}
