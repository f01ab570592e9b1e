package taskrt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestPoolShrinksToZeroAndRunReturns is the boundary behavior from
// spec.md §8: pool shrink from N to 0 means every worker exits and Run
// returns promptly.
func TestPoolShrinksToZeroAndRunReturns(t *testing.T) {
	done := make(chan struct{})
	go func() {
		Run(func(main *Task, _ any) {
			for i := 0; i < 8; i++ {
				main.Create(func(c *Task, _ any) {
					for j := 0; j < 10; j++ {
						c.Yield()
					}
				}, nil, WithTaskName("busy"))
			}
			main.Exit(0)
		}, nil, 4)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return within 5s after tasks finished")
	}
}

func TestSpawnFanoutStartsExactlyNWorkers(t *testing.T) {
	cfg := defaultConfig()
	rt := newRuntime(cfg)

	rt.poolMu.Lock()
	rt.nthr = 7
	rt.curthr = 7
	rt.poolMu.Unlock()

	rt.spawnFanout(7)

	// Every spawned worker immediately finds nalltaskLocked() == 0 (no
	// tasks were ever created on this runtime) and retires, decrementing
	// curthr back toward zero.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if rt.CurrentThreads() == 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, 0, rt.CurrentThreads())
}
