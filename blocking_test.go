package taskrt

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockingDoubleCallPanics(t *testing.T) {
	Run(func(main *Task, _ any) {
		main.Blocking()
		defer main.Nonblocking()
		assert.Panics(t, func() {
			main.Blocking()
		})
		main.Exit(0)
	}, nil, 1)
}

func TestNonblockingWithoutBlockingPanics(t *testing.T) {
	Run(func(main *Task, _ any) {
		assert.Panics(t, func() {
			main.Nonblocking()
		})
		main.Exit(0)
	}, nil, 1)
}

// TestS6BlockingAdmission exercises spec scenario S6: at the default
// 75% threshold, three tasks enter a blocking section simultaneously
// while a fourth stalls until one leaves. The pool runs one extra
// worker beyond the four task bodies involved so that main's own
// (non-cooperative) wait in this test doesn't starve them of a worker
// thread to run on; 3*100/5=60<=75 still admits three concurrently and
// 4*100/5=80>75 still blocks the fourth, so the threshold math exercised
// is the same shape as the spec's curthr=4 example.
func TestS6BlockingAdmission(t *testing.T) {
	Run(func(main *Task, _ any) {
		var mu sync.Mutex
		entered := 0
		var wg sync.WaitGroup
		fourthEntered := make(chan struct{})
		release := make(chan struct{})

		wg.Add(4)
		for i := 0; i < 3; i++ {
			main.Create(func(c *Task, _ any) {
				defer wg.Done()
				c.Blocking()
				mu.Lock()
				entered++
				mu.Unlock()
				<-release
				c.Nonblocking()
			}, nil, WithTaskName("blocker"))
		}

		main.Create(func(c *Task, _ any) {
			defer wg.Done()
			c.Blocking()
			close(fourthEntered)
			c.Nonblocking()
		}, nil, WithTaskName("fourth"))

		// The fourth task must not be admitted until one of the first
		// three leaves its blocking section.
		select {
		case <-fourthEntered:
			t.Error("fourth task admitted before any of the first three left")
		case <-time.After(100 * time.Millisecond):
		}

		close(release)
		<-fourthEntered

		wg.Wait()
		require.Equal(t, 3, entered)
		main.Exit(0)
	}, nil, 5)
}
