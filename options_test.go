package taskrt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOptionsDefaults(t *testing.T) {
	c := resolveOptions(nil)
	assert.Equal(t, defaultStackSize, c.stackSize)
	assert.Equal(t, defaultPollsetCapacity, c.pollsetCapacity)
	assert.Equal(t, defaultBlockedThreshPct, c.blockedThreshPct)
	assert.False(t, c.metricsEnabled)
}

func TestResolveOptionsAppliesOverrides(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogifaceLogger(LevelInfo, &buf)

	c := resolveOptions([]Option{
		WithStackSize(256 * 1024),
		WithPollsetCapacity(64),
		WithBlockedThreshold(50),
		WithMetrics(true),
		WithLogger(logger),
		nil, // skip-nil resolution must tolerate this
	})

	assert.Equal(t, 256*1024, c.stackSize)
	assert.Equal(t, 64, c.pollsetCapacity)
	assert.Equal(t, 50, c.blockedThreshPct)
	assert.True(t, c.metricsEnabled)
	require.Same(t, logger, c.logger)
}

func TestWithBlockedThresholdRejectsOutOfRange(t *testing.T) {
	c := resolveOptions([]Option{WithBlockedThreshold(0), WithBlockedThreshold(150)})
	assert.Equal(t, defaultBlockedThreshPct, c.blockedThreshPct)
}

func TestMetricsSnapshotReflectsActivity(t *testing.T) {
	var snap MetricsSnapshot
	Run(func(main *Task, _ any) {
		done := make(chan struct{})
		main.Create(func(c *Task, _ any) {
			close(done)
			c.Exit(0)
		}, nil, WithTaskName("child"))
		<-done
		snap = main.Runtime().Metrics()
		main.Exit(0)
		// Two workers: main holds one while it waits on done, so the
		// child needs the other.
	}, nil, 2, WithMetrics(true))

	assert.GreaterOrEqual(t, snap.TasksCreated, uint64(2)) // main + child
	assert.GreaterOrEqual(t, snap.Switches, uint64(1))
}
