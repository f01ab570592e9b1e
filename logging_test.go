package taskrt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopLoggerDiscardsEverything(t *testing.T) {
	var l Logger = noopLogger{}
	assert.False(t, l.Enabled(LevelDebug))
	assert.False(t, l.Enabled(LevelError))
	assert.NotPanics(t, func() {
		l.Log(LevelError, "should be discarded", F("k", "v"))
	})
}

func TestLogifaceLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogifaceLogger(LevelWarn, &buf)

	require.False(t, l.Enabled(LevelDebug))
	require.True(t, l.Enabled(LevelError))

	l.Log(LevelDebug, "should not appear")
	assert.Empty(t, buf.String())

	l.Log(LevelError, "task failed", F("task_id", uint64(7)), F("err", assert.AnError))
	assert.Contains(t, buf.String(), "task failed")
}

func TestLogTaskAddsIdentityFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogifaceLogger(LevelDebug, &buf)

	tsk := &Task{id: 99, name: "worker-ish"}
	logTask(l, LevelInfo, tsk, "hello")

	out := buf.String()
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "99")
	assert.Contains(t, out, "worker-ish")
}
