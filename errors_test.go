package taskrt

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFatalErrorUnwrapsToSentinel(t *testing.T) {
	err := &FatalError{Cause: ErrDeadlock, Message: "all workers stalled"}
	assert.True(t, errors.Is(err, ErrDeadlock))
	assert.False(t, errors.Is(err, ErrPollsetFull))
	assert.Contains(t, err.Error(), "all workers stalled")
	assert.Contains(t, err.Error(), ErrDeadlock.Error())
}

func TestFatalPanicsWithFatalError(t *testing.T) {
	defer func() {
		r := recover()
		fe, ok := r.(*FatalError)
		assert.True(t, ok)
		assert.ErrorIs(t, fe, ErrContextSwitch)
	}()
	fatal(ErrContextSwitch, "boom")
}
