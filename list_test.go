package taskrt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskListPushPopFIFO(t *testing.T) {
	l := newTaskList("runq")
	a := &Task{name: "a"}
	b := &Task{name: "b"}
	c := &Task{name: "c"}

	l.pushBack(a)
	l.pushBack(b)
	l.pushBack(c)
	require.Equal(t, 3, l.Len())

	assert.Same(t, a, l.popFront())
	assert.Same(t, b, l.popFront())
	assert.Same(t, c, l.popFront())
	assert.Nil(t, l.popFront())
	assert.True(t, l.empty())
}

func TestTaskListRemoveMiddle(t *testing.T) {
	l := newTaskList("runq")
	a, b, c := &Task{name: "a"}, &Task{name: "b"}, &Task{name: "c"}
	l.pushBack(a)
	l.pushBack(b)
	l.pushBack(c)

	l.remove(b)
	require.Equal(t, 2, l.Len())
	assert.Equal(t, "", b.listMembership)

	assert.Same(t, a, l.popFront())
	assert.Same(t, c, l.popFront())
}

func TestTaskListDoubleLinkPanics(t *testing.T) {
	l := newTaskList("runq")
	a := &Task{name: "a"}
	l.pushBack(a)

	assert.Panics(t, func() {
		l.pushBack(a)
	})
}

func TestTaskListInsertSortedOrdersByDeadline(t *testing.T) {
	l := newTaskList("sleep")
	a := &Task{name: "a", deadlineNS: 300}
	b := &Task{name: "b", deadlineNS: 100}
	c := &Task{name: "c", deadlineNS: 200}

	l.insertSorted(a)
	l.insertSorted(b)
	l.insertSorted(c)

	require.Equal(t, b, l.popFront())
	require.Equal(t, c, l.popFront())
	require.Equal(t, a, l.popFront())
}

func TestTaskListInsertSortedStableForTies(t *testing.T) {
	l := newTaskList("sleep")
	a := &Task{name: "a", deadlineNS: 100}
	b := &Task{name: "b", deadlineNS: 100}
	c := &Task{name: "c", deadlineNS: 100}

	l.insertSorted(a)
	l.insertSorted(b)
	l.insertSorted(c)

	assert.Same(t, a, l.popFront())
	assert.Same(t, b, l.popFront())
	assert.Same(t, c, l.popFront())
}
