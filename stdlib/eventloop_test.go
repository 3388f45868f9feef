package stdlib

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEventLoopRunsRegisteredTimers(t *testing.T) {
	loop := NewEventLoop()
	var order []int

	loop.RegisterTimer(5*time.Millisecond, func() { order = append(order, 1) })
	loop.RegisterTimer(1*time.Millisecond, func() { order = append(order, 2) })
	require.Equal(t, 2, loop.Pending())

	loop.Run()

	require.Equal(t, 0, loop.Pending())
	require.ElementsMatch(t, []int{1, 2}, order)
}

func TestEventLoopRunWithNoTimersReturnsImmediately(t *testing.T) {
	loop := NewEventLoop()
	loop.Run()
	require.Equal(t, 0, loop.Pending())
}
