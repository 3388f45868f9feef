package stdlib

import "time"

// EventLoop is a poll-driven timer queue modelling the "timer-fd / poll
// driver" collaborator spec.md §1 places outside the core's design
// boundary. Built on time.Timer/time.AfterFunc (SPEC_FULL.md §3) rather
// than a hand-rolled reactor, since nothing in the retrieved pack
// implements its own event loop primitives from scratch either.
//
// It is wired and independently testable, but not yet reachable from
// compiled source: await (ast.AwaitExpr) is rejected outright by codegen
// (SPEC_FULL.md §5, open question 2) rather than lowered to a real
// suspend point, so there is no compiled call site that could register
// a timer here. A future coroutine-capable codegen is what would make
// RegisterTimer reachable from user programs.
type EventLoop struct {
	pending int
	done    chan func()
}

// NewEventLoop creates an EventLoop with no timers registered.
func NewEventLoop() *EventLoop {
	return &EventLoop{done: make(chan func(), 16)}
}

// RegisterTimer schedules fn to run after d elapses, delivered onto the
// loop's completion channel rather than invoked directly on the timer's
// own goroutine — Run is the only place callbacks actually execute, so
// a registered callback never races with the loop's own bookkeeping.
func (l *EventLoop) RegisterTimer(d time.Duration, fn func()) {
	l.pending++
	time.AfterFunc(d, func() {
		l.done <- fn
	})
}

// Pending reports how many timers have been registered but not yet run.
func (l *EventLoop) Pending() int { return l.pending }

// Run drains every registered timer's callback as it fires, returning
// once all of them have run.
func (l *EventLoop) Run() {
	for l.pending > 0 {
		fn := <-l.done
		fn()
		l.pending--
	}
}
