// waker.go
//
// One-shot coalescing wake signal.  A parked operation owns a waker and
// selects on ready(); whoever frees the condition it waits for calls
// wake().  The one-slot buffer makes wake() non-blocking and collapses
// redundant wakes, so a wake that lands after registration but before
// the park is never lost.

package channel

type waker struct {
	ch chan struct{}
}

func newWaker() *waker {
	return &waker{ch: make(chan struct{}, 1)}
}

// wake schedules the owner for a re-poll.  Never blocks; a wake into an
// already-signalled waker is a no-op.
func (w *waker) wake() {
	select {
	case w.ch <- struct{}{}:
	default:
	}
}

// ready returns the channel the parked owner selects on.
func (w *waker) ready() <-chan struct{} {
	return w.ch
}
