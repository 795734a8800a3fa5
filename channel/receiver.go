// receiver.go
//
// Consumer endpoint.  Exactly one Receiver exists per channel; the
// registration assert in Split enforces the singleton.  The Receiver is
// movable but not clonable.

package channel

import "context"

// Receiver reads values out of the channel in the order their sends
// succeeded.
type Receiver[T any] struct {
	ch       *Channel[T]
	released bool
}

// TryRecv pops the oldest buffered item without blocking.  Returns
// ErrEmpty when nothing is buffered and the channel is open, ErrClosed
// once the channel is closed and drained.  ErrClosed is sticky.
func (r *Receiver[T]) TryRecv() (T, error) {
	return r.ch.tryRecv()
}

// Recv pops the oldest item, waiting when the buffer is empty.  An
// ErrClosed return is the end-of-stream marker: the channel closed and
// every buffered item has been delivered.  All later calls return
// ErrClosed as well.  ctx.Err() is returned when the caller gives up
// waiting.
func (r *Receiver[T]) Recv(ctx context.Context) (T, error) {
	w := newWaker()
	for {
		item, err := r.ch.recvPoll(w)
		if err != ErrEmpty {
			return item, err
		}
		select {
		case <-w.ready():
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

// Close requests a clean shutdown: no state is lost, and Recv keeps
// delivering until the buffer drains, at which point the channel turns
// terminally closed.  Producers observe the transition via IsClosed
// and Closed; their in-flight items stay drainable.
func (r *Receiver[T]) Close() {
	r.ch.close()
}

// Release drops the consumer registration.  Since nobody can ever
// drain the buffer again this is the hard shutdown: the channel jumps
// straight to Closed and parked producers are woken to observe it.
// Buffered items are discarded.  Release is idempotent per handle.
func (r *Receiver[T]) Release() {
	if r.released {
		return
	}
	r.released = true
	r.ch.deregisterReceiver()
}
