// sender.go
//
// Producer endpoint.  Senders are reference-counted in the shared
// state: Split and Clone register, Release deregisters, and the last
// release starts the Closing transition.  A Sender must not be used
// after Release; handles are otherwise plain movable values.

package channel

import "context"

// Sender sends values into the channel.  Clone it for multi-producer
// use; every clone is an independent handle to the same channel.
type Sender[T any] struct {
	ch       *Channel[T]
	released bool
}

// TrySend appends item without blocking.  Returns ErrFull when the
// buffer holds capacity items and ErrClosed once the channel is
// terminally closed; either way the caller still owns item.
func (s *Sender[T]) TrySend(item T) error {
	return s.ch.trySend(item)
}

// Send appends item, waiting for capacity when the buffer is full.
// Returns nil on delivery, ErrClosed when the channel terminates first,
// or ctx.Err() when the caller gives up.  Waiting producers share one
// waker slot, so ordering among concurrent blocked Sends is not
// guaranteed — only that each is eventually re-polled.
func (s *Sender[T]) Send(ctx context.Context, item T) error {
	w := newWaker()
	for {
		err := s.ch.sendPoll(item, w)
		if err != ErrFull {
			return err
		}
		select {
		case <-w.ready():
		case <-ctx.Done():
			// Abandoning the wait may leave a stale waker in the
			// slot; the next wake of it is a harmless no-op.
			return ctx.Err()
		}
	}
}

// IsClosed reports whether shutdown has begun (closing or closed).
// Once true it stays true.
func (s *Sender[T]) IsClosed() bool {
	return s.ch.isClosed()
}

// Closed blocks until shutdown has begun, letting producers stop work
// as soon as interest in their values is gone.  It parks in the shared
// producer slot, so unrelated capacity wakes cause cheap re-polls.
func (s *Sender[T]) Closed(ctx context.Context) error {
	w := newWaker()
	for {
		if s.ch.closedPoll(w) {
			return nil
		}
		select {
		case <-w.ready():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Clone registers and returns an additional producer handle.
func (s *Sender[T]) Clone() *Sender[T] {
	s.ch.registerSender()
	return &Sender[T]{ch: s.ch}
}

// Release drops this handle's registration.  When the last Sender is
// released the channel transitions to Closing and the consumer drains
// to end-of-stream.  Release is idempotent per handle.
func (s *Sender[T]) Release() {
	if s.released {
		return
	}
	s.released = true
	s.ch.deregisterSender()
}
