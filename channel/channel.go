// channel.go
//
// Fixed-capacity multi-producer/single-consumer channel for cooperative
// runtimes.  The buffer is allocated once at construction and never
// grows; producers get backpressure when it fills, and the consumer
// gets a drain-then-close shutdown protocol that cannot lose a buffered
// item.
//
// Every state mutation runs as one atomic step inside an injected
// exclusion.Section; no operation holds the section across a park.
// Lifecycle is monotonic: Open → Closing → Closed, with a hard
// Open → Closed shortcut when the receiver handle is released.
//
// Waker discipline: one slot for the consumer, one slot shared by all
// producers.  A producer parking into an occupied slot wakes the
// occupant out rather than queueing behind it — strict FIFO fairness
// among blocked producers is traded away to avoid an intrusive
// wait-list, but every parked producer is eventually re-polled.

package channel

import "main/exclusion"

// state holds all mutable channel data.  It is touched only inside the
// owning Channel's exclusion section.
type state[T any] struct {
	buf      []T // fixed ring storage, len(buf) == capacity
	readPos  int
	writePos int
	full     bool // disambiguates readPos == writePos
	closing  bool // shutdown requested, buffered items may remain
	closed   bool // terminal

	receiverRegistered bool
	sendersRegistered  int

	receiverWaker *waker // parked consumer, at most one
	sendersWaker  *waker // parked producer, at most one (shared slot)
}

// Channel wraps the state behind the exclusion primitive.  Construct
// with New (or a convenience constructor) and hand it to Split; the
// channel must outlive every handle Split produces.
type Channel[T any] struct {
	sect exclusion.Section
	st   state[T]
}

// New builds a channel of the given fixed capacity guarded by sect.
// Panics when capacity < 1: a zero-capacity channel could never accept
// an item and indicates a construction bug, same as a bad ring size.
func New[T any](capacity int, sect exclusion.Section) *Channel[T] {
	if capacity < 1 {
		panic("channel: capacity must be at least 1")
	}
	return &Channel[T]{
		sect: sect,
		st:   state[T]{buf: make([]T, capacity)},
	}
}

// WithCriticalSections builds a channel guarded by a token critical
// section, usable from any goroutine of a single-core-style runtime.
func WithCriticalSections[T any](capacity int) *Channel[T] {
	return New[T](capacity, exclusion.NewCriticalSection())
}

// WithThreadModeOnly builds a channel with the zero-cost guard.  Valid
// only while all handles are driven from one executor goroutine.
func WithThreadModeOnly[T any](capacity int) *Channel[T] {
	return New[T](capacity, exclusion.ThreadMode{})
}

// Split produces the channel's one Sender and one Receiver and performs
// their initial registration.  Panics if a Receiver is already
// registered: a second concurrent consumer is a programming defect in
// the surrounding system, not a runtime condition.
func Split[T any](c *Channel[T]) (*Sender[T], *Receiver[T]) {
	c.sect.Do(func() {
		if c.st.receiverRegistered {
			panic("channel: receiver already registered")
		}
		c.st.receiverRegistered = true
		c.st.sendersRegistered++
	})
	return &Sender[T]{ch: c}, &Receiver[T]{ch: c}
}

// Len reports how many items are currently buffered.
func (c *Channel[T]) Len() int {
	var n int
	c.sect.Do(func() { n = c.st.len() })
	return n
}

// Cap reports the fixed capacity.
func (c *Channel[T]) Cap() int {
	return len(c.st.buf)
}

// ───────────────────────── state machine ─────────────────────────
//
// The methods below assume the exclusion section is held.

func (st *state[T]) len() int {
	if st.full {
		return len(st.buf)
	}
	return (st.writePos - st.readPos + len(st.buf)) % len(st.buf)
}

// trySend appends item unless the channel is closed or full.  Sends
// still land while merely closing: the drain protocol only stops
// producers once the terminal state is reached.
func (st *state[T]) trySend(item T) error {
	if st.closed {
		return ErrClosed
	}
	if st.full {
		return ErrFull
	}
	st.buf[st.writePos] = item
	st.writePos = (st.writePos + 1) % len(st.buf)
	if st.writePos == st.readPos {
		st.full = true
	}
	// Unconditional: the receiver slot is not cleared on wake, so a
	// redundant wake here costs one empty re-poll at most.
	st.wakeReceiver()
	return nil
}

// tryRecv pops the oldest item, or reports why it cannot.  Finding the
// buffer empty while closing performs the Closing→Closed transition.
func (st *state[T]) tryRecv() (T, error) {
	var zero T
	if st.closed {
		return zero, ErrClosed
	}
	if st.readPos != st.writePos || st.full {
		item := st.buf[st.readPos]
		st.buf[st.readPos] = zero // release the slot's reference
		st.readPos = (st.readPos + 1) % len(st.buf)
		st.full = false
		// One slot of capacity just freed; hand it to the parked
		// producer, if any.
		st.wakeSenders()
		return item, nil
	}
	if !st.closing {
		return zero, ErrEmpty
	}
	st.closed = true
	st.wakeSenders()
	return zero, ErrClosed
}

// close requests shutdown while leaving buffered items drainable.
func (st *state[T]) close() {
	if st.closed || st.closing {
		return
	}
	st.closing = true
	st.wakeReceiver()
	// Producers parked in Closed() observe the transition now instead
	// of on their next natural poll.
	st.wakeSenders()
}

func (st *state[T]) isClosed() bool {
	return st.closing || st.closed
}

// deregisterReceiver is the hard shutdown: nobody can ever drain the
// buffer again, so the channel jumps straight to Closed and releases
// any parked producers.
func (st *state[T]) deregisterReceiver() {
	if st.receiverRegistered {
		st.closing = true
		st.closed = true
		st.wakeSenders()
	}
	st.receiverRegistered = false
	st.receiverWaker = nil
}

func (st *state[T]) registerSender() {
	st.sendersRegistered++
}

// deregisterSender drops one producer registration; the last one out
// starts the Closing transition so the consumer drains and terminates.
func (st *state[T]) deregisterSender() {
	if st.sendersRegistered == 0 {
		panic("channel: sender released without registration")
	}
	st.sendersRegistered--
	if st.sendersRegistered == 0 {
		st.close()
	}
}

// setSendersWaker parks w in the shared producer slot.  An occupant is
// superseded, not queued: it gets woken immediately and will re-park if
// its condition still holds.  This keeps the implementation free of an
// intrusive wait-list while preserving eventual re-poll for everyone.
func (st *state[T]) setSendersWaker(w *waker) {
	if st.sendersWaker != nil && st.sendersWaker != w {
		st.sendersWaker.wake()
	}
	st.sendersWaker = w
}

func (st *state[T]) wakeSenders() {
	if st.sendersWaker != nil {
		st.sendersWaker.wake()
		st.sendersWaker = nil
	}
}

// setReceiverWaker overwrites the consumer slot.  Only one consumer
// exists, so overwriting is always a re-registration by the same
// logical task.
func (st *state[T]) setReceiverWaker(w *waker) {
	st.receiverWaker = w
}

func (st *state[T]) wakeReceiver() {
	if st.receiverWaker != nil {
		st.receiverWaker.wake()
	}
}

// ───────────────────── locked entry points ─────────────────────

func (c *Channel[T]) trySend(item T) error {
	var err error
	c.sect.Do(func() { err = c.st.trySend(item) })
	return err
}

// sendPoll is one iteration of the blocking send: try, and when full,
// register w under the same acquisition so the wake cannot be lost.
func (c *Channel[T]) sendPoll(item T, w *waker) error {
	var err error
	c.sect.Do(func() {
		err = c.st.trySend(item)
		if err == ErrFull {
			c.st.setSendersWaker(w)
		}
	})
	return err
}

func (c *Channel[T]) tryRecv() (T, error) {
	var item T
	var err error
	c.sect.Do(func() { item, err = c.st.tryRecv() })
	return item, err
}

// recvPoll is one iteration of the blocking receive; on Empty it parks
// w in the consumer slot atomically with the emptiness check.
func (c *Channel[T]) recvPoll(w *waker) (T, error) {
	var item T
	var err error
	c.sect.Do(func() {
		item, err = c.st.tryRecv()
		if err == ErrEmpty {
			c.st.setReceiverWaker(w)
		}
	})
	return item, err
}

// closedPoll reports whether shutdown has begun, parking w otherwise.
// The producer slot is shared with blocked sends, so a Closed waiter
// may be woken by unrelated capacity events; it just re-polls.
func (c *Channel[T]) closedPoll(w *waker) bool {
	var done bool
	c.sect.Do(func() {
		done = c.st.isClosed()
		if !done {
			c.st.setSendersWaker(w)
		}
	})
	return done
}

func (c *Channel[T]) close() {
	c.sect.Do(func() { c.st.close() })
}

func (c *Channel[T]) isClosed() bool {
	var v bool
	c.sect.Do(func() { v = c.st.isClosed() })
	return v
}

func (c *Channel[T]) registerSender() {
	c.sect.Do(func() { c.st.registerSender() })
}

func (c *Channel[T]) deregisterSender() {
	c.sect.Do(func() { c.st.deregisterSender() })
}

func (c *Channel[T]) deregisterReceiver() {
	c.sect.Do(func() { c.st.deregisterReceiver() })
}
