// handles_test.go
//
// Blocking-path coverage: Send backpressure parking, Recv parking,
// Closed waiters, waker hand-off between producer and consumer, and
// context cancellation of every parked operation.  All tests use the
// critical-section backend since they cross goroutines.

package channel

import (
	"context"
	"testing"
	"time"
)

// settle is long enough for a parked goroutine to be scheduled and
// observably blocked, short enough to keep the suite fast.
const settle = 10 * time.Millisecond

// TestSendBlocksUntilRecvFrees is the capacity-1 hand-off scenario: a
// second send must park on the full buffer and complete only after the
// consumer frees the slot.
func TestSendBlocksUntilRecvFrees(t *testing.T) {
	c := WithCriticalSections[int](1)
	s, r := Split(c)

	if err := s.TrySend(1); err != nil {
		t.Fatalf("TrySend: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- s.Send(context.Background(), 2)
	}()

	select {
	case err := <-done:
		t.Fatalf("Send on full buffer returned early: %v", err)
	case <-time.After(settle):
	}

	if v, err := r.Recv(context.Background()); err != nil || v != 1 {
		t.Fatalf("Recv = (%d, %v), want (1, nil)", v, err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unblocked Send: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Send never unblocked after capacity freed")
	}
	if v, err := r.Recv(context.Background()); err != nil || v != 2 {
		t.Fatalf("Recv = (%d, %v), want (2, nil)", v, err)
	}
}

// TestRecvBlocksUntilSend parks the consumer on an empty buffer and
// wakes it with a plain TrySend from another goroutine.
func TestRecvBlocksUntilSend(t *testing.T) {
	c := WithCriticalSections[int](3)
	s, r := Split(c)

	go func() {
		time.Sleep(settle)
		s.TrySend(99)
	}()

	v, err := r.Recv(context.Background())
	if err != nil || v != 99 {
		t.Fatalf("Recv = (%d, %v), want (99, nil)", v, err)
	}
}

// TestRecvEndOfStreamAfterSenderRelease is the capacity-1 shutdown
// scenario: with the only producer gone, a parked Recv resolves to
// end-of-stream instead of waiting forever.
func TestRecvEndOfStreamAfterSenderRelease(t *testing.T) {
	c := WithCriticalSections[int](1)
	s, r := Split(c)

	go func() {
		time.Sleep(settle)
		s.Release()
	}()

	if _, err := r.Recv(context.Background()); err != ErrClosed {
		t.Fatalf("Recv = %v, want ErrClosed", err)
	}
}

// TestSendFailsAfterReceiverRelease checks that a parked Send is woken
// and completes with ErrClosed when the consumer handle disappears.
func TestSendFailsAfterReceiverRelease(t *testing.T) {
	c := WithCriticalSections[int](1)
	s, r := Split(c)
	s.TrySend(1) // fill, so the next Send parks

	done := make(chan error, 1)
	go func() {
		done <- s.Send(context.Background(), 2)
	}()
	time.Sleep(settle)
	r.Release()

	select {
	case err := <-done:
		if err != ErrClosed {
			t.Fatalf("parked Send after hard close = %v, want ErrClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("parked Send never observed the hard close")
	}
}

// TestTwoBlockedSendersBothComplete reproduces the shared-slot
// supersede case: two producers park on a full capacity-1 buffer; the
// consumer drains three items and both parked sends finish.  Ordering
// between the two is deliberately unspecified.
func TestTwoBlockedSendersBothComplete(t *testing.T) {
	c := WithCriticalSections[int](1)
	s0, r := Split(c)
	s1 := s0.Clone()

	if err := s0.TrySend(1); err != nil {
		t.Fatalf("TrySend: %v", err)
	}
	done := make(chan error, 2)
	go func() { done <- s0.Send(context.Background(), 2) }()
	go func() { done <- s1.Send(context.Background(), 3) }()
	time.Sleep(settle) // let both park (one holds the slot, one spins)

	seen := map[int]bool{}
	for i := 0; i < 3; i++ {
		v, err := r.Recv(context.Background())
		if err != nil {
			t.Fatalf("Recv %d: %v", i, err)
		}
		if seen[v] {
			t.Fatalf("duplicate delivery of %d", v)
		}
		seen[v] = true
	}
	for i := 0; i < 2; i++ {
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("blocked send %d: %v", i, err)
			}
		case <-time.After(time.Second):
			t.Fatal("a blocked sender was never re-polled to completion")
		}
	}
	if !seen[1] || !seen[2] || !seen[3] {
		t.Fatalf("delivered set %v, want {1,2,3}", seen)
	}
}

// TestClosedResolvesOnClose parks a Closed waiter and wakes it via the
// receiver's clean Close.
func TestClosedResolvesOnClose(t *testing.T) {
	c := WithCriticalSections[int](1)
	s, r := Split(c)

	done := make(chan error, 1)
	go func() { done <- s.Closed(context.Background()) }()

	select {
	case err := <-done:
		t.Fatalf("Closed resolved before shutdown: %v", err)
	case <-time.After(settle):
	}
	r.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Closed: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Closed waiter not woken by Close")
	}
}

// TestClosedResolvesOnReceiverRelease is the hard-close variant.
func TestClosedResolvesOnReceiverRelease(t *testing.T) {
	c := WithCriticalSections[int](1)
	s, r := Split(c)

	done := make(chan error, 1)
	go func() { done <- s.Closed(context.Background()) }()
	time.Sleep(settle)
	r.Release()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Closed: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Closed waiter not woken by receiver release")
	}
}

// TestClosedResolvesImmediatelyWhenAlreadyClosed covers the fast path.
func TestClosedResolvesImmediatelyWhenAlreadyClosed(t *testing.T) {
	c := WithCriticalSections[int](1)
	s, r := Split(c)
	r.Close()
	if err := s.Closed(context.Background()); err != nil {
		t.Fatalf("Closed on closing channel: %v", err)
	}
}

// TestSendCtxCancel abandons a parked Send and confirms the channel
// state stays usable (the stale waker is harmless).
func TestSendCtxCancel(t *testing.T) {
	c := WithCriticalSections[int](1)
	s, r := Split(c)
	s.TrySend(1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Send(ctx, 2) }()
	time.Sleep(settle)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("cancelled Send = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("cancelled Send never returned")
	}

	// The abandoned waker must not wedge later operations.
	if v, err := r.TryRecv(); err != nil || v != 1 {
		t.Fatalf("TryRecv = (%d, %v), want (1, nil)", v, err)
	}
	if err := s.TrySend(3); err != nil {
		t.Fatalf("TrySend after cancellation: %v", err)
	}
}

// TestRecvCtxCancel abandons a parked Recv the same way.
func TestRecvCtxCancel(t *testing.T) {
	c := WithCriticalSections[int](1)
	s, r := Split(c)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := r.Recv(ctx)
		done <- err
	}()
	time.Sleep(settle)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("cancelled Recv = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("cancelled Recv never returned")
	}
	if err := s.TrySend(1); err != nil {
		t.Fatalf("TrySend after cancellation: %v", err)
	}
	if v, err := r.TryRecv(); err != nil || v != 1 {
		t.Fatalf("TryRecv = (%d, %v), want (1, nil)", v, err)
	}
}

// TestClosedCtxCancel abandons a parked Closed waiter.
func TestClosedCtxCancel(t *testing.T) {
	c := WithCriticalSections[int](1)
	s, _ := Split(c)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Closed(ctx) }()
	time.Sleep(settle)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("cancelled Closed = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("cancelled Closed never returned")
	}
}

// TestSendCompletesImmediatelyOnClosed verifies the blocking send's
// permanent-failure fast path.
func TestSendCompletesImmediatelyOnClosed(t *testing.T) {
	c := WithCriticalSections[int](1)
	s, r := Split(c)
	r.Release()
	if err := s.Send(context.Background(), 1); err != ErrClosed {
		t.Fatalf("Send on closed channel = %v, want ErrClosed", err)
	}
}

// TestRecvStickyAfterEndOfStream confirms end-of-stream is terminal for
// the blocking path too.
func TestRecvStickyAfterEndOfStream(t *testing.T) {
	c := WithCriticalSections[int](1)
	s, r := Split(c)
	s.TrySend(1)
	s.Release()

	if v, err := r.Recv(context.Background()); err != nil || v != 1 {
		t.Fatalf("Recv = (%d, %v), want (1, nil)", v, err)
	}
	for i := 0; i < 3; i++ {
		if _, err := r.Recv(context.Background()); err != ErrClosed {
			t.Fatalf("Recv after end-of-stream = %v, want ErrClosed", err)
		}
	}
}
