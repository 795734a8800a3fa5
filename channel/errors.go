// errors.go
//
// Failure taxonomy for the channel operations.  Transient conditions
// (ErrFull, ErrEmpty) drive suspension in the blocking paths; ErrClosed
// is permanent and plays the io.EOF role on the receive side: an
// ordinary termination signal, not a fault.

package channel

import "errors"

var (
	// ErrFull is returned by TrySend when the buffer already holds
	// capacity items.  The caller keeps the rejected item and may
	// retry, redirect, or drop it.
	ErrFull = errors.New("channel full")

	// ErrEmpty is returned by TryRecv when no item is buffered and the
	// channel is still open.
	ErrEmpty = errors.New("channel empty")

	// ErrClosed reports that the channel can never again carry the
	// requested operation.  On the send side it means the receiver is
	// gone or the channel drained out after a close request; on the
	// receive side it is the end-of-stream marker and is sticky.
	ErrClosed = errors.New("channel closed")
)
