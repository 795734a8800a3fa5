// exclusion.go — injected exclusive-access primitives for the channel core.
//
// The channel state machine never locks anything itself; it runs every
// state mutation inside a Section supplied at construction time.  Two
// backends are provided:
//
//   • CriticalSection — token-based guard usable from any goroutine of a
//     cooperative runtime.  Short-lived, non-reentrant.
//   • ThreadMode      — zero-cost guard for state touched by exactly one
//     executor goroutine.  The single-goroutine precondition is
//     documented, not enforced.
//
// ⚠️ Neither backend is a substitute for a real multi-core mutex; both
// assume the single-executor model the channel is specified against.

package exclusion

// Section runs a closure with exclusive access to whatever state the
// holder guards.  Implementations must be non-reentrant: the closure
// must not call back into the same Section.
type Section interface {
	Do(fn func())
}

// CriticalSection serializes closures through a one-slot token channel.
// The zero value is not usable; construct with NewCriticalSection.
type CriticalSection struct {
	token chan struct{}
}

// NewCriticalSection returns a ready-to-use critical section guard.
func NewCriticalSection() *CriticalSection {
	cs := &CriticalSection{token: make(chan struct{}, 1)}
	cs.token <- struct{}{}
	return cs
}

// Do acquires the token, runs fn, and releases the token even if fn
// panics.  Bounded duration is the caller's responsibility: fn must not
// block or suspend.
func (cs *CriticalSection) Do(fn func()) {
	<-cs.token
	defer func() { cs.token <- struct{}{} }()
	fn()
}

// ThreadMode is the no-cost backend: it runs the closure directly.
// Valid only while every handle of the guarded channel is driven from a
// single executor goroutine.  Violating that precondition is a data
// race, exactly as it would be upstream.
type ThreadMode struct{}

// Do runs fn inline.
func (ThreadMode) Do(fn func()) { fn() }
