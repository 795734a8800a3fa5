// control.go — Global control flags and activity management for the soak harness
// ============================================================================
// SYSTEM CONTROL ORCHESTRATION
// ============================================================================
//
// Control package provides lightweight global signaling infrastructure for
// coordinating producer activity and graceful shutdown across the soak
// harness goroutines.
//
// Architecture overview:
//   • Global hot/stop flags for cross-goroutine coordination
//   • Nanosecond-precision activity tracking with automatic cooldown
//   • Graceful shutdown fan-out: the signal handler flips one flag and
//     every producer loop observes it on its next iteration
//
// Threading model:
//   • Producers signal activity via SignalActivity()
//   • The progress consumer polls Active() to decide when a scenario is idle
//   • The signal handler calls Shutdown(); producers poll Stopped()

package control

import (
	"sync/atomic"
	"time"
)

// ============================================================================
// GLOBAL STATE MANAGEMENT
// ============================================================================

var (
	hot  atomic.Uint32 // 1 = producers currently pushing, 0 = idle
	stop atomic.Uint32 // 1 = graceful shutdown requested

	lastHot    atomic.Int64              // Nanosecond timestamp of last activity
	cooldownNs = int64(1 * time.Second) // Idle period before hot clears
)

// ============================================================================
// ACTIVITY SIGNALING
// ============================================================================

// SignalActivity marks the harness as active and records the timestamp
// for automatic cooldown.  Called from producer loops; safe for
// concurrent use.
func SignalActivity() {
	hot.Store(1)
	lastHot.Store(time.Now().UnixNano())
}

// PollCooldown clears the hot flag once the configured idle period has
// elapsed since the last activity signal.  Call it from monitoring
// loops; it is cheap enough to run every iteration.
func PollCooldown() {
	if hot.Load() == 1 && time.Now().UnixNano()-lastHot.Load() > cooldownNs {
		hot.Store(0)
	}
}

// Active reports whether producers have signalled recently.
func Active() bool {
	return hot.Load() == 1
}

// ============================================================================
// SYSTEM SHUTDOWN
// ============================================================================

// Shutdown requests graceful termination.  Producer loops observe it on
// their next poll and release their channel handles, which drives the
// channel's own drain-then-close protocol.
func Shutdown() {
	stop.Store(1)
}

// Stopped reports whether shutdown has been requested.
func Stopped() bool {
	return stop.Load() == 1
}

// Reset clears all flags.  Test isolation only.
func Reset() {
	hot.Store(0)
	stop.Store(0)
	lastHot.Store(0)
}
