// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: debug.go — cold-path diagnostic logging (zero-alloc)
//
// Purpose:
//   - Logs infrequent events without introducing heap pressure.
//   - Used only in cold paths: startup phases, soak results, shutdown.
//
// Notes:
//   - Avoids fmt.Sprintf to minimize footprint and latency.
//   - The channel core itself never logs; failure conditions there are
//     returned to callers, and reporting is the application's job.
//
// ⚠️ Never invoke in hot loops — use only in phase transitions and
//    failure diagnostics.
// ─────────────────────────────────────────────────────────────────────────────

package debug

import "main/utils"

// DropError logs an error with a prefix tag, or just the prefix when
// err is nil (cheap trace marker).  Writes directly to stderr.
func DropError(prefix string, err error) {
	if err != nil {
		utils.PrintWarning(prefix + ": " + err.Error() + "\n")
	} else {
		utils.PrintWarning(prefix + "\n")
	}
}

// DropMessage logs a tagged message: connection state changes, phase
// transitions, and other infrequent events.
func DropMessage(prefix, message string) {
	utils.PrintWarning(prefix + ": " + message + "\n")
}

// DropValue logs a tagged label with an integer payload, formatted
// through the stack-buffer Itoa instead of fmt.
func DropValue(prefix, label string, v int) {
	utils.PrintWarning(prefix + ": " + label + " " + utils.Itoa(v) + "\n")
}
