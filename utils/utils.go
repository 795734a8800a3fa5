package utils

import (
	"os"
	"unsafe"
)

///////////////////////////////////////////////////////////////////////////////
// Conversion Utilities — Zero-Alloc Casts
///////////////////////////////////////////////////////////////////////////////

// B2s converts a []byte to a string **without** allocation.
// ⚠️ Caller must ensure the input slice remains valid and unchanged.
// Used for human-readable print paths.
//
//go:nosplit
//go:inline
func B2s(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(&b[0], len(b))
}

// S2b converts a string to a []byte **without** allocation.
// ⚠️ The returned slice must never be mutated.
//
//go:nosplit
//go:inline
func S2b(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

///////////////////////////////////////////////////////////////////////////////
// Integer Formatting — Stack-Buffer Itoa
///////////////////////////////////////////////////////////////////////////////

// Itoa formats a signed integer through a stack buffer, keeping fmt and
// strconv out of diagnostic paths.
func Itoa(v int) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte // fits -9223372036854775808
	neg := v < 0
	u := uint64(v)
	if neg {
		u = uint64(-v)
	}
	i := len(buf)
	for u > 0 {
		i--
		buf[i] = byte('0' + u%10)
		u /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

///////////////////////////////////////////////////////////////////////////////
// Direct Warning Output — fd 2, no fmt
///////////////////////////////////////////////////////////////////////////////

// PrintWarning writes msg straight to stderr.  The string is cast, not
// copied; nothing in this path touches fmt or the log package.
func PrintWarning(msg string) {
	os.Stderr.Write(S2b(msg))
}
