// Package mono adapts the teacher's cmn/mono monotonic-clock helper
// (mono.NanoTime, mono.Since — see xact/xs/tcb.go's idle-quiescence check).
// Trace timestamps (§6 "Trace binary stream") are PD-local wall-clock
// nanoseconds per spec.md; mono additionally exposes a monotonic source
// for duration math that must not be perturbed by clock adjustments.
package mono

import "time"

var start = time.Now()

// NanoTime returns a monotonic nanosecond counter anchored at process
// start, safe to store in an atomic.Int64 the way the teacher stores
// rxlast/chanFull timestamps.
func NanoTime() int64 { return time.Since(start).Nanoseconds() }

// Since returns the monotonic duration elapsed since a NanoTime() value.
func Since(nanoTime int64) time.Duration {
	return time.Duration(NanoTime() - nanoTime)
}

// WallNanos is the PD-local wall-clock nanosecond timestamp §6 requires
// for TraceObj records.
func WallNanos() int64 { return time.Now().UnixNano() }
