// Package ttest is a shrunk adaptation of the teacher's tools/tassert +
// tools/trand test-helper packages: deterministic pseudo-random test
// payloads and a couple of Fatal-style helpers, used by package tests
// that need a GUID-sized random payload without pulling in crypto/rand.
package ttest

import (
	"math/rand"
	"testing"
)

// RandString mirrors tools/trand.String: fixed-seed-able pseudo-random
// ASCII string generator for reproducible test fixtures.
func RandString(r *rand.Rand, n int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[r.Intn(len(alphabet))]
	}
	return string(b)
}

// Fatal mirrors tools/tassert.Fatalf: fail immediately with context.
func Fatal(t *testing.T, cond bool, msg ...any) {
	t.Helper()
	if !cond {
		t.Fatal(msg...)
	}
}
