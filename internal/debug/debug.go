// Package debug adapts the teacher's cmn/debug assertion helpers
// (debug.Assert, debug.AssertNoErr — see xact/xs/tcobjs.go "debug.Assert(refc >= 0)").
// Assertions panic rather than silently tolerate a broken invariant: the
// spec calls these "fatal/unrecoverable" conditions (§7) that must abort
// with a diagnostic, not limp on.
package debug

import "fmt"

// Enabled gates assertion cost the way the teacher's build-tag-controlled
// debug package does; left on by default since this module has no build
// variants.
var Enabled = true

func Assert(cond bool, v ...any) {
	if !Enabled || cond {
		return
	}
	panic(fmt.Sprintln(append([]any{"assertion failed:"}, v...)...))
}

func Assertf(cond bool, format string, v ...any) {
	if !Enabled || cond {
		return
	}
	panic(fmt.Sprintf("assertion failed: "+format, v...))
}

func AssertNoErr(err error) {
	if !Enabled || err == nil {
		return
	}
	panic(fmt.Sprintf("assertion failed: unexpected error: %v", err))
}
