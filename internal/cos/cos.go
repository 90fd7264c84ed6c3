// Package cos ("common os"/"common stuff") holds small utilities shared
// across the runtime, adapted from the teacher's cmn/cos grab-bag
// (cos.FastV, cos.IsEOF, cos.SmoduleXs-style module tags used for
// verbosity gating in xact/xs/tcb.go and tcobjs.go).
package cos

import (
	"io"
	"sync/atomic"
)

// Smodule tags mirror the teacher's cos.Smodule* constants, used only to
// scope verbosity checks to a subsystem.
type Smodule string

const (
	SmoduleEvent    Smodule = "event"
	SmoduleEdt      Smodule = "edt"
	SmoduleFinish   Smodule = "finish"
	SmodulePD       Smodule = "pd"
	SmoduleRunlevel Smodule = "runlevel"
	SmoduleMdproto  Smodule = "mdproto"
	SmoduleDeferred Smodule = "deferred"
)

var verbosity int32

func SetVerbosity(v int) { atomic.StoreInt32(&verbosity, int32(v)) }

// FastV mirrors config.FastV(level, module): a cheap, lock-free gate
// checked on hot paths before formatting a log line.
func FastV(level int, _ Smodule) bool {
	return int(atomic.LoadInt32(&verbosity)) >= level
}

// IsEOF mirrors cos.IsEOF used by the teacher's recv() handlers
// (xact/xs/tcb.go, tcobjs.go) to distinguish a clean stream end from an
// actual transport error.
func IsEOF(err error) bool { return err == io.EOF || err == io.ErrUnexpectedEOF }
