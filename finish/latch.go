// Package finish implements C4: finish-scope/latch hierarchy (spec.md
// §3 "Finish scope", §4.4 "Finish EDTs"). A finish scope is a
// event.Latch that starts at 1 (the scope's own "still open" unit),
// incremented once per child EDT/event added under it and decremented
// as each completes; closing the scope decrements the initial unit, so
// the whole tree only fires once every child that was ever added has
// finished, however late children are added. There is no teacher
// analogue for a finish-scope join tree; the counting discipline is
// grounded on spec.md §4.4 and on `original_source/ocr/src/event/hc/
// hc-event.c`'s HC latch's INCR/DECR slot handling, reused here via
// event.NewLatch rather than reimplemented.
package finish

import (
	"github.com/cs20/ocr-sub000/event"
	"github.com/cs20/ocr-sub000/guid"
	"github.com/cs20/ocr-sub000/internal/atomic"
)

// Scope is one ocrEdtCreate(EDT_PROP_FINISH) frame (spec.md §4.4).
type Scope struct {
	Guid   guid.Guid
	latch  *event.Latch
	Parent *Scope // nil at the root
	proxy  *ParentProxy

	finalOutput atomic.Int64 // guid.Guid bits, set by Close
}

// NewScope opens a finish scope. The latch starts at 1 (the scope's own
// open unit) rather than 0, so AddChild calls that race with the scope
// itself finishing its synchronous setup never see a latch that has
// already reached zero.
func NewScope(g guid.Guid, r event.Resolver, parent *Scope) *Scope {
	return &Scope{
		Guid:   g,
		latch:  event.NewLatch(g, r, 1),
		Parent: parent,
	}
}

// Latch exposes the underlying event.Latch so a PD can register it as a
// signaler/waiter like any other event (e.g. wiring the scope's
// completion to an ocrEdtCreate(EDT_PROP_FINISH) output event).
func (s *Scope) Latch() *event.Latch { return s.latch }

// AddChild records one more unit of outstanding work under the scope
// (spec.md §4.4 "every EDT or event created inside a finish scope
// increments its latch before creation completes").
func (s *Scope) AddChild() {
	s.latch.NotifySatisfied(event.LatchSlotIncr, guid.NullGuid, guid.ModeNull)
	if s.proxy != nil {
		s.proxy.NotifyChildAdded()
	}
}

// ChildDone records completion of one unit added via AddChild.
func (s *Scope) ChildDone() {
	s.latch.NotifySatisfied(event.LatchSlotDecr, guid.NullGuid, guid.ModeNull)
	if s.proxy != nil {
		s.proxy.NotifyChildDone()
	}
}

// Close decrements the scope's own open unit (spec.md §4.4 "the finish
// EDT's own body completing also counts as one unit"). Once every
// AddChild'd unit plus this one has been matched by ChildDone/Close,
// the latch fires and the scope's waiters (including Parent.ChildDone,
// wired by whoever created this scope) are notified.
//
// out is the finishing EDT's own return value, stashed in finalOutput
// before the latch decrement so whichever call actually drives the
// latch to zero - this one, or a still-outstanding child's ChildDone
// racing in on another goroutine - has it available: ChildDone itself
// always notifies with guid.NullGuid, so FinalOutput is the only place
// a scope's terminal observer can recover the real value (spec.md §4.3
// epilogue case (a)).
func (s *Scope) Close(out guid.Guid) {
	s.finalOutput.Store(int64(out))
	s.latch.NotifySatisfied(event.LatchSlotDecr, guid.NullGuid, guid.ModeNull)
}

// FinalOutput returns the guid passed to Close. Only meaningful once the
// scope's own latch has fired.
func (s *Scope) FinalOutput() guid.Guid { return guid.Guid(uint64(s.finalOutput.Load())) }

// AttachProxy installs a remote-parent forwarding proxy (proxy.go) for a
// finish scope whose parent lives on a different policy domain.
func (s *Scope) AttachProxy(p *ParentProxy) { s.proxy = p }
