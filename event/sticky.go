package event

import (
	"github.com/cs20/ocr-sub000/guid"
	"github.com/cs20/ocr-sub000/internal/nlog"
)

// Sticky (spec.md §3 "Persistent event ... data: GUID", §4.2 "Sticky"):
// exactly one write to data; a second satisfy is reported as user error
// (a warning, not a crash — distinguished from Once's hard assert
// because spec.md §8 only requires sticky to "raise a warning").
//
// The destroy/satisfy race documented in spec.md §9 design notes (the
// waitersCount CAS ladder {CHECKED_IN, CHECKED_OUT, DESTROY_SEEN}) is
// implemented once here and reused, in spirit, by Idempotent and
// Counted: whichever of {the thread that finishes flushing satisfy
// notifications} or {a concurrent Destroy} observes the other already
// "checked in" performs the actual teardown; the other backs off.
type Sticky struct {
	Base
	data    guid.Guid
	dataSet bool
}

var _ Event = (*Sticky)(nil)

func NewSticky(g guid.Guid, r Resolver) *Sticky {
	return &Sticky{Base: newBase(g, guid.KindEventSticky, r), data: guid.UninitializedGuid}
}

func (e *Sticky) Data() (guid.Guid, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.data, e.dataSet
}

func (e *Sticky) NotifySatisfied(_ uint32, data guid.Guid, _ guid.DbAccessMode) {
	e.mu.Lock()
	if e.dataSet {
		e.mu.Unlock()
		nlog.Warningln("sticky event: double satisfy ignored (user error)", e.guid)
		return
	}
	e.data = data
	e.dataSet = true
	// Begin the checked-in/checked-out race window: from here until the
	// CAS below, a concurrent Destroy may observe CheckedIn.
	e.waitersCount = CheckedIn
	waiters := e.snapshotWaitersLocked()
	e.mu.Unlock()

	for _, rn := range waiters {
		notify(e.r, rn, data)
	}

	e.mu.Lock()
	won := e.waitersCount == CheckedIn
	if won {
		e.waitersCount = CheckedOut
	}
	lostToDestroy := e.waitersCount == DestroySeen
	e.mu.Unlock()

	if lostToDestroy {
		// Destroy arrived mid-flush and backed off (see Destroy below);
		// satisfy is now responsible for the actual free.
		e.freeWaiterTables()
	}
}

func (e *Sticky) RegisterWaiter(waiter guid.Guid, slot uint32, _ bool, mode guid.DbAccessMode) error {
	e.mu.Lock()
	if e.dataSet {
		// Persistent event already satisfied: "converts immediately into
		// a satisfy-regnode call to waiter.slot" (spec.md §4.2
		// registerWaiter). We must notify after releasing the lock.
		data := e.data
		e.mu.Unlock()
		notifySingle(e.r, RegNode{Guid: waiter, Slot: slot, Mode: mode}, data)
		return nil
	}
	e.addWaiterLocked(RegNode{Guid: waiter, Slot: slot, Mode: mode})
	e.mu.Unlock()
	return nil
}

func (e *Sticky) freeWaiterTables() {
	e.mu.Lock()
	e.waitersInlineN = 0
	e.waitersOverflow = nil
	e.mu.Unlock()
}

func (e *Sticky) Destroy() error {
	e.mu.Lock()
	switch e.waitersCount {
	case CheckedIn:
		// A satisfy is mid-flush: back off, let satisfy free once it
		// notices it lost the CAS below.
		e.waitersCount = DestroySeen
		e.mu.Unlock()
		return nil
	default:
		e.mu.Unlock()
		e.freeWaiterTables()
		return nil
	}
}

func notifySingle(r Resolver, rn RegNode, data guid.Guid) {
	notify(r, rn, data)
}
