package event

import (
	"github.com/cs20/ocr-sub000/guid"
)

// Idempotent (spec.md §4.2 "Sticky/Idempotent"): identical to Sticky
// except a second satisfy is silently dropped rather than warned about.
type Idempotent struct {
	Base
	data    guid.Guid
	dataSet bool
}

var _ Event = (*Idempotent)(nil)

func NewIdempotent(g guid.Guid, r Resolver) *Idempotent {
	return &Idempotent{Base: newBase(g, guid.KindEventIdempotent, r), data: guid.UninitializedGuid}
}

func (e *Idempotent) Data() (guid.Guid, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.data, e.dataSet
}

func (e *Idempotent) NotifySatisfied(_ uint32, data guid.Guid, _ guid.DbAccessMode) {
	e.mu.Lock()
	if e.dataSet {
		e.mu.Unlock()
		return // silent drop, per spec.md §4.2
	}
	e.data = data
	e.dataSet = true
	e.waitersCount = CheckedIn
	waiters := e.snapshotWaitersLocked()
	e.mu.Unlock()

	for _, rn := range waiters {
		notify(e.r, rn, data)
	}

	e.mu.Lock()
	if e.waitersCount == CheckedIn {
		e.waitersCount = CheckedOut
	}
	lostToDestroy := e.waitersCount == DestroySeen
	e.mu.Unlock()

	if lostToDestroy {
		e.freeWaiterTables()
	}
}

func (e *Idempotent) RegisterWaiter(waiter guid.Guid, slot uint32, _ bool, mode guid.DbAccessMode) error {
	e.mu.Lock()
	if e.dataSet {
		data := e.data
		e.mu.Unlock()
		notifySingle(e.r, RegNode{Guid: waiter, Slot: slot, Mode: mode}, data)
		return nil
	}
	e.addWaiterLocked(RegNode{Guid: waiter, Slot: slot, Mode: mode})
	e.mu.Unlock()
	return nil
}

func (e *Idempotent) freeWaiterTables() {
	e.mu.Lock()
	e.waitersInlineN = 0
	e.waitersOverflow = nil
	e.mu.Unlock()
}

func (e *Idempotent) Destroy() error {
	e.mu.Lock()
	if e.waitersCount == CheckedIn {
		e.waitersCount = DestroySeen
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()
	e.freeWaiterTables()
	return nil
}
