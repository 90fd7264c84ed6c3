package event

import (
	"github.com/cs20/ocr-sub000/guid"
)

// Counted (spec.md §3/§4.2 "Counted"): sticky-with-deregistration.
// nbDeps is supplied at creation; every registration that observes the
// event already satisfied decrements nbDeps under the lock; reaching
// zero self-destroys the event (spec.md §8: "for all counted events
// with nbDeps=k, after exactly k registrations observe the event
// satisfied, the event is destroyed"). spec.md §9 leaves "destroying a
// counted event before nbDeps registrations have occurred" explicitly
// undefined; this implementation does not special-case it (an early
// Destroy() call just tears down local waiter state, same as Sticky).
type Counted struct {
	Base
	data    guid.Guid
	dataSet bool
	nbDeps  int64
}

var _ Event = (*Counted)(nil)

func NewCounted(g guid.Guid, r Resolver, nbDeps int64) *Counted {
	return &Counted{
		Base:    newBase(g, guid.KindEventCounted, r),
		data:    guid.UninitializedGuid,
		nbDeps:  nbDeps,
	}
}

func (e *Counted) Data() (guid.Guid, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.data, e.dataSet
}

func (e *Counted) NbDeps() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nbDeps
}

// NotifySatisfied flushes every waiter registered before satisfaction and
// decrements nbDeps by that count, mirroring the original C
// (original_source/ocr/src/event/hc/hc-event.c:848: nbDeps -= waitersCount
// at satisfy time) so a counted event self-destroys even when every
// consumer registered before the producer satisfies it, not only when
// registrations straggle in afterward (that half is RegisterWaiter's job).
func (e *Counted) NotifySatisfied(_ uint32, data guid.Guid, _ guid.DbAccessMode) {
	e.mu.Lock()
	if e.dataSet {
		e.mu.Unlock()
		return
	}
	e.data = data
	e.dataSet = true
	e.waitersCount = CheckedIn
	waiters := e.snapshotWaitersLocked()
	e.nbDeps -= int64(len(waiters))
	hitZero := e.nbDeps <= 0
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

	if lostToDestroy || hitZero {
		e.teardown()
	}
	if hitZero {
		e.fireSelfDestroy()
	}
}

// RegisterWaiter implements the deregistration counting: a registration
// that lands after satisfaction both fires the waiter immediately (like
// Sticky) and decrements nbDeps; hitting zero self-destroys.
func (e *Counted) RegisterWaiter(waiter guid.Guid, slot uint32, _ bool, mode guid.DbAccessMode) error {
	e.mu.Lock()
	if !e.dataSet {
		e.addWaiterLocked(RegNode{Guid: waiter, Slot: slot, Mode: mode})
		e.mu.Unlock()
		return nil
	}
	data := e.data
	e.nbDeps--
	hitZero := e.nbDeps <= 0
	e.mu.Unlock()

	notifySingle(e.r, RegNode{Guid: waiter, Slot: slot, Mode: mode}, data)
	if hitZero {
		e.teardown()
		e.fireSelfDestroy()
	}
	return nil
}

func (e *Counted) teardown() {
	e.mu.Lock()
	e.waitersInlineN = 0
	e.waitersOverflow = nil
	e.mu.Unlock()
}

func (e *Counted) Destroy() error {
	e.mu.Lock()
	if e.waitersCount == CheckedIn {
		e.waitersCount = DestroySeen
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()
	e.teardown()
	return nil
}
