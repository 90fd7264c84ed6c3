package event

import (
	"github.com/cs20/ocr-sub000/guid"
)

// Latch slots (spec.md §3 "Latch event adds a signed counter; INCR slot
// adds 1, DECR slot subtracts 1").
const (
	LatchSlotIncr uint32 = 0
	LatchSlotDecr uint32 = 1
)

// Latch (spec.md §4.2 "Latch"): fires (as a Once) when counter reaches 0,
// then self-destructs. Used directly by finish scopes (C4) and exposed
// through ocrEventCreateParams{LATCH.counter}.
type Latch struct {
	Base
	counter int64
	fired   bool
}

var _ Event = (*Latch)(nil)

// NewLatch creates a latch with an initial counter. It does not check the
// counter's sign and never fires at creation, even for a counter of zero:
// the latch fires on the first notification that leaves the counter at
// or below zero.
func NewLatch(g guid.Guid, r Resolver, counter int64) *Latch {
	l := &Latch{Base: newBase(g, guid.KindEventLatch, r), counter: counter}
	return l
}

func (e *Latch) NotifySatisfied(slot uint32, data guid.Guid, _ guid.DbAccessMode) {
	e.mu.Lock()
	if e.fired {
		e.mu.Unlock()
		return
	}
	switch slot {
	case LatchSlotIncr:
		e.counter++
	case LatchSlotDecr:
		e.counter--
	}
	fire := e.counter <= 0
	var waiters []RegNode
	if fire {
		e.fired = true
		waiters = e.snapshotWaitersLocked()
	}
	e.mu.Unlock()

	if fire {
		for _, rn := range waiters {
			notify(e.r, rn, data)
		}
		e.fireSelfDestroy()
	}
}

func (e *Latch) RegisterWaiter(waiter guid.Guid, slot uint32, _ bool, mode guid.DbAccessMode) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.addWaiterLocked(RegNode{Guid: waiter, Slot: slot, Mode: mode})
	return nil
}

func (e *Latch) Counter() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counter
}

func (e *Latch) Destroy() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.waitersInlineN = 0
	e.waitersOverflow = nil
	return nil
}
