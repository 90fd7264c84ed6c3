package event

import (
	"github.com/cs20/ocr-sub000/guid"
	"github.com/cs20/ocr-sub000/internal/debug"
	"github.com/cs20/ocr-sub000/internal/nlog"
)

// Once (spec.md §4.2 "Once"): single satisfy allowed; waiters are
// flushed in one shot then the event is destroyed. Registration must
// precede satisfaction; nanny-mode warns on late registration.
type Once struct {
	Base
	fired bool
}

var _ Event = (*Once)(nil)

func NewOnce(g guid.Guid, r Resolver) *Once {
	return &Once{Base: newBase(g, guid.KindEventOnce, r)}
}

func (e *Once) NotifySatisfied(_ uint32, data guid.Guid, _ guid.DbAccessMode) {
	e.mu.Lock()
	if e.fired {
		e.mu.Unlock()
		nlog.Errorln("once event double-satisfied", e.guid)
		debug.Assert(false, "once event double-satisfied")
		return
	}
	e.fired = true
	waiters := e.snapshotWaitersLocked()
	e.mu.Unlock()

	for _, rn := range waiters {
		notify(e.r, rn, data)
	}
	e.fireSelfDestroy()
}

func (e *Once) RegisterWaiter(waiter guid.Guid, slot uint32, _ bool, mode guid.DbAccessMode) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fired {
		nlog.Warningln("once event: registration after satisfy", e.guid, waiter)
	}
	e.addWaiterLocked(RegNode{Guid: waiter, Slot: slot, Mode: mode})
	return nil
}

func (e *Once) Destroy() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.waitersInlineN = 0
	e.waitersOverflow = nil
	return nil
}
