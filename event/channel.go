package event

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/cs20/ocr-sub000/guid"
)

// Channel (spec.md §4.2 "Channel"): a FIFO rendezvous between an
// unbounded stream of satisfiers and an unbounded stream of waiters.
// Each satisfy pairs with the waiter registered at the same position in
// FIFO order ("generation"); whichever side arrives first for a given
// generation parks until its counterpart shows up. maxGen, when
// non-zero, bounds how many satisfied-but-unpaired generations may
// accumulate before a producer blocks (spec.md §4.2 "bounded channel
// back-pressure"); zero means unbounded.
//
// There is no lock-free ring buffer in the teacher corpus for this
// shape; the FIFO pairing itself is plain slice-backed queues guarded by
// Base.mu (same single-spinlock discipline as the other kinds), and the
// bounded back-pressure is delegated to golang.org/x/sync/semaphore,
// from the same golang.org/x/sync module as the runlevel barrier's
// errgroup.
type Channel struct {
	Base

	maxGen uint64 // 0 == unbounded
	nbSat  uint64
	nbReg  uint64

	satQueue  []chanEntry // satisfied generations waiting for a registrant
	waitQueue []RegNode   // registered waiters waiting for a satisfier

	sem *semaphore.Weighted // nil when unbounded
}

type chanEntry struct {
	data guid.Guid
	mode guid.DbAccessMode
}

var _ Event = (*Channel)(nil)

func NewChannel(g guid.Guid, r Resolver, maxGen uint64) *Channel {
	c := &Channel{Base: newBase(g, guid.KindEventChannel, r), maxGen: maxGen}
	if maxGen > 0 {
		c.sem = semaphore.NewWeighted(int64(maxGen))
	}
	return c
}

func (e *Channel) MaxGen() uint64 { return e.maxGen }

func (e *Channel) Depth() (satisfied, waiting int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.satQueue), len(e.waitQueue)
}

// NotifySatisfied enqueues one generation's data. If a waiter is already
// parked for the next generation it is paired immediately; otherwise the
// data sits in satQueue until a matching RegisterWaiter arrives. A
// bounded channel blocks the caller (via the semaphore) once maxGen
// unpaired generations are outstanding — the spec's back-pressure.
func (e *Channel) NotifySatisfied(_ uint32, data guid.Guid, mode guid.DbAccessMode) {
	if e.sem != nil {
		// Acquire is uncancellable here: spec.md models this as a blocking
		// producer stall, not an abortable operation.
		_ = e.sem.Acquire(context.Background(), 1)
	}

	e.mu.Lock()
	e.nbSat++
	if len(e.waitQueue) > 0 {
		rn := e.waitQueue[0]
		e.waitQueue = e.waitQueue[1:]
		e.mu.Unlock()
		if e.sem != nil {
			e.sem.Release(1)
		}
		notifySingle(e.r, rn, data)
		return
	}
	e.satQueue = append(e.satQueue, chanEntry{data: data, mode: mode})
	e.mu.Unlock()
}

// RegisterWaiter pairs against the oldest unpaired satisfied generation,
// or parks in waitQueue until one arrives (spec.md §4.2 "registerWaiter
// on a channel event either drains the oldest pending datum or enqueues
// the waiter for the next one to arrive").
func (e *Channel) RegisterWaiter(waiter guid.Guid, slot uint32, _ bool, mode guid.DbAccessMode) error {
	e.mu.Lock()
	e.nbReg++
	if len(e.satQueue) > 0 {
		ent := e.satQueue[0]
		e.satQueue = e.satQueue[1:]
		e.mu.Unlock()
		if e.sem != nil {
			e.sem.Release(1)
		}
		notifySingle(e.r, RegNode{Guid: waiter, Slot: slot, Mode: mode}, ent.data)
		return nil
	}
	e.addWaiterQueueLocked(RegNode{Guid: waiter, Slot: slot, Mode: mode})
	e.mu.Unlock()
	return nil
}

func (e *Channel) addWaiterQueueLocked(rn RegNode) {
	e.waitQueue = append(e.waitQueue, rn)
}

func (e *Channel) Destroy() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.satQueue = nil
	e.waitQueue = nil
	return nil
}
