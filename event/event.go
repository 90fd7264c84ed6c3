// Package event implements C2 of SPEC_FULL.md: the seven event kinds of
// spec.md §3/§4.2 (once, latch, sticky, idempotent, counted, channel,
// collective) sharing one waiters/mdClass base but each with its own
// satisfy/registerWaiter/destroy contract — "tagged variant plus a
// per-kind vtable struct" per spec.md §9 design notes, not per-instance
// function-pointer tables.
//
// There is no direct teacher analogue for a dataflow event (aistore has
// no equivalent synchronization primitive); the locking discipline
// (single spinlock per object guarding counts/peers/resizes) and the
// atomic-wrapper style are adapted from the teacher's xact/xs/tcb.go and
// tcobjs.go (atomic.Int32/Int64 fields, debug.Assert on invariants,
// nlog.Errorln on anomalies).
package event

import (
	"sync"

	"github.com/seiflotfy/cuckoofilter"

	"github.com/cs20/ocr-sub000/guid"
	"github.com/cs20/ocr-sub000/hint"
	"github.com/cs20/ocr-sub000/internal/debug"
)

// Slot sentinels overloading RegNode.Slot (spec.md §3 "RegNode").
const (
	SlotRegular              = ^uint32(0) >> 1 // any value below this is a real dependence slot index
	SlotSatisfiedEvt         = ^uint32(0)
	SlotSatisfiedDb          = ^uint32(0) - 1
	SlotRegisteredEphemeral  = ^uint32(0) - 2
)

// RegNode is a signaler/waiter record (spec.md §3).
type RegNode struct {
	Guid guid.Guid
	Slot uint32
	Mode guid.DbAccessMode
}

// Waiter is satisfied by anything that can receive a satisfy
// notification off an event's waiters list: both *edt.Instance (pull- and
// push-mode dependence waiters) and every concrete event kind (each
// defines its own NotifySatisfied; event-to-event REGWAITER, spec.md
// §4.5 dispatch table "event -> event: REGWAITER") implement it.
type Waiter interface {
	NotifySatisfied(slot uint32, data guid.Guid, mode guid.DbAccessMode)
}

// WaitersCount sentinels (spec.md §3 "Invariants"): the field doubles as
// either the live waiter count or one of these three markers.
type WaitersCount int64

const (
	waitersRegularMax WaitersCount = 1<<62 - 1
	CheckedIn         WaitersCount = -1
	CheckedOut        WaitersCount = -2
	DestroySeen       WaitersCount = -3
)

const kStatic = 4 // inline waiters array size (spec.md "waiters[K_STATIC]")

// mdClass is the distributed-metadata bookkeeping spec.md §3 attaches to
// every event: who satisfied/deleted us from, and which remote PDs hold
// a copy (so satisfy/delete can be pushed to them — spec.md §4.7).
type mdClass struct {
	satFromLoc guid.Location
	delFromLoc guid.Location
	hasFromLoc bool

	mu     sync.Mutex
	peers  []guid.Location
	filter *cuckoo.Filter // fast probabilistic "already a peer?" pre-check
}

func newMdClass() *mdClass {
	return &mdClass{filter: cuckoo.NewFilter(64)}
}

// AddPeer records that `loc` holds a remote copy (an M_REG push arrived
// from it). The cuckoo filter lets the common "duplicate M_REG from a
// peer we already know about" path skip the slice scan under the lock;
// a filter false-positive only costs a redundant scan, never a
// correctness bug, since the slice itself is the source of truth.
func (md *mdClass) AddPeer(loc guid.Location) {
	key := []byte{byte(loc)}
	md.mu.Lock()
	defer md.mu.Unlock()
	if md.filter.Lookup(key) {
		for _, p := range md.peers {
			if p == loc {
				return
			}
		}
	}
	md.peers = append(md.peers, loc)
	md.filter.Insert(key)
}

func (md *mdClass) Peers() []guid.Location {
	md.mu.Lock()
	defer md.mu.Unlock()
	out := make([]guid.Location, len(md.peers))
	copy(out, md.peers)
	return out
}

// PeersExcept returns the peer list minus `except`, implementing the
// anti-echo rule of spec.md §4.7 M_SAT push ("the receiver never forwards
// to the location it received from").
func (md *mdClass) PeersExcept(except guid.Location, have bool) []guid.Location {
	all := md.Peers()
	if !have {
		return all
	}
	out := make([]guid.Location, 0, len(all))
	for _, p := range all {
		if p != except {
			out = append(out, p)
		}
	}
	return out
}

// Base is embedded by every event kind and holds the fields common to
// all of them (spec.md §3 "Event (common base)"). Base also carries the
// Resolver its owning PD installed at creation time, so a kind's
// NotifySatisfied can flush waiters without a separate two-step
// notify-then-flush dance: the PD is always known at creation (an event
// cannot exist independent of the PD that allocated its guid), unlike a
// generic Go interface callback that would have to be threaded through
// every call site.
type Base struct {
	guid  guid.Guid
	kind  guid.Kind
	fctID uint64

	mu              sync.Mutex
	waitersInline   [kStatic]RegNode
	waitersInlineN  int
	waitersOverflow []RegNode
	waitersCount    WaitersCount

	hintMask *hint.Mask

	md *mdClass
	r  Resolver

	// onSelfDestroy, when set, is invoked exactly once by a kind that can
	// tear itself down without an explicit ocrEventDestroy call (Counted
	// reaching nbDeps==0, Once/Latch firing). The owning PD sets this to
	// release the event's guid (spec.md "the event is destroyed by
	// whichever actor brings it to zero").
	onSelfDestroy func()
}

func (b *Base) SetOnSelfDestroy(fn func()) { b.onSelfDestroy = fn }

func (b *Base) fireSelfDestroy() {
	if b.onSelfDestroy != nil {
		b.onSelfDestroy()
	}
}

func newBase(g guid.Guid, kind guid.Kind, r Resolver) Base {
	return Base{
		guid:     g,
		kind:     kind,
		hintMask: hint.New(hint.KindEvt),
		md:       newMdClass(),
		r:        r,
	}
}

func (b *Base) Guid() guid.Guid  { return b.guid }
func (b *Base) Kind() guid.Kind  { return b.kind }
func (b *Base) Hint() *hint.Mask { return b.hintMask }
func (b *Base) Md() *mdClass     { return b.md }

// addWaiter appends to the inline array, then the growable overflow
// table (spec.md §3 "overflow waiter table waitersDb (growable,
// factor-of-two)"). Caller holds b.mu.
func (b *Base) addWaiterLocked(rn RegNode) {
	if b.waitersInlineN < kStatic {
		b.waitersInline[b.waitersInlineN] = rn
		b.waitersInlineN++
		return
	}
	if len(b.waitersOverflow) == cap(b.waitersOverflow) {
		newCap := cap(b.waitersOverflow) * 2
		if newCap == 0 {
			newCap = kStatic
		}
		grown := make([]RegNode, len(b.waitersOverflow), newCap)
		copy(grown, b.waitersOverflow)
		b.waitersOverflow = grown
	}
	b.waitersOverflow = append(b.waitersOverflow, rn)
}

// forEachWaiterLocked visits every registered waiter exactly once.
// Caller holds b.mu (or has already snapshotted and released it).
func (b *Base) forEachWaiterLocked(fn func(RegNode)) {
	for i := 0; i < b.waitersInlineN; i++ {
		fn(b.waitersInline[i])
	}
	for _, rn := range b.waitersOverflow {
		fn(rn)
	}
}

// snapshotWaitersLocked copies out every registered waiter and clears the
// tables, used by the "flush in one shot" kinds (Once, Latch) so the
// satisfy path can call out to waiters without holding b.mu.
func (b *Base) snapshotWaitersLocked() []RegNode {
	out := make([]RegNode, 0, b.waitersInlineN+len(b.waitersOverflow))
	for i := 0; i < b.waitersInlineN; i++ {
		out = append(out, b.waitersInline[i])
	}
	out = append(out, b.waitersOverflow...)
	b.waitersInlineN = 0
	b.waitersOverflow = nil
	return out
}

// Resolver resolves a guid to a Waiter, used when a satisfy/destroy path
// needs to call back into the object a RegNode names (almost always an
// *edt.Instance). Kept as an indirection so event does not import edt.
type Resolver interface {
	ResolveWaiter(g guid.Guid) (Waiter, bool)
}

func notify(r Resolver, rn RegNode, data guid.Guid) {
	w, ok := r.ResolveWaiter(rn.Guid)
	debug.Assert(ok, "dangling waiter guid", rn.Guid)
	if ok {
		w.NotifySatisfied(rn.Slot, data, rn.Mode)
	}
}

// Event is the common interface every kind satisfies (spec.md §4.2
// "Common operations"). RegisterWaiter/Destroy need no Resolver argument
// because Base already carries the one its owning PD installed at
// creation.
type Event interface {
	Waiter
	Guid() guid.Guid
	Kind() guid.Kind
	RegisterWaiter(waiter guid.Guid, slot uint32, isAddDep bool, mode guid.DbAccessMode) error
	Destroy() error
	Md() *mdClass
}
