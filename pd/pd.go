// Package pd implements C5: the policy domain (spec.md §3 "Policy
// Domain", §4.5 "processMessage router"). A PolicyDomain owns one
// guid.Provider, one dbs.Allocator, the live event/edt object tables
// keyed by guid, and is the Resolver/Env every event and edt.Instance
// calls back into. There is no teacher analogue for a policy domain;
// the worker-local current-env lookup is modeled on how the teacher's
// xactions reach back into their owning target (`xact/xs/tcb.go`'s
// receiver methods close over `*XactTCB`) rather than a global.
package pd

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/cs20/ocr-sub000/dbs"
	"github.com/cs20/ocr-sub000/deferred"
	"github.com/cs20/ocr-sub000/edt"
	"github.com/cs20/ocr-sub000/event"
	"github.com/cs20/ocr-sub000/guid"
	"github.com/cs20/ocr-sub000/hint"
	"github.com/cs20/ocr-sub000/internal/nlog"
	"github.com/cs20/ocr-sub000/internal/xerr"
	"github.com/cs20/ocr-sub000/mdproto"
)

// PolicyDomain is the C5 object: one per runlevel-booted location,
// holding every guid-addressable object that location owns. ProcessID is
// a human-debuggable identity for this running instance, independent of
// Loc (Loc is a small reused index; a PD restarted at the same Loc gets a
// fresh ProcessID), logged alongside guid-keyed state the way the
// teacher tags target-scoped log lines with a target ID.
type PolicyDomain struct {
	Loc       guid.Location
	ProcessID uuid.UUID
	Provider  guid.Provider
	Alloc     *dbs.Allocator
	Stats     *hint.Stats

	// MD is nil for a single-PD configuration (most tests, cmd/edtctl's
	// default run). Set it with AttachMdProtocol to turn on C7: satisfy
	// and destroy then push to every known peer, and GUID_METADATA_CLONE
	// requests from peers are served out of this PD's own object tables.
	MD *mdproto.Protocol

	mu        sync.RWMutex
	events    map[guid.Guid]event.Event
	edts      map[guid.Guid]*edt.Instance
	templates map[guid.Guid]*edt.Template
	extern    map[guid.Guid]event.Waiter // ad-hoc external waiters (e.g. a CLI's completion channel)
	deferred  *deferred.Chain

	workers WorkerPool
}

// WorkerPool is the external collaborator contract for running EDT
// bodies (spec.md §4.1 "scheduler/worker" is a pluggable collaborator).
// The worker package's reference pool implements this.
type WorkerPool interface {
	Submit(fn func())
}

func New(loc guid.Location, provider guid.Provider, workers WorkerPool, stats *hint.Stats) *PolicyDomain {
	p := &PolicyDomain{
		Loc:       loc,
		ProcessID: uuid.New(),
		Provider:  provider,
		Alloc:     dbs.NewAllocator(provider),
		Stats:     stats,
		events:    make(map[guid.Guid]event.Event),
		edts:      make(map[guid.Guid]*edt.Instance),
		templates: make(map[guid.Guid]*edt.Template),
		extern:    make(map[guid.Guid]event.Waiter),
		workers:   workers,
	}
	p.deferred = deferred.NewChain(p.Schedule)
	nlog.Infoln("pd: opened loc", loc, "process", p.ProcessID)
	return p
}

// Deferred returns the policy domain's deferred-call chain (C8), used by
// router handlers that need to schedule a subject-ordered follow-up call.
func (p *PolicyDomain) Deferred() *deferred.Chain { return p.deferred }

// AttachMdProtocol wires this policy domain into the distributed
// metadata protocol (C7, spec.md §4.7): every future Satisfy/destroy of a
// locally owned event is pushed to known peers, and router.go's
// METADATA_COMM/GUID_METADATA_CLONE cases become reachable. Call it once
// after New, before any cross-PD traffic is expected.
func (p *PolicyDomain) AttachMdProtocol(mp *mdproto.Protocol) { p.MD = mp }

// ResolveWaiter implements event.Resolver: an event's waiters are either
// other events (registered via DEP_REGWAITER event->event) or EDT
// instances (registered via DEP_ADD/DEP_REGWAITER event->edt).
func (p *PolicyDomain) ResolveWaiter(g guid.Guid) (event.Waiter, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if e, ok := p.events[g]; ok {
		return e, true
	}
	if i, ok := p.edts[g]; ok {
		return i, true
	}
	if w, ok := p.extern[g]; ok {
		return w, true
	}
	return nil, false
}

// PutWaiter registers an ad-hoc external Waiter under guid g, so it can
// be the target of a DEP_ADD/satisfy like any in-runtime object — used
// by callers outside the PD (a CLI run, an integration test) that want
// to observe a terminal event without creating a real EDT for it.
func (p *PolicyDomain) PutWaiter(g guid.Guid, w event.Waiter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.extern[g] = w
}

// edt.Env implementation -----------------------------------------------

func (p *PolicyDomain) AcquireDb(edtGuid, dbGuid guid.Guid, mode guid.DbAccessMode) ([]byte, error) {
	db, ok := p.Alloc.Lookup(dbGuid)
	if !ok {
		return nil, xerr.New("pd.AcquireDb", xerr.E_NOENT)
	}
	return db.Acquire(edtGuid, mode)
}

func (p *PolicyDomain) ReleaseDb(edtGuid, dbGuid guid.Guid) {
	if db, ok := p.Alloc.Lookup(dbGuid); ok {
		db.Release(edtGuid)
	}
}

// ParkAcquire implements edt.Env: park edtGuid on dbGuid until some
// holder releases it, at which point redrive is invoked (on whatever
// goroutine called Release) to retry acquisition from scratch.
func (p *PolicyDomain) ParkAcquire(edtGuid, dbGuid guid.Guid, mode guid.DbAccessMode, redrive func()) {
	db, ok := p.Alloc.Lookup(dbGuid)
	if !ok {
		nlog.Warningln("pd.ParkAcquire: unknown datablock guid", dbGuid)
		return
	}
	db.Park(edtGuid, mode, redrive)
}

// Satisfy is the local-caller entry point: no peer sent this, so there is
// no "received from" location to exclude from the M_SAT push.
func (p *PolicyDomain) Satisfy(target guid.Guid, slot uint32, data guid.Guid, mode guid.DbAccessMode) {
	p.satisfy(target, slot, data, mode, 0, false)
}

// satisfy is Satisfy's internal form, also used by the METADATA_COMM
// M_SAT receiver (pd/mdcomm.go) which does have a from/haveFrom to
// exclude so a multi-hop push never echoes straight back to the peer
// that sent it (spec.md §4.7 anti-echo rule).
func (p *PolicyDomain) satisfy(target guid.Guid, slot uint32, data guid.Guid, mode guid.DbAccessMode, from guid.Location, haveFrom bool) {
	w, ok := p.ResolveWaiter(target)
	if !ok {
		nlog.Warningln("pd.Satisfy: unknown target guid", target)
		return
	}
	w.NotifySatisfied(slot, data, mode)

	if p.MD == nil {
		return
	}
	if e, ok := w.(event.Event); ok {
		p.MD.PushSatisfy(context.Background(), e.Md(), target, slot, data, mode, from, haveFrom)
	}
}

func (p *PolicyDomain) ReleaseGuid(g guid.Guid) {
	p.mu.Lock()
	delete(p.edts, g)
	delete(p.events, g)
	p.mu.Unlock()
	p.deferred.Forget(g)
	_ = p.Provider.ReleaseGuid(g, true)
}

func (p *PolicyDomain) Schedule(fn func()) { p.workers.Submit(fn) }

// Object registration -----------------------------------------------

func (p *PolicyDomain) PutEvent(e event.Event) {
	p.mu.Lock()
	p.events[e.Guid()] = e
	p.mu.Unlock()
}

func (p *PolicyDomain) PutEdt(i *edt.Instance) {
	p.mu.Lock()
	p.edts[i.Guid] = i
	p.mu.Unlock()
}

func (p *PolicyDomain) PutTemplate(t *edt.Template) {
	p.mu.Lock()
	p.templates[t.Guid] = t
	p.mu.Unlock()
}

func (p *PolicyDomain) GetTemplate(g guid.Guid) (*edt.Template, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	t, ok := p.templates[g]
	return t, ok
}

func (p *PolicyDomain) GetEvent(g guid.Guid) (event.Event, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.events[g]
	return e, ok
}

func (p *PolicyDomain) GetEdt(g guid.Guid) (*edt.Instance, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	i, ok := p.edts[g]
	return i, ok
}
