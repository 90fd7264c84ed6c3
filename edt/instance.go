package edt

import (
	"context"

	"github.com/cs20/ocr-sub000/guid"
	"github.com/cs20/ocr-sub000/internal/atomic"
	"github.com/cs20/ocr-sub000/internal/debug"
	"github.com/cs20/ocr-sub000/internal/nlog"
)

// State is the EDT instance lifecycle (spec.md §4.3 "Lifecycle"):
// CREATED -> ALLDEPS (every dependence slot resolved) -> ALLACQ (every
// datablock successfully acquired) -> RUNNING -> REAPING (output
// satisfied, datablocks released, guid freed). RESCHED is an
// experimental extension (SPEC_FULL.md §D.4): an EDT whose body returns
// the sentinel reschedule error enters RESCHED and its body is handed to
// the worker pool again instead of reaping, without re-running acquisition.
type State int32

const (
	StateCreated State = iota
	StateAllDeps
	StateAllAcq
	StateRunning
	StateResched
	StateReaping
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "CREATED"
	case StateAllDeps:
		return "ALLDEPS"
	case StateAllAcq:
		return "ALLACQ"
	case StateRunning:
		return "RUNNING"
	case StateResched:
		return "RESCHED"
	case StateReaping:
		return "REAPING"
	default:
		return "UNKNOWN"
	}
}

// ErrReschedule is returned by an EDT body to request StateResched
// instead of normal completion (SPEC_FULL.md §D.4).
var ErrReschedule = &rescheduleSentinel{}

type rescheduleSentinel struct{}

func (*rescheduleSentinel) Error() string { return "edt: reschedule requested" }

// Env is the PD-side collaborator contract an instance needs to drive
// itself through acquisition and execution without edt importing pd
// (spec.md §4.1 treats the policy domain as the external driver of an
// EDT's lifecycle transitions).
type Env interface {
	AcquireDb(edt guid.Guid, db guid.Guid, mode guid.DbAccessMode) ([]byte, error)
	ReleaseDb(edt guid.Guid, db guid.Guid)
	ParkAcquire(edt guid.Guid, db guid.Guid, mode guid.DbAccessMode, redrive func())
	Satisfy(target guid.Guid, slot uint32, data guid.Guid, mode guid.DbAccessMode)
	ReleaseGuid(g guid.Guid)
	Schedule(fn func())
	// OpenFinishScope implements spec.md §4.4 "A FINISH property on
	// creation defers latch construction to the execute-prologue so the
	// latch is co-located with the EDT body": called once, lazily, the
	// first time an EDT created with EDT_PROP_FINISH actually runs.
	// parent is the scope (if any) this EDT was itself created under,
	// so the new scope's eventual close can cascade to it.
	OpenFinishScope(edtGuid guid.Guid, output guid.Guid, parent FinishHandle) FinishHandle
}

// CreateOpts bundles NewInstance's less-common parameters (spec.md §4.4
// finish-scope wiring) so call sites that don't use them aren't forced
// to spell out a string of zero values.
type CreateOpts struct {
	// Ctx seeds the ctx an instance's body sees on every run (defaults
	// to context.Background() if nil); ocr.EdtCreate plumbs the
	// caller's own ctx through here.
	Ctx context.Context
	// PropFinish is EDT_PROP_FINISH: open a new finish scope in this
	// instance's own execute-prologue.
	PropFinish bool
	// ParentFinish is the finish scope this instance was created under,
	// if any (spec.md §4.4 "children pre-increment the latch at
	// creation" - the creator already called AddChild on it).
	ParentFinish FinishHandle
}

// Instance is one ocrEdtCreate()'d task (spec.md §3 "EDT instance").
type Instance struct {
	Guid     guid.Guid
	Template *Template
	ParamV   []uint64
	Output   guid.Guid // output event guid, or guid.NullGuid if EDT_PARAM_UNK/no output

	ctx          context.Context
	propFinish   bool
	parentFinish FinishHandle
	finishScope  FinishHandle // this instance's own scope, opened lazily in run()'s prologue

	frontier *Frontier
	env      Env

	state   atomic.Int32
	dbv     []DepItem // acquired dependences, indexed by slot, populated by acquire.go
}

func NewInstance(g guid.Guid, tmpl *Template, paramv []uint64, output guid.Guid, depc int, env Env, opts CreateOpts) *Instance {
	ctx := opts.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return &Instance{
		Guid:         g,
		Template:     tmpl,
		ParamV:       paramv,
		Output:       output,
		ctx:          ctx,
		propFinish:   opts.PropFinish,
		parentFinish: opts.ParentFinish,
		frontier:     NewFrontier(depc),
		env:          env,
		dbv:          make([]DepItem, depc),
	}
}

// ambientFinishScope is the scope a child created while this instance's
// body is running should be counted under: the instance's own scope if
// it opened one, else whatever scope it was itself created under.
func (i *Instance) ambientFinishScope() FinishHandle {
	if i.finishScope != nil {
		return i.finishScope
	}
	return i.parentFinish
}

func (i *Instance) State() State { return State(i.state.Load()) }

func (i *Instance) setState(s State) {
	nlog.Infof("edt %s: %s -> %s", i.Guid, i.State(), s)
	i.state.Store(int32(s))
}

// NotifySatisfied implements event.Waiter: a signaler for dependence
// slot `slot` has fired. Once every slot is resolved the instance
// advances to ALLDEPS and kicks off acquisition.
func (i *Instance) NotifySatisfied(slot uint32, data guid.Guid, mode guid.DbAccessMode) {
	if i.frontier.Len() == 0 {
		// Zero-dependence EDT: handleWorkCreate's synthetic kick-off call
		// has no real slot to resolve against, since there is no signaler.
		i.setState(StateAllDeps)
		i.beginAcquire()
		return
	}
	debug.Assert(int(slot) < i.frontier.Len(), "edt dependence slot out of range", i.Guid, slot)
	isEvent := data.Kind().IsEvent() || data.IsNull()
	allDone := i.frontier.Resolve(int(slot), data, mode, isEvent)
	if !allDone {
		return
	}
	i.setState(StateAllDeps)
	i.beginAcquire()
}
