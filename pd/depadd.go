package pd

import (
	"github.com/cs20/ocr-sub000/guid"
	"github.com/cs20/ocr-sub000/internal/xerr"
)

// DepAddIn is the PD_MSG_DEP_ADD request (spec.md §4.5 "ocrAddDependence
// wires a signaler, whatever it is, to a target's slot"). The dispatch
// table below exists because the signaler and target can each
// independently be an event or an EDT, giving four legal (signaler,
// target) shapes that spec.md §4.5 enumerates individually rather than
// collapsing into one generic "register" call — generalizing it into a
// single map keyed by the pair, instead of four near-duplicate methods,
// is the idiomatic-Go reduction of that enumeration.
type DepAddIn struct {
	Signaler guid.Guid
	Target   guid.Guid
	Slot     uint32
	Mode     guid.DbAccessMode
}

type depAddKind int

const (
	depEventToEvent depAddKind = iota
	depEventToEdt
	depEdtToEvent // an EDT's own output feeds another event (rare: chained finish latches)
	depEdtToEdt   // unsupported: EDTs don't signal each other directly (spec.md §4.5 note)
)

func (p *PolicyDomain) classifyDepAdd(signaler, target guid.Guid) depAddKind {
	_, sigIsEvent := p.GetEvent(signaler)
	_, tgtIsEvent := p.GetEvent(target)
	switch {
	case sigIsEvent && tgtIsEvent:
		return depEventToEvent
	case sigIsEvent && !tgtIsEvent:
		return depEventToEdt
	case !sigIsEvent && tgtIsEvent:
		return depEdtToEvent
	default:
		return depEdtToEdt
	}
}

func (p *PolicyDomain) handleDepAdd(m *guid.PolicyMsg) *guid.PolicyMsg {
	in := m.In.(DepAddIn)

	// A NULL or datablock signaler is immediate data, not another
	// guid-addressable object with its own RegisterWaiter — spec.md §4.5
	// rows 1-2 convert this straight into a SATISFY on the target rather
	// than routing it through the event/EDT dispatch table below (which
	// only classifies event<->EDT pairs and would otherwise reject a
	// DB-into-EDT dependence as the unsupported EDT-to-EDT shape).
	if in.Signaler.IsNull() || in.Signaler.Kind() == guid.KindDb {
		p.Satisfy(in.Target, in.Slot, in.Signaler, in.Mode)
		return m.Reply(nil, int(xerr.OK))
	}

	switch p.classifyDepAdd(in.Signaler, in.Target) {
	case depEventToEvent:
		src, _ := p.GetEvent(in.Signaler)
		return m.Reply(nil, int(xerr.DetailOf(src.RegisterWaiter(in.Target, in.Slot, true, in.Mode))))

	case depEventToEdt:
		src, _ := p.GetEvent(in.Signaler)
		return m.Reply(nil, int(xerr.DetailOf(src.RegisterWaiter(in.Target, in.Slot, true, in.Mode))))

	case depEdtToEvent:
		// The signaler is an EDT: its only "signal" is completion, which
		// epilogue.go already delivers by calling env.Satisfy(Output, ...)
		// on the EDT's own declared output event. Wiring a second target
		// here means the EDT's output event itself gets an event->event
		// registration, so this degenerates to the same call as above
		// with the EDT's Output guid as the signaler.
		inst, ok := p.GetEdt(in.Signaler)
		if !ok || inst.Output.IsNull() {
			return m.Reply(nil, int(xerr.E_NOENT))
		}
		src, ok := p.GetEvent(inst.Output)
		if !ok {
			return m.Reply(nil, int(xerr.E_NOENT))
		}
		return m.Reply(nil, int(xerr.DetailOf(src.RegisterWaiter(in.Target, in.Slot, true, in.Mode))))

	default:
		return m.Reply(nil, int(xerr.E_NOTSUP))
	}
}
