package pd

import (
	"context"

	"github.com/cs20/ocr-sub000/event"
	"github.com/cs20/ocr-sub000/guid"
	"github.com/cs20/ocr-sub000/internal/xerr"
	"github.com/cs20/ocr-sub000/mdproto"
)

// handleMetadataComm is the C7 receiver for every one-way push mdproto
// sends under guid.OpMetadataComm (spec.md §4.7 M_REG/M_SAT/M_DEL/M_MOVE
// all share this opcode and differ only by the concrete In type).
func (p *PolicyDomain) handleMetadataComm(m *guid.PolicyMsg) *guid.PolicyMsg {
	switch in := m.In.(type) {
	case mdproto.RegIn:
		e, ok := p.GetEvent(in.Guid)
		if !ok {
			return m.Reply(nil, int(xerr.E_NOENT))
		}
		e.Md().AddPeer(m.Src)
		return m.Reply(nil, int(xerr.OK))

	case mdproto.SatIn:
		p.satisfy(in.Evt, in.Slot, in.Data, in.Mode, m.Src, true)
		return m.Reply(nil, int(xerr.OK))

	case mdproto.DelIn:
		e, ok := p.GetEvent(in.Guid)
		if !ok {
			// Already gone locally (e.g. a duplicate or racing M_DEL) -
			// nothing left to tear down.
			return m.Reply(nil, int(xerr.OK))
		}
		_ = e.Destroy()
		p.ReleaseGuid(in.Guid)
		return m.Reply(nil, int(xerr.OK))

	case mdproto.MoveIn:
		payload, err := mdproto.DecodeMovePayload(in.Payload)
		if err != nil {
			return m.Reply(nil, int(xerr.E_FAULT))
		}
		if err := p.Provider.RegisterGuid(in.Guid, payload); err != nil {
			return m.Reply(nil, int(xerr.DetailOf(err)))
		}
		return m.Reply(nil, int(xerr.OK))

	default:
		return m.Reply(nil, int(xerr.E_NOTSUP))
	}
}

// handleGuidMetadataClone serves an M_CLONE pull from a peer whose
// guid.Provider missed locally: snapshot whichever event we own under
// this guid and ship it back compressed (spec.md §4.7).
func (p *PolicyDomain) handleGuidMetadataClone(m *guid.PolicyMsg) *guid.PolicyMsg {
	in := m.In.(mdproto.CloneIn)
	e, ok := p.GetEvent(in.Guid)
	if !ok {
		return m.Reply(nil, int(xerr.E_NOENT))
	}
	blob, err := mdproto.EncodeSnapshot(event.SnapshotOf(e))
	if err != nil {
		return m.Reply(nil, int(xerr.E_FAULT))
	}
	return m.Reply(mdproto.CloneOut{Payload: blob}, int(xerr.OK))
}

// pushDestroy announces in.Guid's destruction to every known peer of e,
// called from handleEvtDestroy right before the guid itself is released
// locally (spec.md §4.7 "M_DEL").
func (p *PolicyDomain) pushDestroy(g guid.Guid, e event.Event) {
	if p.MD == nil {
		return
	}
	peers := e.Md().Peers()
	if len(peers) == 0 {
		return
	}
	p.MD.PushDel(context.Background(), g, peers)
}
