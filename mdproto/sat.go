package mdproto

import (
	"context"

	"github.com/cs20/ocr-sub000/guid"
)

type SatIn struct {
	Kind Kind
	Evt  guid.Guid
	Slot uint32
	Data guid.Guid
	Mode guid.DbAccessMode
}

// PushSatisfy forwards a local satisfy to every peer that holds a copy
// of the event, except the peer it arrived from (spec.md §4.7 "the
// receiver never forwards to the location it received from" — the
// anti-echo rule event.mdClass.PeersExcept encodes).
func (p *Protocol) PushSatisfy(ctx context.Context, md interface{ PeersExcept(guid.Location, bool) []guid.Location }, evt guid.Guid, slot uint32, data guid.Guid, mode guid.DbAccessMode, receivedFrom guid.Location, haveFrom bool) {
	for _, peer := range md.PeersExcept(receivedFrom, haveFrom) {
		msg := &guid.PolicyMsg{
			Opcode: guid.OpMetadataComm,
			Props:  guid.PropRequest,
			Src:    p.Loc,
			Dst:    peer,
			In:     SatIn{Kind: KindSat, Evt: evt, Slot: slot, Data: data, Mode: mode},
		}
		go func(dst guid.Location) { _, _ = p.send(ctx, dst, msg) }(peer)
	}
}
