package mdproto

import (
	"context"

	"github.com/cs20/ocr-sub000/guid"
)

type DelIn struct {
	Kind Kind
	Guid guid.Guid
}

// PushDel announces destruction of a guid to every known peer (spec.md
// §4.7 "M_DEL"), so a peer holding a stale proxy for it releases the
// cached copy instead of serving it forever.
func (p *Protocol) PushDel(ctx context.Context, g guid.Guid, peers []guid.Location) {
	for _, peer := range peers {
		msg := &guid.PolicyMsg{
			Opcode: guid.OpMetadataComm,
			Props:  guid.PropRequest,
			Src:    p.Loc,
			Dst:    peer,
			In:     DelIn{Kind: KindDel, Guid: g},
		}
		go func(dst guid.Location) { _, _ = p.send(ctx, dst, msg) }(peer)
	}
}
