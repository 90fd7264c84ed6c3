package mdproto

import (
	"context"

	"github.com/cs20/ocr-sub000/guid"
)

// Kind distinguishes the mdproto sub-operations that share
// guid.OpMetadataComm as their wire opcode (M_REG, M_SAT, M_DEL, M_MOVE,
// M_UP, M_DOWN) — only M_CLONE gets its own guid.Opcode
// (OpGuidMetadataClone), because it alone has a request/response shape
// distinct enough to need its own PD_MSG in the original layout
// (spec.md §4.7); the rest are one-way pushes that differ only in
// payload.
type Kind int

const (
	KindReg Kind = iota
	KindSat
	KindDel
	KindMove
	KindUp
	KindDown
)

type RegIn struct {
	Kind Kind
	Guid guid.Guid
}

// pushReg announces to `owner` that this location now holds a copy of
// guid g (spec.md §4.7 "M_REG: register as a peer of the object's
// owner"). Fire-and-forget from the caller's perspective: PullClone
// does not block its own completion on this succeeding.
func (p *Protocol) pushReg(ctx context.Context, g guid.Guid, owner guid.Location) {
	msg := &guid.PolicyMsg{
		Opcode: guid.OpMetadataComm,
		Props:  guid.PropRequest,
		Src:    p.Loc,
		Dst:    owner,
		In:     RegIn{Kind: KindReg, Guid: g},
	}
	go func() { _, _ = p.send(ctx, owner, msg) }()
}
