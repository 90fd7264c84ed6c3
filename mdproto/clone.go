package mdproto

import (
	"context"

	"github.com/cs20/ocr-sub000/guid"
)

// CloneIn/CloneOut are the M_CLONE request/response (spec.md §4.7 "a
// location that misses locally pulls a copy of an object's metadata
// from its owner"), carried over guid.OpGuidMetadataClone.
type CloneIn struct {
	Guid guid.Guid
}
type CloneOut struct {
	Payload []byte // compressed metadata blob, see reduce.go
}

var _ guid.ClonePuller = (*Protocol)(nil)

// PullClone implements guid.ClonePuller: LocalProvider.drivePull calls
// this when GetVal misses locally and the guid is remote-owned.
func (p *Protocol) PullClone(ctx context.Context, g guid.Guid, from guid.Location) (any, error) {
	req := &guid.PolicyMsg{
		Opcode: guid.OpGuidMetadataClone,
		Props:  guid.PropRequest,
		Src:    p.Loc,
		Dst:    from,
		In:     CloneIn{Guid: g},
	}
	reply, err := p.send(ctx, from, req)
	if err != nil {
		return nil, err
	}
	out, _ := reply.Out.(CloneOut)
	snap, err := DecodeSnapshot(out.Payload)
	if err != nil {
		return nil, err
	}

	if err := p.Provider.RegisterGuid(g, snap); err != nil {
		return nil, err
	}
	// Having cloned the object, tell its owner we now hold a copy so
	// future M_SAT/M_DEL pushes reach us (spec.md §4.7 "a successful
	// M_CLONE is followed by an M_REG to the owner").
	p.pushReg(ctx, g, from)
	return snap, nil
}
