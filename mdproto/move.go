package mdproto

import (
	"context"

	"github.com/cs20/ocr-sub000/guid"
)

type MoveIn struct {
	Kind    Kind
	Guid    guid.Guid
	Payload []byte // compressed metadata, see reduce.go
}

// Move relocates ownership of a guid's metadata to `dst`, compressing
// the payload before it crosses the wire (spec.md §4.7 "M_MOVE carries
// the full metadata, not just a pointer — the destination becomes the
// new authoritative owner"). dir distinguishes a plain lateral M_MOVE
// from the two directional shorthands the affinity hierarchy uses:
// M_UP (promote ownership toward a coarser-grained affinity group,
// typically the EDT's own creating PD reclaiming an object a child
// group produced) and M_DOWN (push ownership down to a more specific
// group, typically handing a freshly created object straight to the
// affinity group that will consume it) — both are M_MOVE with a
// direction tag rather than distinct wire operations.
func (p *Protocol) Move(ctx context.Context, g guid.Guid, payload []byte, dst guid.Location, dir Kind) error {
	packed, err := compress(payload)
	if err != nil {
		return err
	}
	msg := &guid.PolicyMsg{
		Opcode: guid.OpMetadataComm,
		Props:  guid.PropRequest,
		Src:    p.Loc,
		Dst:    dst,
		In:     MoveIn{Kind: dir, Guid: g, Payload: packed},
	}
	_, err = p.send(ctx, dst, msg)
	return err
}

func (p *Protocol) MoveUp(ctx context.Context, g guid.Guid, payload []byte, dst guid.Location) error {
	return p.Move(ctx, g, payload, dst, KindUp)
}

func (p *Protocol) MoveDown(ctx context.Context, g guid.Guid, payload []byte, dst guid.Location) error {
	return p.Move(ctx, g, payload, dst, KindDown)
}

// DecodeMovePayload reverses the compress call Move makes, for a
// METADATA_COMM receiver that needs the raw metadata bytes back out of a
// MoveIn.Payload before handing them to guid.Provider.RegisterGuid.
func DecodeMovePayload(payload []byte) ([]byte, error) {
	return decompress(payload)
}
