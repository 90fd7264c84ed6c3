package finish

import "github.com/cs20/ocr-sub000/guid"

// RemoteSink is the contract a distributed binding implements to forward
// a finish-scope's child-count deltas to the policy domain
// that actually owns the parent scope's latch (spec.md §4.4 "a finish
// scope created by a remote EDT registers a proxy latch locally and
// forwards INCR/DECR to the owning location over M_SAT"). Kept as an
// interface here so finish does not import mdproto/transport. mdproto
// does not implement it; a ParentProxy uses whatever sink its caller
// supplies.
type RemoteSink interface {
	IncrRemote(parent guid.Guid, parentLoc guid.Location) error
	DecrRemote(parent guid.Guid, parentLoc guid.Location) error
}

// ParentProxy stands in locally for a finish scope's parent when that
// parent is owned by a different policy domain: every AddChild/ChildDone
// against the local scope is mirrored as one INCR/DECR against the real
// parent latch over the distributed protocol, instead of silently being
// local-only (which would let the parent finish while remote children
// are still outstanding).
type ParentProxy struct {
	ParentGuid guid.Guid
	ParentLoc  guid.Location
	Sink       RemoteSink
}

func NewParentProxy(parentGuid guid.Guid, parentLoc guid.Location, sink RemoteSink) *ParentProxy {
	return &ParentProxy{ParentGuid: parentGuid, ParentLoc: parentLoc, Sink: sink}
}

func (p *ParentProxy) NotifyChildAdded() {
	if err := p.Sink.IncrRemote(p.ParentGuid, p.ParentLoc); err != nil {
		// spec.md leaves transient forwarding failure unspecified; no
		// retry happens here, so a returned error leaves the scope tree
		// in an unrecoverable state for this child.
		panic(err)
	}
}

func (p *ParentProxy) NotifyChildDone() {
	if err := p.Sink.DecrRemote(p.ParentGuid, p.ParentLoc); err != nil {
		panic(err)
	}
}
