package event

import (
	"github.com/cs20/ocr-sub000/guid"
)

// Snapshot is the wire-safe projection of an event that mdproto clones
// across locations (spec.md §4.7 "M_CLONE clones metadata, not
// behaviour"): just enough state for a remote peer to observe whether
// the event already fired and with what data. The waiters table, mutex,
// and mdClass peer list never cross the wire — satisfy/registerWaiter
// decisions for an event always stay with its owning PD; a remote holder
// only ever has a read-only proxy view.
type Snapshot struct {
	Kind    guid.Kind
	Data    guid.Guid
	DataSet bool
	Counter int64 // Latch's remaining count; zero for every other kind
}

// SnapshotOf captures the observable state of any Event kind mdproto
// knows how to clone. Kinds with no settled single datum (Once, Channel,
// Collective) still snapshot cleanly; DataSet just stays false.
func SnapshotOf(e Event) Snapshot {
	snap := Snapshot{Kind: e.Kind()}
	switch v := e.(type) {
	case *Sticky:
		snap.Data, snap.DataSet = v.Data()
	case *Idempotent:
		snap.Data, snap.DataSet = v.Data()
	case *Counted:
		snap.Data, snap.DataSet = v.Data()
	case *Latch:
		snap.Counter = v.Counter()
	}
	return snap
}
