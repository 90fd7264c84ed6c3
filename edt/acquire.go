package edt

import "github.com/cs20/ocr-sub000/guid"

// beginAcquire drives the ALLDEPS -> ALLACQ transition: acquire every
// datablock dependence in ascending-guid order (Frontier.Sorted) to keep
// a consistent lock order across instances that share datablocks, which
// is how spec.md §4.3 avoids acquire-time deadlock without a central
// arbiter. A slot whose signaler was a pure event (no datablock behind
// it) is recorded with a nil Ptr and skipped in the acquire loop.
func (i *Instance) beginAcquire() {
	sorted := i.frontier.Sorted()
	acquiredSoFar := sorted[:0:0] // slots actually acquired this attempt, for rollback on conflict
	for _, slot := range sorted {
		idx := i.slotIndexFor(slot.Guid)
		if slot.IsEvent {
			i.dbv[idx] = DepItem{Guid: slot.Guid, Mode: slot.Mode}
			continue
		}
		ptr, err := i.env.AcquireDb(i.Guid, slot.Guid, slot.Mode)
		if err != nil {
			// spec.md §4.3 "pending acquisition": a busy datablock defers
			// the whole EDT rather than partially acquiring. Release what
			// this attempt already picked up, park on the block that was
			// busy, and let the park's redrive callback re-run this whole
			// method from scratch once some holder releases.
			for _, held := range acquiredSoFar {
				i.env.ReleaseDb(i.Guid, held.Guid)
			}
			i.env.ParkAcquire(i.Guid, slot.Guid, slot.Mode, i.beginAcquire)
			return
		}
		i.dbv[idx] = DepItem{Guid: slot.Guid, Ptr: ptr, Mode: slot.Mode}
		acquiredSoFar = append(acquiredSoFar, slot)
	}
	i.setState(StateAllAcq)
	i.env.Schedule(i.run)
}

// slotIndexFor maps a resolved guid back to its declared slot index.
// Frontier.Sorted() reorders by guid for deterministic acquisition, so
// the result has to be matched back to the original slot position that
// Template.Fn expects depv to be indexed by.
func (i *Instance) slotIndexFor(g guid.Guid) int {
	for idx, s := range i.frontier.Slots() {
		if s.Resolved && s.Guid == g {
			return idx
		}
	}
	return -1
}
