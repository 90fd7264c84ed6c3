package edt

import (
	"sort"

	"github.com/cs20/ocr-sub000/guid"
)

// FrontierSlot is one dependence slot of an EDT instance: it starts
// unresolved and is filled in by exactly one NotifySatisfied call
// (spec.md §3 "frontier: sorted signaler vector").
type FrontierSlot struct {
	Resolved bool
	Guid     guid.Guid
	Mode     guid.DbAccessMode
	IsEvent  bool // true when this slot's signaler was a pure event dependence (no DB to acquire/release)
}

// Frontier tracks the dependence slots of one EDT instance. Resolution
// order is whatever order the signalers fire in (spec.md explicitly
// does not require program order), so slots are addressed by index and
// the frontier only needs to track "how many are left", not an ordered
// queue — Sorted presents the set ordered by guid (deterministic acquire
// ordering to avoid lock-order deadlock across EDTs sharing datablocks).
type Frontier struct {
	slots []FrontierSlot
	left  int
}

func NewFrontier(depc int) *Frontier {
	return &Frontier{slots: make([]FrontierSlot, depc), left: depc}
}

func (f *Frontier) Len() int { return len(f.slots) }

// Resolve fills slot `i` and returns true once that was the last
// outstanding slot (the EDT has reached ALLDEPS).
func (f *Frontier) Resolve(i int, g guid.Guid, mode guid.DbAccessMode, isEvent bool) bool {
	if f.slots[i].Resolved {
		return false // duplicate satisfy on a slot: ignored, logged by the caller
	}
	f.slots[i] = FrontierSlot{Resolved: true, Guid: g, Mode: mode, IsEvent: isEvent}
	f.left--
	return f.left == 0
}

func (f *Frontier) AllResolved() bool { return f.left == 0 }

// Sorted returns a copy of the slots in ascending guid order (stable, so
// slots with equal guids keep their slot-index order), used
// by acquire.go to pick a deterministic lock order across an instance's
// datablock acquisitions.
func (f *Frontier) Sorted() []FrontierSlot {
	out := make([]FrontierSlot, len(f.slots))
	copy(out, f.slots)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Guid < out[j].Guid
	})
	return out
}

func (f *Frontier) Slots() []FrontierSlot { return f.slots }
