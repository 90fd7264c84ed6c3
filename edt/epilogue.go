package edt

import "github.com/cs20/ocr-sub000/guid"

// epilogue implements the release/satisfy protocol of spec.md §4.3:
// release every acquired datablock (in dependence-slot order, which is
// not necessarily the guid order they were acquired in), then one of
// three cases depending on this instance's relation
// to a finish scope:
//
//   - (a) a local finish latch was opened (PropFinish): decrement it.
//     This cascades to the parent scope and the output event once every
//     child added under it has also finished - not necessarily now.
//   - (b) no own latch, but a parent latch exists locally: decrement it
//     AND satisfy the output event directly with this EDT's own return
//     guid.
//   - (c) neither: satisfy the output event directly.
//
// Finally free the EDT's own guid and enter REAPING.
func (i *Instance) epilogue(out guid.Guid) {
	for _, d := range i.dbv {
		if d.Ptr != nil {
			i.env.ReleaseDb(i.Guid, d.Guid)
		}
	}

	switch {
	case i.finishScope != nil:
		i.finishScope.Close(out)
	case i.parentFinish != nil:
		i.parentFinish.ChildDone()
		if !i.Output.IsNull() {
			i.env.Satisfy(i.Output, 0, out, guid.ModeRO)
		}
	default:
		if !i.Output.IsNull() {
			i.env.Satisfy(i.Output, 0, out, guid.ModeRO)
		}
	}

	i.setState(StateReaping)
	i.env.ReleaseGuid(i.Guid)
}
