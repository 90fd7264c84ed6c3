// Package dbs implements the datablock (DB) side of C1/C3: the
// guid-addressable byte buffers EDTs acquire for read/write access
// (spec.md §3 "Datablock", §4.3 "Acquire pipeline"). There is no teacher
// analogue for a dataflow datablock; the allocator style (slab-backed,
// size-classed free lists) is adapted from aistore's own memory-pool
// posture (`memsys` package referenced by `xact/xs/tcb.go`'s DataMover
// usage), generalized here to arbitrary EDT-requested sizes.
package dbs

import (
	"sync"

	"github.com/cs20/ocr-sub000/guid"
	"github.com/cs20/ocr-sub000/internal/debug"
	"github.com/cs20/ocr-sub000/internal/xerr"
)

// DataBlock is the runtime metadata OCR's PD_MSG_DB_CREATE/PD_MSG_DB_ACQUIRE
// handlers operate on (spec.md §3 "Datablock: guid, size, ptr, flags").
type DataBlock struct {
	Guid guid.Guid
	Size uint64

	mu        sync.Mutex
	data      []byte
	acquired  map[guid.Guid]guid.DbAccessMode // edt guid -> mode currently holding it
	destroyed bool
	pending   []pendingAcquire
}

// pendingAcquire is an EDT parked on a busy block (spec.md §4.3 "pending
// acquisition"): redrive is called once some holder releases, letting the
// caller (edt.Instance.beginAcquire) retry the acquire from scratch rather
// than this package trying to hand off ownership directly.
type pendingAcquire struct {
	edt    guid.Guid
	mode   guid.DbAccessMode
	redrive func()
}

func NewDataBlock(g guid.Guid, size uint64) *DataBlock {
	return &DataBlock{
		Guid:     g,
		Size:     size,
		data:     make([]byte, size),
		acquired: make(map[guid.Guid]guid.DbAccessMode),
	}
}

// Acquire grants edt `mode` access to the block (spec.md §4.3 "multiple RO
// acquirers may hold a block concurrently; RW/EW is exclusive"). Returns
// E_BUSY if the requested mode conflicts with an existing holder.
func (d *DataBlock) Acquire(edt guid.Guid, mode guid.DbAccessMode) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return nil, xerr.New("dbs.Acquire", xerr.E_INVAL)
	}
	if len(d.acquired) > 0 {
		exclusive := mode == guid.ModeRW || mode == guid.ModeEW
		for _, m := range d.acquired {
			if exclusive || m == guid.ModeRW || m == guid.ModeEW {
				return nil, xerr.New("dbs.Acquire", xerr.E_BUSY)
			}
		}
	}
	d.acquired[edt] = mode
	return d.data, nil
}

// Release drops edt's hold. A RW/EW release is the point at which the
// epilogue (edt/epilogue.go) may satisfy downstream waiters; it is also
// the point at which anything parked on this block via Park gets a
// chance to retry.
func (d *DataBlock) Release(edt guid.Guid) {
	d.mu.Lock()
	delete(d.acquired, edt)
	parked := d.pending
	d.pending = nil
	d.mu.Unlock()
	for _, p := range parked {
		p.redrive()
	}
}

// Park registers edt as waiting for mode access, to be retried via
// redrive the next time any holder releases. Acquire conflicts are
// re-checked from scratch on retry, so a released block with several
// parked exclusive acquirers grants at most one per Release call and
// re-parks the rest.
func (d *DataBlock) Park(edt guid.Guid, mode guid.DbAccessMode, redrive func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = append(d.pending, pendingAcquire{edt: edt, mode: mode, redrive: redrive})
}

func (d *DataBlock) HolderCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.acquired)
}

func (d *DataBlock) Free() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	debug.Assert(len(d.acquired) == 0, "freeing a datablock with live acquirers", d.Guid)
	if d.destroyed {
		return xerr.New("dbs.Free", xerr.E_INVAL)
	}
	d.destroyed = true
	d.data = nil
	return nil
}
