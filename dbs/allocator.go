package dbs

import (
	"sync"

	"github.com/cs20/ocr-sub000/guid"
	"github.com/cs20/ocr-sub000/internal/xerr"
)

// sizeClasses mirrors a typical slab allocator's power-of-two buckets
// (4KB .. 4MB); a request larger than the top class is served directly
// rather than rounded, matching a "large object" escape path.
var sizeClasses = []uint64{4 << 10, 16 << 10, 64 << 10, 256 << 10, 1 << 20, 4 << 20}

func classFor(size uint64) uint64 {
	for _, c := range sizeClasses {
		if size <= c {
			return c
		}
	}
	return size
}

// Allocator is the memory-target collaborator spec.md §4.1 treats as
// external: PD_MSG_MEM_ALLOC/PD_MSG_MEM_UNALLOC route here. It keeps a
// free list per size class and allocates fresh slabs on exhaustion,
// rather than returning memory to the OS eagerly — the same posture as
// a pooled-buffer allocator, generalized from byte-slice pools to
// guid-addressed DataBlocks.
type Allocator struct {
	mu       sync.Mutex
	free     map[uint64][]*DataBlock
	blocks   map[guid.Guid]*DataBlock
	provider guid.Provider
}

func NewAllocator(provider guid.Provider) *Allocator {
	return &Allocator{
		free:     make(map[uint64][]*DataBlock),
		blocks:   make(map[guid.Guid]*DataBlock),
		provider: provider,
	}
}

// Create services PD_MSG_DB_CREATE: obtain a guid, pull a block from the
// matching free-list class (or allocate fresh), and register it.
func (a *Allocator) Create(loc guid.Location, size uint64) (*DataBlock, error) {
	fg, err := a.provider.CreateGuid(guid.KindDb, int(size), loc)
	if err != nil {
		return nil, xerr.Wrap("dbs.Create", xerr.E_NOMEM, err)
	}

	cls := classFor(size)
	a.mu.Lock()
	var db *DataBlock
	if bucket := a.free[cls]; len(bucket) > 0 {
		db = bucket[len(bucket)-1]
		a.free[cls] = bucket[:len(bucket)-1]
		db.Guid = fg.Guid
		db.Size = size
		db.mu.Lock()
		db.data = make([]byte, size)
		db.destroyed = false
		db.mu.Unlock()
	} else {
		db = NewDataBlock(fg.Guid, size)
	}
	a.blocks[fg.Guid] = db
	a.mu.Unlock()

	if err := a.provider.RegisterGuid(fg.Guid, db); err != nil {
		return nil, err
	}
	return db, nil
}

func (a *Allocator) Lookup(g guid.Guid) (*DataBlock, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	db, ok := a.blocks[g]
	return db, ok
}

// Destroy services PD_MSG_DB_FREE: free the block's payload and return
// its shell to the matching free-list class for reuse.
func (a *Allocator) Destroy(g guid.Guid) error {
	a.mu.Lock()
	db, ok := a.blocks[g]
	if !ok {
		a.mu.Unlock()
		return xerr.New("dbs.Destroy", xerr.E_NOENT)
	}
	delete(a.blocks, g)
	a.mu.Unlock()

	if err := db.Free(); err != nil {
		return err
	}
	cls := classFor(db.Size)
	a.mu.Lock()
	a.free[cls] = append(a.free[cls], db)
	a.mu.Unlock()
	return a.provider.ReleaseGuid(g, true)
}
