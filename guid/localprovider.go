package guid

import (
	"context"
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/OneOfOne/xxhash"

	"github.com/cs20/ocr-sub000/internal/debug"
	"github.com/cs20/ocr-sub000/internal/xerr"
)

// LocalProvider is the reference Provider (spec.md §4.1 is explicit that
// the GUID provider is a non-goal of the core; this implementation exists
// so the end-to-end scenarios of spec.md §8 have something to run
// against). It allocates sequential guids for ordinary creation and
// xxhash-hashed guids for labelled creation (spec.md SPEC_FULL.md §D.3
// "labelled GUID creation race"), with a proxy-entry cache for guids
// observed but not yet resolved (spec.md §4.1 "A proxy entry exists for
// every remote GUID observed locally").
type LocalProvider struct {
	loc Location

	mu      sync.Mutex
	ptrs    map[Guid]any
	proxies map[Guid]*proxyEntry
	nextIdx uint64

	puller ClonePuller
}

type proxyEntry struct {
	mu       sync.Mutex
	resolved bool
	ptr      any
	waiters  []chan struct{}
}

func NewLocalProvider(loc Location, puller ClonePuller) *LocalProvider {
	return &LocalProvider{
		loc:     loc,
		ptrs:    make(map[Guid]any),
		proxies: make(map[Guid]*proxyEntry),
		puller:  puller,
	}
}

func (p *LocalProvider) CreateGuid(kind Kind, _ int, loc Location) (FatGuid, error) {
	idx := atomic.AddUint64(&p.nextIdx, 1)
	g := Make(kind, loc, idx)
	return FatGuid{Guid: g}, nil
}

// hashLabel implements the "hashed/labeled ID allocation" phrase of
// spec.md §4.1: a labelled guid is derived deterministically from the
// label so every PD independently computes the same guid for the same
// label, and the race is resolved by whoever installs it into `ptrs`
// first (see CreateLabeled).
func hashLabel(label string) uint64 {
	h := xxhash.New64()
	_, _ = h.Write([]byte(label))
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum) & idxMask
}

// CreateLabeled implements the labelled-creation race shared by
// PD_MSG_GUID_CREATE{GUID_PROP_IS_LABELED} (original_source hc-policy.c)
// and collective-event creation (spec.md §4.2 "every local caller races a
// CAS on the GUID-provider proxy, the winner allocates..."). The first
// caller to reach this for a given label wins and installs ptr; every
// later caller (on this PD or, via MD push in mdproto, on a remote PD)
// receives xerr.E_GUID_EXISTS with the canonical guid already populated.
func (p *LocalProvider) CreateLabeled(kind Kind, loc Location, label string, makePtr func() any) (FatGuid, error) {
	g := Make(kind, loc, hashLabel(label))
	p.mu.Lock()
	if existing, ok := p.ptrs[g]; ok {
		p.mu.Unlock()
		return FatGuid{Guid: g, Ptr: existing}, xerr.New("CreateLabeled", xerr.E_GUID_EXISTS)
	}
	ptr := makePtr()
	p.ptrs[g] = ptr
	p.mu.Unlock()
	return FatGuid{Guid: g, Ptr: ptr}, nil
}

func (p *LocalProvider) GetGuid(existingPtr any, kind Kind, loc Location) (Guid, error) {
	fg, err := p.CreateGuid(kind, 0, loc)
	if err != nil {
		return NullGuid, err
	}
	p.mu.Lock()
	p.ptrs[fg.Guid] = existingPtr
	p.mu.Unlock()
	return fg.Guid, nil
}

func (p *LocalProvider) GetVal(ctx context.Context, g Guid) (any, Kind, bool, error) {
	if g.IsNull() || g.IsUninitialized() {
		return nil, KindNone, false, xerr.New("GetVal", xerr.E_INVAL)
	}
	p.mu.Lock()
	ptr, ok := p.ptrs[g]
	p.mu.Unlock()
	if ok {
		return ptr, g.Kind(), g.Location() != p.loc, nil
	}
	if g.Location() == p.loc {
		// owned locally but never registered: a genuine not-found
		return nil, g.Kind(), false, xerr.New("GetVal", xerr.E_NOENT)
	}
	// remote and not yet proxied: kick off a clone pull (each unresolved
	// miss starts its own pull)
	if p.puller == nil {
		return nil, g.Kind(), true, xerr.New("GetVal", xerr.E_PENDING)
	}
	pe := p.proxyFor(g)
	pe.mu.Lock()
	if pe.resolved {
		ptr := pe.ptr
		pe.mu.Unlock()
		return ptr, g.Kind(), true, nil
	}
	pe.mu.Unlock()

	go p.drivePull(g)
	return nil, g.Kind(), true, xerr.New("GetVal", xerr.E_PENDING)
}

func (p *LocalProvider) proxyFor(g Guid) *proxyEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	pe, ok := p.proxies[g]
	if !ok {
		pe = &proxyEntry{}
		p.proxies[g] = pe
	}
	return pe
}

func (p *LocalProvider) drivePull(g Guid) {
	ptr, err := p.puller.PullClone(context.Background(), g, g.Location())
	pe := p.proxyFor(g)
	pe.mu.Lock()
	if err == nil {
		pe.resolved = true
		pe.ptr = ptr
	}
	waiters := pe.waiters
	pe.waiters = nil
	pe.mu.Unlock()
	for _, w := range waiters {
		close(w)
	}
}

func (p *LocalProvider) AwaitClone(ctx context.Context, g Guid) (any, error) {
	pe := p.proxyFor(g)
	pe.mu.Lock()
	if pe.resolved {
		ptr := pe.ptr
		pe.mu.Unlock()
		return ptr, nil
	}
	ch := make(chan struct{})
	pe.waiters = append(pe.waiters, ch)
	pe.mu.Unlock()

	select {
	case <-ch:
		pe.mu.Lock()
		defer pe.mu.Unlock()
		if pe.resolved {
			return pe.ptr, nil
		}
		return nil, xerr.New("AwaitClone", xerr.E_FAULT)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *LocalProvider) GetKind(g Guid) Kind         { return g.Kind() }
func (p *LocalProvider) GetLocation(g Guid) Location { return g.Location() }

func (p *LocalProvider) ReleaseGuid(g Guid, freeMetadata bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.ptrs[g]; !ok {
		return xerr.New("ReleaseGuid", xerr.E_NOENT)
	}
	if freeMetadata {
		delete(p.ptrs, g)
	}
	debug.Assert(true) // release never races destruction of the slot map itself
	return nil
}

func (p *LocalProvider) RegisterGuid(g Guid, ptr any) error {
	p.mu.Lock()
	p.ptrs[g] = ptr
	p.mu.Unlock()

	pe := p.proxyFor(g)
	pe.mu.Lock()
	pe.resolved = true
	pe.ptr = ptr
	waiters := pe.waiters
	pe.waiters = nil
	pe.mu.Unlock()
	for _, w := range waiters {
		close(w)
	}
	return nil
}
