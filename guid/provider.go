package guid

import "context"

// Provider is the external collaborator contract spec.md §4.1 describes:
// "createGuid / getGuid / getVal / getKind / getLocation / releaseGuid /
// registerGuid". The core never assumes a particular allocation strategy
// (hashed, sequential, NUMA-local); it only requires these seven
// operations plus AwaitClone, and the "pending" re-entry contract for
// remote resolution.
type Provider interface {
	// CreateGuid allocates a fresh guid of the given kind, sized for an
	// object of `size` bytes of metadata, owned by `loc`.
	CreateGuid(kind Kind, size int, loc Location) (FatGuid, error)

	// GetGuid resolves (or assigns, for labelled creation) a guid for an
	// existing local pointer.
	GetGuid(existingPtr any, kind Kind, loc Location) (Guid, error)

	// GetVal resolves a guid to its local pointer. Returns proxy=true
	// when the guid is owned remotely and a pointer is cached but not
	// authoritative; returns xerr.E_PENDING when no copy is available yet
	// and an MD_CLONE pull is in flight — callers must be prepared to
	// receive that code and be re-entered once the clone completes.
	GetVal(ctx context.Context, g Guid) (ptr any, kind Kind, proxy bool, err error)

	GetKind(g Guid) Kind
	GetLocation(g Guid) Location

	ReleaseGuid(g Guid, freeMetadata bool) error

	// RegisterGuid installs ptr as the local metadata for an
	// already-allocated guid (the MD_CLONE push receiver path, and the
	// EDT_MOVE receiver path, call this directly).
	RegisterGuid(g Guid, ptr any) error

	// AwaitClone blocks (or, in non-blocking callers, should be polled)
	// until a pending remote clone of g completes, returning the
	// resolved pointer. Used by callers that received E_PENDING and
	// chose to park rather than be re-entered via callback.
	AwaitClone(ctx context.Context, g Guid) (any, error)
}

// ClonePuller is implemented by a transport binding that can satisfy an
// MD_CLONE pull (spec.md §4.7) on behalf of a Provider when GetVal misses
// locally. Kept separate from Provider so a single-PD test configuration
// can use a Provider with no ClonePuller at all.
type ClonePuller interface {
	PullClone(ctx context.Context, g Guid, from Location) (any, error)
}
