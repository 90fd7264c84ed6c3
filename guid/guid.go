// Package guid implements C1 of SPEC_FULL.md: the opaque GUID identifier
// whose bit layout reveals its kind, the fat-guid (guid + cached local
// pointer), and the GUID-provider contract spec.md §4.1 treats as an
// external collaborator. Layout and sentinel values are grounded on
// spec.md §3 "GUID" and §6 "GUID encoding"; there is no teacher file that
// allocates opaque ids this way (aistore addresses objects by bucket/name,
// not a kind-tagged integer), so the bit layout itself is derived directly
// from the spec rather than adapted from teacher code — only the
// supporting idioms (atomic wrappers, nlog, debug.Assert) are borrowed.
package guid

import "fmt"

// Kind occupies the high bits of a Guid. The low bits are an
// implementation-defined index/hash the Provider is free to interpret.
type Kind uint8

const (
	KindNone Kind = iota
	KindEdt
	KindEdtTemplate
	KindDb
	KindEventOnce
	KindEventLatch
	KindEventSticky
	KindEventIdempotent
	KindEventCounted
	KindEventChannel
	KindEventCollective
	KindAffinity
	KindMap
	KindPolicyDomain
)

func (k Kind) IsEvent() bool {
	switch k {
	case KindEventOnce, KindEventLatch, KindEventSticky, KindEventIdempotent,
		KindEventCounted, KindEventChannel, KindEventCollective:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "NONE"
	case KindEdt:
		return "EDT"
	case KindEdtTemplate:
		return "EDT_TEMPLATE"
	case KindDb:
		return "DB"
	case KindEventOnce:
		return "EVENT_ONCE"
	case KindEventLatch:
		return "EVENT_LATCH"
	case KindEventSticky:
		return "EVENT_STICKY"
	case KindEventIdempotent:
		return "EVENT_IDEMPOTENT"
	case KindEventCounted:
		return "EVENT_COUNTED"
	case KindEventChannel:
		return "EVENT_CHANNEL"
	case KindEventCollective:
		return "EVENT_COLLECTIVE"
	case KindAffinity:
		return "AFFINITY"
	case KindMap:
		return "MAP"
	case KindPolicyDomain:
		return "POLICY_DOMAIN"
	default:
		return fmt.Sprintf("KIND(%d)", uint8(k))
	}
}

// Guid is the 64-bit opaque identifier of spec.md §6. Bits [63:56] carry
// the Kind, bits [55:48] carry the owning Location (policy-domain index),
// the remaining 48 bits are a provider-assigned index or hash.
type Guid uint64

const (
	kindShift = 56
	locShift  = 48
	locMask   = 0xFF
	idxMask   = (uint64(1) << locShift) - 1
)

// Special sentinels (spec.md §3 "GUID"): all-zero is NULL, all-one is
// UNINITIALIZED; ERROR is a third, distinguishable pattern (all ones
// except the lowest bit)
// so a resolver can tell "never set" from "explicitly errored".
const (
	NullGuid          Guid = 0
	UninitializedGuid Guid = ^Guid(0)
	ErrorGuid         Guid = ^Guid(0) &^ 1
)

func Make(kind Kind, loc Location, idx uint64) Guid {
	return Guid(uint64(kind)<<kindShift | uint64(loc)<<locShift | (idx & idxMask))
}

func (g Guid) Kind() Kind { return Kind(uint64(g) >> kindShift) }
func (g Guid) Location() Location {
	return Location(uint64(g)>>locShift) & locMask
}
func (g Guid) Index() uint64 { return uint64(g) & idxMask }

func (g Guid) IsNull() bool          { return g == NullGuid }
func (g Guid) IsUninitialized() bool { return g == UninitializedGuid }
func (g Guid) IsError() bool         { return g == ErrorGuid }

// GUIDF / GUIDA (spec.md §6) are trace-output formatters.
func (g Guid) GUIDF() string { return fmt.Sprintf("0x%016x", uint64(g)) }
func (g Guid) GUIDA() string { return fmt.Sprintf("%s(%s@loc%d)", g.GUIDF(), g.Kind(), g.Location()) }

func (g Guid) String() string { return g.GUIDA() }

// Location names a policy domain (spec.md "Affinity").
type Location uint8

// FatGuid pairs a Guid with an optional cached local metadata pointer
// (spec.md §3 "A fat-guid pairs a GUID with an optional local metadata
// pointer cached on resolution").
type FatGuid struct {
	Guid Guid
	Ptr  any // populated by Provider.GetVal; nil until resolved
}

func (f FatGuid) IsResolved() bool { return f.Ptr != nil }
