// Package hint implements C9: masked hint bitmaps attached to EDTs,
// events, and templates (spec.md §3 "EDT template hintMask+vals", "Event
// ... hintMask+hintVals") plus the ocrHint* public surface (spec.md §6).
// There is no teacher equivalent (aistore's "hints" live in its placement
// policies, not a bitmask-keyed property table), so the Mask/Kind/Key
// layout follows spec.md directly; the statistics counters layered on top
// are grounded on the teacher's own stats posture (xact/xs/tcb.go tracks
// rxlast/refc/chanFull as atomics it later folds into a Snap()) and wired
// to github.com/prometheus/client_golang per SPEC_FULL.md §B.
package hint

// Kind distinguishes which object class a hint table describes (spec.md
// §6 "hint kinds {EDT, DB, EVT, GROUP}").
type Kind int

const (
	KindEdt Kind = iota
	KindDb
	KindEvt
	KindGroup
)

// Key enumerates the well-known hint properties of spec.md §6.
type Key int

const (
	KeyEdtPriority Key = iota
	KeyEdtAffinity
	KeyEdtSlotMaxAccess
	KeyEdtDisperse
	KeyEdtSpace
	KeyEdtTime
	KeyEdtStatsLong // EDT_PROP_LONG carried as a hint bit, SPEC_FULL.md §D.2
	KeyEdtStatsWeight
	KeyDbEager
	KeyDbLazy

	numKeys
)

// Mask is the inline bitmap + value array spec.md describes as
// "hintMask+hintVals": presence is a bit in Mask, the value lives at the
// same index in Vals. Values are stored as uint64 (affinity guids,
// priorities, and boolean flags all fit).
type Mask struct {
	Kind Kind
	bits uint64
	vals [numKeys]uint64
}

func New(kind Kind) *Mask { return &Mask{Kind: kind} }

func (m *Mask) Set(k Key, v uint64) {
	m.bits |= 1 << uint(k)
	m.vals[k] = v
}

func (m *Mask) Get(k Key) (uint64, bool) {
	if m.bits&(1<<uint(k)) == 0 {
		return 0, false
	}
	return m.vals[k], true
}

func (m *Mask) Has(k Key) bool { return m.bits&(1<<uint(k)) != 0 }

func (m *Mask) Clear(k Key) {
	m.bits &^= 1 << uint(k)
	m.vals[k] = 0
}

// Init mirrors ocrHintInit: construct an empty mask for a given kind.
func Init(kind Kind) *Mask { return New(kind) }
