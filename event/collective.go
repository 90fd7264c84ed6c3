package event

import (
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/cs20/ocr-sub000/guid"
)

// ReduceOp names a collective reduction operator (spec.md §4.2
// "Collective").
type ReduceOp int

const (
	ReduceSum ReduceOp = iota
	ReduceProd
	ReduceMax
	ReduceMin
	ReduceAnd
	ReduceOr
	ReduceXor
)

// reduce dispatches by operator and signedness. spec.md leaves the
// datablock payload encoding to the DB layer (C-side "datum size" is a
// byte-width picked at ocrEventCreate time); this runtime folds over the
// 64-bit guid payload every contributor hands to NotifySatisfied, with
// signedness selecting int64 vs uint64 comparison semantics for
// MAX/MIN — the one place width/signedness actually changes the result.
func reduce(op ReduceOp, signed bool, a, b uint64) uint64 {
	switch op {
	case ReduceSum:
		return a + b
	case ReduceProd:
		return a * b
	case ReduceMax:
		if signed {
			if int64(a) > int64(b) {
				return a
			}
			return b
		}
		if a > b {
			return a
		}
		return b
	case ReduceMin:
		if signed {
			if int64(a) < int64(b) {
				return a
			}
			return b
		}
		if a < b {
			return a
		}
		return b
	case ReduceAnd:
		return a & b
	case ReduceOr:
		return a | b
	case ReduceXor:
		return a ^ b
	default:
		return a
	}
}

type genPhase struct {
	received int
	acc      uint64
	gotAcc   bool
}

// Collective (spec.md §4.2 "Collective"): a k-ary reduction node. Each
// generation folds `arity` incoming contributions with `op`, then
// re-broadcasts the folded value to every registered waiter (the parent
// node, or the caller's continuation at the tree root) and advances to
// the next generation — unlike Once/Latch, a collective event is not
// consumed by firing; it is a standing node in the reduction tree.
type Collective struct {
	Base

	arity  int
	op     ReduceOp
	signed bool

	currentGen uint64
	phases     map[uint64]*genPhase

	// sf dedupes concurrent first-touch of a generation's phase record:
	// when several sibling contributions race into NotifySatisfied for a
	// generation that has not been touched yet, only one allocates the
	// genPhase; the rest observe it already present. The fast path
	// (generation already open) is a short Base.mu lookup that returns
	// without entering singleflight.
	sf singleflight.Group
}

var _ Event = (*Collective)(nil)

func NewCollective(g guid.Guid, r Resolver, arity int, op ReduceOp, signed bool) *Collective {
	return &Collective{
		Base:   newBase(g, guid.KindEventCollective, r),
		arity:  arity,
		op:     op,
		signed: signed,
		phases: make(map[uint64]*genPhase),
	}
}

func (e *Collective) Arity() int    { return e.arity }
func (e *Collective) Op() ReduceOp  { return e.op }
func (e *Collective) CurrentGen() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentGen
}

func (e *Collective) ensurePhase(gen uint64) *genPhase {
	e.mu.Lock()
	if ph, ok := e.phases[gen]; ok {
		e.mu.Unlock()
		return ph
	}
	e.mu.Unlock()

	key := strconv.FormatUint(gen, 10)
	v, _, _ := e.sf.Do(key, func() (any, error) {
		e.mu.Lock()
		ph, ok := e.phases[gen]
		if !ok {
			ph = &genPhase{}
			e.phases[gen] = ph
		}
		e.mu.Unlock()
		return ph, nil
	})
	return v.(*genPhase)
}

// NotifySatisfied folds one contribution into the current generation.
// Once `arity` contributions have landed the generation is closed, the
// folded value is broadcast to every registered waiter, and the node
// advances to the next generation.
func (e *Collective) NotifySatisfied(_ uint32, data guid.Guid, _ guid.DbAccessMode) {
	e.mu.Lock()
	gen := e.currentGen
	e.mu.Unlock()

	ph := e.ensurePhase(gen)

	e.mu.Lock()
	payload := uint64(data)
	if !ph.gotAcc {
		ph.acc = payload
		ph.gotAcc = true
	} else {
		ph.acc = reduce(e.op, e.signed, ph.acc, payload)
	}
	ph.received++
	complete := ph.received >= e.arity
	var result guid.Guid
	var waiters []RegNode
	if complete {
		result = guid.Guid(ph.acc)
		delete(e.phases, gen)
		e.currentGen++
		waiters = make([]RegNode, 0, e.waitersInlineN+len(e.waitersOverflow))
		e.forEachWaiterLocked(func(rn RegNode) { waiters = append(waiters, rn) })
	}
	e.mu.Unlock()

	if complete {
		for _, rn := range waiters {
			notify(e.r, rn, result)
		}
	}
}

// RegisterWaiter registers a standing waiter (the parent in the
// reduction tree, or the root's caller): collective waiters persist
// across generations, they are never removed by a single firing.
func (e *Collective) RegisterWaiter(waiter guid.Guid, slot uint32, _ bool, mode guid.DbAccessMode) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.addWaiterLocked(RegNode{Guid: waiter, Slot: slot, Mode: mode})
	return nil
}

func (e *Collective) Destroy() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.waitersInlineN = 0
	e.waitersOverflow = nil
	e.phases = make(map[uint64]*genPhase)
	return nil
}
