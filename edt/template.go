// Package edt implements C3 of SPEC_FULL.md: the EDT (event-driven task)
// lifecycle — template, instance, dependency frontier, datablock
// acquisition, execution, and epilogue (spec.md §3 "EDT", §4.3
// "Lifecycle"). The state machine and slot bookkeeping are grounded on
// the teacher's xaction lifecycle (xact/xs/tcb.go, tcobjs.go): an EDT
// instance tracks state with an atomic the same way tcb.go tracks
// `jstate`/`abrt`, and logs transitions through internal/nlog the way
// tcb.go logs through nlog.Infoln/Errorln.
package edt

import (
	"context"

	"github.com/cs20/ocr-sub000/guid"
	"github.com/cs20/ocr-sub000/hint"
)

// Func is the user EDT body: paramv carries the scalar parameters
// (spec.md §6 "ocrEdtCreate(paramc, paramv, ...)"), depv carries one
// resolved dependence per slot in declaration order. The returned guid,
// if non-null, satisfies the EDT's own output event. ctx carries the
// instance's ambient finish scope, if any (FinishScopeFrom) - the
// "curTask" worker-local pointer spec.md §4.3 describes, threaded
// explicitly instead of kept goroutine-local.
type Func func(ctx context.Context, paramv []uint64, depv []DepItem) (guid.Guid, error)

// DepItem is a single resolved dependence handed to the EDT body
// (spec.md §3 "resolved dependence triple {guid, ptr, mode}").
type DepItem struct {
	Guid guid.Guid
	Ptr  []byte // non-nil only for DB dependences; nil for pure event dependences
	Mode guid.DbAccessMode
}

// Template is the reusable EDT descriptor created once via
// ocrEdtTemplateCreate and instantiated many times via ocrEdtCreate
// (spec.md §6).
type Template struct {
	Guid   guid.Guid
	Name   string
	ParamC int
	DepC   int // -1 means EDT_PARAM_UNK, resolved at instance-creation time
	Fn     Func
	Hint   *hint.Mask
}

func NewTemplate(g guid.Guid, name string, paramc, depc int, fn Func) *Template {
	return &Template{
		Guid:   g,
		Name:   name,
		ParamC: paramc,
		DepC:   depc,
		Fn:     fn,
		Hint:   hint.Init(hint.KindEdt),
	}
}
