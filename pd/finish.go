package pd

import (
	"github.com/cs20/ocr-sub000/edt"
	"github.com/cs20/ocr-sub000/finish"
	"github.com/cs20/ocr-sub000/guid"
	"github.com/cs20/ocr-sub000/internal/nlog"
)

// OpenFinishScope implements edt.Env for C4 (spec.md §4.4): mint a fresh
// latch-backed finish.Scope, register it as an ordinary event so it can
// be waited on like any other signaler, and install a terminal observer
// that fires exactly once the scope itself closes and every child it
// ever saw has reported done.
func (p *PolicyDomain) OpenFinishScope(edtGuid guid.Guid, output guid.Guid, parent edt.FinishHandle) edt.FinishHandle {
	scopeGuid, err := p.Provider.CreateGuid(guid.KindEventLatch, 0, p.Loc)
	if err != nil {
		nlog.Warningln("pd.OpenFinishScope: failed to allocate a scope guid for", edtGuid, err)
		return nil
	}

	var parentScope *finish.Scope
	if ps, ok := parent.(*finish.Scope); ok {
		parentScope = ps
	}
	scope := finish.NewScope(scopeGuid.Guid, p, parentScope)
	p.PutEvent(scope.Latch())

	doneGuid, err := p.Provider.CreateGuid(guid.KindEventLatch, 0, p.Loc)
	if err != nil {
		nlog.Warningln("pd.OpenFinishScope: failed to allocate a completion waiter guid for", edtGuid, err)
		return scope
	}
	p.PutWaiter(doneGuid, &finishCompletion{pd: p, scope: scope, parent: parentScope, output: output})
	if err := scope.Latch().RegisterWaiter(doneGuid, 0, false, guid.ModeNull); err != nil {
		nlog.Warningln("pd.OpenFinishScope: failed to register completion waiter for", edtGuid, err)
	}

	return scope
}

// finishCompletion is a finish scope's own terminal observer (spec.md
// §4.3 epilogue case (a): "decrement it; this cascades to parent and
// output event"). It fires exactly once, when every child added via
// AddChild plus the scope's own Close have been accounted for. It reads
// the scope's stashed FinalOutput rather than the notify data the latch
// itself delivers, since ChildDone always notifies with guid.NullGuid -
// only Close ever carries the closing EDT's real return value, and the
// call that actually drives the latch to zero need not be the Close
// call.
type finishCompletion struct {
	pd     *PolicyDomain
	scope  *finish.Scope
	parent *finish.Scope
	output guid.Guid
}

func (c *finishCompletion) NotifySatisfied(_ uint32, _ guid.Guid, _ guid.DbAccessMode) {
	out := c.scope.FinalOutput()
	if c.parent != nil {
		c.parent.ChildDone()
	}
	if !c.output.IsNull() {
		c.pd.Satisfy(c.output, 0, out, guid.ModeRO)
	}
}
