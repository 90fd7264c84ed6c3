package edt

import (
	"context"

	"github.com/cs20/ocr-sub000/guid"
)

// FinishHandle is the spec.md §4.4 collaborator an Instance's own opened
// finish scope (or the scope it was created under) satisfies. Kept as an
// interface, the same way Env is, so edt does not import finish or pd
// directly - *finish.Scope satisfies it structurally.
type FinishHandle interface {
	// AddChild records one more outstanding unit under the scope, called
	// at creation time for every EDT created while the scope is ambient.
	AddChild()
	// ChildDone records completion of one unit added via AddChild.
	ChildDone()
	// Close decrements the scope's own unit, carrying the closing EDT's
	// return value for whichever call ends up driving the scope to zero.
	Close(out guid.Guid)
}

type finishScopeKey struct{}

// WithFinishScope scopes ctx to a finish scope: any ocrEdtCreate made
// against the returned ctx counts as a child of scope, whether or not
// the EDT currently running opened the scope itself (spec.md §4.4 - a
// scope's children are every EDT/event created while it is the nearest
// enclosing one, not only the finish EDT's direct descendants).
func WithFinishScope(ctx context.Context, scope FinishHandle) context.Context {
	return context.WithValue(ctx, finishScopeKey{}, scope)
}

// FinishScopeFrom resolves the ambient finish scope installed by
// WithFinishScope, if any.
func FinishScopeFrom(ctx context.Context) (FinishHandle, bool) {
	h, ok := ctx.Value(finishScopeKey{}).(FinishHandle)
	return h, ok
}
