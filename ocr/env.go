package ocr

import (
	"context"
	"sync/atomic"

	"github.com/cs20/ocr-sub000/edt"
	"github.com/cs20/ocr-sub000/internal/debug"
	"github.com/cs20/ocr-sub000/pd"
)

// pdKey is the context.Context key a caller uses to scope a call to a
// specific policy domain (spec.md §6 "getCurrentEnv resolves the PD a
// call is running against"). Most callers run a single-PD topology and
// never need this; SetDefaultPD covers that case.
type pdKey struct{}

var defaultPD atomic.Value // holds *pd.PolicyDomain

// SetDefaultPD installs the policy domain every ocr.* call uses when its
// context carries none (the common single-PD case: a CLI run, a single
// test topology).
func SetDefaultPD(p *pd.PolicyDomain) { defaultPD.Store(p) }

// WithPD scopes ctx to a specific policy domain, for callers driving
// more than one location in the same process (multi-PD integration
// tests).
func WithPD(ctx context.Context, p *pd.PolicyDomain) context.Context {
	return context.WithValue(ctx, pdKey{}, p)
}

// currentEnv resolves the policy domain a call should run against
// (spec.md §6 "getCurrentEnv"): the context's, if scoped, else the
// process default.
func currentEnv(ctx context.Context) *pd.PolicyDomain {
	if p, ok := ctx.Value(pdKey{}).(*pd.PolicyDomain); ok && p != nil {
		return p
	}
	v := defaultPD.Load()
	p, _ := v.(*pd.PolicyDomain)
	debug.Assert(p != nil, "ocr: no policy domain set (call ocr.SetDefaultPD or ocr.WithPD first)")
	return p
}

// WithFinishScope scopes ctx to a finish scope (spec.md §4.4), so any
// EdtCreate made against the returned ctx - typically from inside the
// body of the EDT that opened the scope - is counted as one of its
// children. A running EDT body receives its own just-opened scope (or
// the one it inherited) the same way: as the ambient finish scope
// already installed on the ctx edt.Instance.run hands to Template.Fn.
func WithFinishScope(ctx context.Context, scope edt.FinishHandle) context.Context {
	return edt.WithFinishScope(ctx, scope)
}
