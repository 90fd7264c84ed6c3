// Package ocr is the public surface spec.md §6 specifies: the
// ocrEdtTemplateCreate/ocrEdtCreate/ocrEventCreate/ocrAddDependence/
// ocrEventSatisfy/ocrEventDestroy/ocrShutdown family, each a thin
// wrapper that builds a guid.PolicyMsg and drives it through the
// current environment's pd.PolicyDomain.ProcessMessage — the same
// router every cross-location call uses, so a single-PD caller and a
// distributed one go through identical code. There is no teacher
// analogue for this particular surface; its shape is spec.md §6 itself,
// generalized from OCR's C function-per-call-pattern into a package of
// plain Go functions operating against getCurrentEnv (env.go) rather
// than threading an explicit handle through every call, matching how
// the original C API hides its PD behind a thread-local.
package ocr

import (
	"context"

	"github.com/cs20/ocr-sub000/edt"
	"github.com/cs20/ocr-sub000/event"
	"github.com/cs20/ocr-sub000/guid"
	"github.com/cs20/ocr-sub000/internal/xerr"
	"github.com/cs20/ocr-sub000/pd"
)

func checkCode(code int) error {
	if xerr.Detail(code) == xerr.OK {
		return nil
	}
	return xerr.New("ocr", xerr.Detail(code))
}

// EdtTemplateCreate corresponds to ocrEdtTemplateCreate (spec.md §6).
func EdtTemplateCreate(ctx context.Context, name string, paramc, depc int, fn edt.Func) (guid.Guid, error) {
	p := currentEnv(ctx)
	reply := p.ProcessMessage(&guid.PolicyMsg{
		Opcode: guid.OpEdtTempCreate,
		Props:  guid.PropRequest,
		In:     pd.EdtTempCreateIn{Name: name, ParamC: paramc, DepC: depc, Fn: fn},
	})
	if err := checkCode(reply.ReturnCode); err != nil {
		return guid.NullGuid, err
	}
	return reply.Out.(pd.EdtTempCreateOut).Guid, nil
}

// EdtCreate corresponds to ocrEdtCreate. propFinish is EDT_PROP_FINISH
// (spec.md §4.4): the new EDT opens its own finish scope when it runs.
// If ctx already carries an ambient finish scope (because the caller is
// itself running inside one - see edt.WithFinishScope), the new EDT is
// counted as one of that scope's children regardless of propFinish.
func EdtCreate(ctx context.Context, tmpl guid.Guid, paramv []uint64, output guid.Guid, depc int, propFinish bool) (guid.Guid, error) {
	p := currentEnv(ctx)
	parent, _ := edt.FinishScopeFrom(ctx)
	reply := p.ProcessMessage(&guid.PolicyMsg{
		Opcode: guid.OpWorkCreate,
		Props:  guid.PropRequest,
		In: pd.WorkCreateIn{
			Template: tmpl, ParamV: paramv, Output: output, DepC: depc,
			PropFinish: propFinish, ParentFinish: parent, Ctx: ctx,
		},
	})
	if err := checkCode(reply.ReturnCode); err != nil {
		return guid.NullGuid, err
	}
	return reply.Out.(pd.WorkCreateOut).Guid, nil
}

// EventCreate corresponds to ocrEventCreate. params is kind-specific:
// Latch uses Counter, Counted uses NbDeps, Channel uses MaxGen,
// Collective uses Arity/Op/Signed — the remaining kinds ignore all of
// them (spec.md §6 "ocrEventParams_t is a tagged union; unused fields
// are ignored").
type EventParams struct {
	Counter int64
	NbDeps  int64
	MaxGen  uint64
	Arity   int
	Op      event.ReduceOp
	Signed  bool
}

func EventCreate(ctx context.Context, kind guid.Kind, params EventParams) (guid.Guid, error) {
	p := currentEnv(ctx)
	reply := p.ProcessMessage(&guid.PolicyMsg{
		Opcode: guid.OpEvtCreate,
		Props:  guid.PropRequest,
		In: pd.EvtCreateIn{
			Kind: kind, Counter: params.Counter, NbDeps: params.NbDeps,
			MaxGen: params.MaxGen, Arity: params.Arity, Op: params.Op, Signed: params.Signed,
		},
	})
	if err := checkCode(reply.ReturnCode); err != nil {
		return guid.NullGuid, err
	}
	return reply.Out.(pd.EvtCreateOut).Guid, nil
}

// EventDestroy corresponds to ocrEventDestroy.
func EventDestroy(ctx context.Context, g guid.Guid) error {
	p := currentEnv(ctx)
	reply := p.ProcessMessage(&guid.PolicyMsg{
		Opcode: guid.OpEvtDestroy,
		Props:  guid.PropRequest,
		In:     pd.EvtDestroyIn{Guid: g},
	})
	return checkCode(reply.ReturnCode)
}

// EventSatisfy corresponds to ocrEventSatisfy / DEP_SATISFY.
func EventSatisfy(ctx context.Context, target guid.Guid, data guid.Guid) error {
	p := currentEnv(ctx)
	reply := p.ProcessMessage(&guid.PolicyMsg{
		Opcode: guid.OpDepSatisfy,
		Props:  guid.PropRequest,
		In:     pd.DepSatisfyIn{Target: target, Slot: 0, Data: data, Mode: guid.ModeRO},
	})
	return checkCode(reply.ReturnCode)
}

// AddDependence corresponds to ocrAddDependence / DEP_ADD (spec.md §6).
func AddDependence(ctx context.Context, signaler, target guid.Guid, slot uint32, mode guid.DbAccessMode) error {
	p := currentEnv(ctx)
	reply := p.ProcessMessage(&guid.PolicyMsg{
		Opcode: guid.OpDepAdd,
		Props:  guid.PropRequest,
		In:     pd.DepAddIn{Signaler: signaler, Target: target, Slot: slot, Mode: mode},
	})
	return checkCode(reply.ReturnCode)
}

// DbCreate corresponds to ocrDbCreate.
func DbCreate(ctx context.Context, size uint64) (guid.Guid, error) {
	p := currentEnv(ctx)
	reply := p.ProcessMessage(&guid.PolicyMsg{
		Opcode: guid.OpDbCreate,
		Props:  guid.PropRequest,
		In:     pd.DbCreateIn{Size: size},
	})
	if err := checkCode(reply.ReturnCode); err != nil {
		return guid.NullGuid, err
	}
	return reply.Out.(pd.DbCreateOut).Guid, nil
}

// GuidDestroy corresponds to ocrGuidDestroy / GUID_DESTROY.
func GuidDestroy(ctx context.Context, g guid.Guid) error {
	p := currentEnv(ctx)
	reply := p.ProcessMessage(&guid.PolicyMsg{
		Opcode: guid.OpGuidDestroy,
		Props:  guid.PropRequest,
		In:     pd.GuidDestroyIn{Guid: g},
	})
	return checkCode(reply.ReturnCode)
}
