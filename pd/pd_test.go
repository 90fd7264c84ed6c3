package pd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cs20/ocr-sub000/edt"
	"github.com/cs20/ocr-sub000/guid"
	"github.com/cs20/ocr-sub000/hint"
	"github.com/cs20/ocr-sub000/internal/xerr"
)

// syncWorkers runs every submission inline, so tests can assert on state
// immediately after a request returns instead of racing a real pool.
type syncWorkers struct{}

func (syncWorkers) Submit(fn func()) { fn() }

func newTestPD() *PolicyDomain {
	provider := guid.NewLocalProvider(0, nil)
	return New(0, provider, syncWorkers{}, hint.Noop())
}

func TestDbCreateAcquireReleaseFreeRoundTrip(t *testing.T) {
	p := newTestPD()
	edtGuid := guid.Make(guid.KindEdt, 0, 1)

	createReply := p.ProcessMessage(guid.NewRequest(guid.OpDbCreate, 0, 0, DbCreateIn{Size: 32}))
	require.Equal(t, int(0), createReply.ReturnCode)
	dbGuid := createReply.Out.(DbCreateOut).Guid

	acqReply := p.ProcessMessage(guid.NewRequest(guid.OpDbAcquire, 0, 0, DbAcquireIn{Edt: edtGuid, Db: dbGuid, Mode: guid.ModeRW}))
	require.Equal(t, int(0), acqReply.ReturnCode)
	assert.Len(t, acqReply.Out.(DbAcquireOut).Ptr, 32)

	relReply := p.ProcessMessage(guid.NewRequest(guid.OpDbRelease, 0, 0, DbReleaseIn{Edt: edtGuid, Db: dbGuid}))
	assert.Equal(t, int(0), relReply.ReturnCode)

	freeReply := p.ProcessMessage(guid.NewRequest(guid.OpDbFree, 0, 0, DbFreeIn{Db: dbGuid}))
	assert.Equal(t, int(0), freeReply.ReturnCode)
}

func TestWorkCreateZeroDependenceRunsImmediately(t *testing.T) {
	p := newTestPD()

	ran := false
	tmplReply := p.ProcessMessage(guid.NewRequest(guid.OpEdtTempCreate, 0, 0, EdtTempCreateIn{
		Name: "noop", ParamC: 0, DepC: 0,
		Fn: func(_ context.Context, paramv []uint64, depv []edt.DepItem) (guid.Guid, error) {
			ran = true
			return guid.NullGuid, nil
		},
	}))
	require.Equal(t, int(0), tmplReply.ReturnCode)
	tmplGuid := tmplReply.Out.(EdtTempCreateOut).Guid

	// Workers run synchronously in this test PD, so a zero-dependence
	// EDT's body has already run by the time WorkCreate returns.
	workReply := p.ProcessMessage(guid.NewRequest(guid.OpWorkCreate, 0, 0, WorkCreateIn{
		Template: tmplGuid, DepC: 0, Output: guid.NullGuid,
	}))
	require.Equal(t, int(0), workReply.ReturnCode)
	assert.True(t, ran)

	edtGuid := workReply.Out.(WorkCreateOut).Guid
	_, stillTracked := p.GetEdt(edtGuid)
	assert.False(t, stillTracked, "a reaped zero-dep EDT must have released its own guid")
}

func TestEventCreateOnceSatisfyDestroy(t *testing.T) {
	p := newTestPD()

	createReply := p.ProcessMessage(guid.NewRequest(guid.OpEvtCreate, 0, 0, EvtCreateIn{Kind: guid.KindEventOnce}))
	require.Equal(t, int(0), createReply.ReturnCode)
	evtGuid := createReply.Out.(EvtCreateOut).Guid

	waiterGuid := guid.Make(guid.KindEdt, 0, 1)
	regReply := p.ProcessMessage(guid.NewRequest(guid.OpDepRegSignaler, 0, 0, DepRegWaiterIn{
		Signaler: evtGuid, Waiter: waiterGuid, Slot: 0, Mode: guid.ModeRO,
	}))
	require.Equal(t, int(0), regReply.ReturnCode)

	extern := &recordingWaiter{}
	p.PutWaiter(waiterGuid, extern)

	payload := guid.Make(guid.KindDb, 0, 5)
	satReply := p.ProcessMessage(guid.NewRequest(guid.OpDepSatisfy, 0, 0, DepSatisfyIn{
		Target: evtGuid, Slot: 0, Data: payload, Mode: guid.ModeRO,
	}))
	assert.Equal(t, int(0), satReply.ReturnCode)
	require.Len(t, extern.calls, 1)
	assert.Equal(t, payload, extern.calls[0])

	destroyReply := p.ProcessMessage(guid.NewRequest(guid.OpEvtDestroy, 0, 0, EvtDestroyIn{Guid: evtGuid}))
	assert.Equal(t, int(0), destroyReply.ReturnCode)

	_, stillThere := p.GetEvent(evtGuid)
	assert.False(t, stillThere)
}

type recordingWaiter struct {
	calls []guid.Guid
}

func (w *recordingWaiter) NotifySatisfied(_ uint32, data guid.Guid, _ guid.DbAccessMode) {
	w.calls = append(w.calls, data)
}

func TestReleaseGuidDropsEventAfterDeferredCall(t *testing.T) {
	p := newTestPD()

	createReply := p.ProcessMessage(guid.NewRequest(guid.OpEvtCreate, 0, 0, EvtCreateIn{Kind: guid.KindEventSticky}))
	evtGuid := createReply.Out.(EvtCreateOut).Guid

	ran := false
	p.Deferred().Defer(evtGuid, func() error { ran = true; return nil })
	assert.True(t, ran)

	p.ReleaseGuid(evtGuid)
	_, ok := p.GetEvent(evtGuid)
	assert.False(t, ok)
}

func TestUnsupportedOpcodeReturnsNotSup(t *testing.T) {
	p := newTestPD()
	reply := p.ProcessMessage(guid.NewRequest(guid.OpResiliencyNotify, 0, 0, nil))
	assert.Equal(t, int(xerr.E_NOTSUP), reply.ReturnCode)
}
