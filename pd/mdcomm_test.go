package pd

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cs20/ocr-sub000/event"
	"github.com/cs20/ocr-sub000/guid"
	"github.com/cs20/ocr-sub000/hint"
	"github.com/cs20/ocr-sub000/mdproto"
	"github.com/cs20/ocr-sub000/transport"
)

// captureWaiter is an ad-hoc event.Waiter double, the same shape the
// teacher's integration tests use a channel-backed spy for; registered
// via PutWaiter so a test can observe a satisfy that crossed a PD
// boundary without building a real EDT on the receiving side.
type captureWaiter struct{ ch chan guid.Guid }

func (w *captureWaiter) NotifySatisfied(_ uint32, data guid.Guid, _ guid.DbAccessMode) {
	w.ch <- data
}

func newMdWiredPD(loc guid.Location, lb *transport.Loopback) *PolicyDomain {
	provider := guid.NewLocalProvider(loc, nil)
	p := New(loc, provider, syncWorkers{}, hint.Noop())
	p.AttachMdProtocol(mdproto.New(loc, lb, provider))
	lb.Register(loc, p.ProcessMessage)
	return p
}

// TestCrossPDSatisfyPushesToRegisteredPeer wires two PolicyDomains over a
// shared transport.Loopback and mdproto.Protocol, proving C7 is actually
// reachable end to end: a peer M_REGs itself against an event it holds no
// local copy of, the owner satisfies that event locally, and the push
// lands on the peer as a real METADATA_COMM message, not a hand-built
// finish.Scope/mdproto call.
func TestCrossPDSatisfyPushesToRegisteredPeer(t *testing.T) {
	lb := transport.NewLoopback()
	owner := newMdWiredPD(0, lb)
	peer := newMdWiredPD(1, lb)

	createReply := owner.ProcessMessage(guid.NewRequest(guid.OpEvtCreate, 0, 0, EvtCreateIn{Kind: guid.KindEventSticky}))
	require.Equal(t, int(0), createReply.ReturnCode)
	evtGuid := createReply.Out.(EvtCreateOut).Guid

	cw := &captureWaiter{ch: make(chan guid.Guid, 1)}
	peer.PutWaiter(evtGuid, cw)

	regReply := owner.ProcessMessage(&guid.PolicyMsg{
		Opcode: guid.OpMetadataComm, Props: guid.PropRequest, Src: 1, Dst: 0,
		In: mdproto.RegIn{Kind: mdproto.KindReg, Guid: evtGuid},
	})
	require.Equal(t, int(0), regReply.ReturnCode)

	payload := guid.Make(guid.KindDb, 0, 99)
	satReply := owner.ProcessMessage(guid.NewRequest(guid.OpDepSatisfy, 0, 0, DepSatisfyIn{
		Target: evtGuid, Slot: 0, Data: payload, Mode: guid.ModeRO,
	}))
	require.Equal(t, int(0), satReply.ReturnCode)

	select {
	case got := <-cw.ch:
		require.Equal(t, payload, got)
	case <-time.After(2 * time.Second):
		t.Fatal("expected the owner's satisfy to push an M_SAT across to the registered peer")
	}
}

// TestCrossPDGuidMetadataCloneServesSnapshot proves GUID_METADATA_CLONE
// is dispatched by the router and returns a usable event.Snapshot, the
// same path mdproto.Protocol.PullClone drives when a guid.Provider
// misses locally.
func TestCrossPDGuidMetadataCloneServesSnapshot(t *testing.T) {
	lb := transport.NewLoopback()
	owner := newMdWiredPD(0, lb)
	remote := newMdWiredPD(1, lb)

	createReply := owner.ProcessMessage(guid.NewRequest(guid.OpEvtCreate, 0, 0, EvtCreateIn{Kind: guid.KindEventSticky}))
	require.Equal(t, int(0), createReply.ReturnCode)
	evtGuid := createReply.Out.(EvtCreateOut).Guid

	payload := guid.Make(guid.KindDb, 0, 7)
	satReply := owner.ProcessMessage(guid.NewRequest(guid.OpDepSatisfy, 0, 0, DepSatisfyIn{
		Target: evtGuid, Slot: 0, Data: payload, Mode: guid.ModeRO,
	}))
	require.Equal(t, int(0), satReply.ReturnCode)

	ptr, err := remote.MD.PullClone(context.Background(), evtGuid, 0)
	require.NoError(t, err)
	snap, ok := ptr.(event.Snapshot)
	require.True(t, ok)
	require.True(t, snap.DataSet)
	require.Equal(t, payload, snap.Data)
}
