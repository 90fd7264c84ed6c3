package mdproto

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cs20/ocr-sub000/event"
	"github.com/cs20/ocr-sub000/guid"
)

type fakeTransport struct {
	mu      sync.Mutex
	handler func(ctx context.Context, dst guid.Location, m *guid.PolicyMsg) (*guid.PolicyMsg, error)
}

func (f *fakeTransport) Send(ctx context.Context, dst guid.Location, m *guid.PolicyMsg) (*guid.PolicyMsg, error) {
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	return h(ctx, dst, m)
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	orig := []byte("a metadata blob that should survive lz4 round-tripping unchanged")
	packed, err := compress(orig)
	require.NoError(t, err)
	got, err := decompress(packed)
	require.NoError(t, err)
	assert.Equal(t, orig, got)
}

func TestMoveCompressesPayloadAndTagsDirection(t *testing.T) {
	var captured *guid.PolicyMsg
	ft := &fakeTransport{handler: func(_ context.Context, _ guid.Location, m *guid.PolicyMsg) (*guid.PolicyMsg, error) {
		captured = m
		return m.Reply(nil, 0), nil
	}}
	provider := guid.NewLocalProvider(0, nil)
	p := New(0, ft, provider)

	payload := []byte("relocated datablock metadata")
	g := guid.Make(guid.KindDb, 1, 5)
	require.NoError(t, p.MoveUp(context.Background(), g, payload, 1))

	require.NotNil(t, captured)
	in, ok := captured.In.(MoveIn)
	require.True(t, ok)
	assert.Equal(t, KindUp, in.Kind)
	assert.Equal(t, g, in.Guid)

	got, err := decompress(in.Payload)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestPullCloneRegistersLocallyAndPushesReg(t *testing.T) {
	regCh := make(chan RegIn, 1)
	remoteData := guid.Make(guid.KindDb, 1, 42)
	remoteSnap := event.Snapshot{Kind: guid.KindEventSticky, Data: remoteData, DataSet: true}

	ft := &fakeTransport{}
	ft.handler = func(_ context.Context, _ guid.Location, m *guid.PolicyMsg) (*guid.PolicyMsg, error) {
		switch m.Opcode {
		case guid.OpGuidMetadataClone:
			packed, err := EncodeSnapshot(remoteSnap)
			require.NoError(t, err)
			return m.Reply(CloneOut{Payload: packed}, 0), nil
		case guid.OpMetadataComm:
			regCh <- m.In.(RegIn)
			return m.Reply(nil, 0), nil
		default:
			t.Fatalf("unexpected opcode %s", m.Opcode)
			return nil, nil
		}
	}

	provider := guid.NewLocalProvider(0, nil)
	p := New(0, ft, provider)

	remoteGuid := guid.Make(guid.KindEventSticky, 1, 9)
	ptr, err := p.PullClone(context.Background(), remoteGuid, 1)
	require.NoError(t, err)
	assert.Equal(t, remoteSnap, ptr)

	select {
	case reg := <-regCh:
		assert.Equal(t, KindReg, reg.Kind)
		assert.Equal(t, remoteGuid, reg.Guid)
	case <-time.After(time.Second):
		t.Fatal("expected PullClone to push an M_REG to the owner")
	}

	val, _, _, err := provider.GetVal(context.Background(), remoteGuid)
	require.NoError(t, err)
	assert.Equal(t, remoteSnap, val)
}

func TestPushSatisfyExcludesReceivedFromPeer(t *testing.T) {
	var mu sync.Mutex
	var dsts []guid.Location
	ft := &fakeTransport{handler: func(_ context.Context, dst guid.Location, m *guid.PolicyMsg) (*guid.PolicyMsg, error) {
		mu.Lock()
		dsts = append(dsts, dst)
		mu.Unlock()
		return m.Reply(nil, 0), nil
	}}
	provider := guid.NewLocalProvider(0, nil)
	p := New(0, ft, provider)

	md := fixedPeers{peers: []guid.Location{1, 2, 3}}
	evt := guid.Make(guid.KindEventOnce, 0, 1)
	p.PushSatisfy(context.Background(), md, evt, 0, guid.NullGuid, guid.ModeRO, 2, true)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(dsts) == 2
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.NotContains(t, dsts, guid.Location(2))
	assert.ElementsMatch(t, []guid.Location{1, 3}, dsts)
}

type fixedPeers struct{ peers []guid.Location }

func (f fixedPeers) PeersExcept(except guid.Location, have bool) []guid.Location {
	if !have {
		return f.peers
	}
	out := make([]guid.Location, 0, len(f.peers))
	for _, p := range f.peers {
		if p != except {
			out = append(out, p)
		}
	}
	return out
}
