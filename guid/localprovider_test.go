package guid

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cs20/ocr-sub000/internal/xerr"
)

func TestLocalProviderCreateGuidIssuesDistinctSequentialGuids(t *testing.T) {
	p := NewLocalProvider(3, nil)

	fg1, err := p.CreateGuid(KindDb, 0, 3)
	require.NoError(t, err)
	fg2, err := p.CreateGuid(KindDb, 0, 3)
	require.NoError(t, err)

	assert.NotEqual(t, fg1.Guid, fg2.Guid)
	assert.Equal(t, Location(3), fg1.Guid.Location())
	assert.Equal(t, KindDb, fg1.Guid.Kind())
}

func TestLocalProviderCreateLabeledIsDeterministicAndRaceSafe(t *testing.T) {
	p := NewLocalProvider(0, nil)

	calls := 0
	makePtr := func() any { calls++; return "winner" }

	fg1, err := p.CreateLabeled(KindEventCollective, 0, "reduce/root", makePtr)
	require.NoError(t, err)
	assert.Equal(t, "winner", fg1.Ptr)

	fg2, err := p.CreateLabeled(KindEventCollective, 0, "reduce/root", makePtr)
	require.Error(t, err)
	assert.True(t, xerr.Is(err, xerr.E_GUID_EXISTS))
	assert.Equal(t, fg1.Guid, fg2.Guid, "the same label must hash to the same guid on every caller")
	assert.Equal(t, 1, calls, "only the winning caller's makePtr ever runs")
}

func TestLocalProviderGetValLocalNotFoundReturnsENOENT(t *testing.T) {
	p := NewLocalProvider(0, nil)
	g := Make(KindDb, 0, 999)

	_, _, _, err := p.GetVal(context.Background(), g)
	require.Error(t, err)
	assert.True(t, xerr.Is(err, xerr.E_NOENT))
}

func TestLocalProviderGetValRemoteWithoutPullerReturnsPending(t *testing.T) {
	p := NewLocalProvider(0, nil)
	remote := Make(KindDb, 1, 5)

	_, kind, proxy, err := p.GetVal(context.Background(), remote)
	assert.Equal(t, KindDb, kind)
	assert.True(t, proxy)
	assert.True(t, xerr.Is(err, xerr.E_PENDING))
}

type fakePuller struct {
	ptr any
}

func (f fakePuller) PullClone(_ context.Context, _ Guid, _ Location) (any, error) {
	return f.ptr, nil
}

func TestLocalProviderGetValRemoteDrivesPullAndAwaitCloneResolves(t *testing.T) {
	p := NewLocalProvider(0, fakePuller{ptr: "remote-metadata"})
	remote := Make(KindDb, 1, 5)

	_, _, proxy, err := p.GetVal(context.Background(), remote)
	assert.True(t, proxy)
	assert.True(t, xerr.Is(err, xerr.E_PENDING))

	got, err := p.AwaitClone(context.Background(), remote)
	require.NoError(t, err)
	assert.Equal(t, "remote-metadata", got)
}

func TestLocalProviderRegisterGuidWakesPendingAwaitClone(t *testing.T) {
	p := NewLocalProvider(0, nil)
	g := Make(KindDb, 1, 9)

	done := make(chan struct{})
	var got any
	var gotErr error
	go func() {
		got, gotErr = p.AwaitClone(context.Background(), g)
		close(done)
	}()

	require.NoError(t, p.RegisterGuid(g, "pushed-metadata"))
	<-done

	require.NoError(t, gotErr)
	assert.Equal(t, "pushed-metadata", got)
}

func TestLocalProviderReleaseGuidUnknownGuidErrors(t *testing.T) {
	p := NewLocalProvider(0, nil)
	err := p.ReleaseGuid(Make(KindDb, 0, 1), true)
	require.Error(t, err)
	assert.True(t, xerr.Is(err, xerr.E_NOENT))
}

func TestLocalProviderReleaseGuidFreesMetadataWhenRequested(t *testing.T) {
	p := NewLocalProvider(0, nil)
	g, err := p.GetGuid("some-ptr", KindDb, 0)
	require.NoError(t, err)

	require.NoError(t, p.ReleaseGuid(g, true))
	_, _, _, err = p.GetVal(context.Background(), g)
	assert.True(t, xerr.Is(err, xerr.E_NOENT))
}
