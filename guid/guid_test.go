package guid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeRoundTripsKindLocationIndex(t *testing.T) {
	g := Make(KindEdt, 7, 12345)
	assert.Equal(t, KindEdt, g.Kind())
	assert.Equal(t, Location(7), g.Location())
	assert.Equal(t, uint64(12345), g.Index())
}

func TestSentinelsAreDistinguishable(t *testing.T) {
	assert.True(t, NullGuid.IsNull())
	assert.False(t, NullGuid.IsUninitialized())

	assert.True(t, UninitializedGuid.IsUninitialized())
	assert.False(t, UninitializedGuid.IsNull())

	assert.True(t, ErrorGuid.IsError())
	assert.NotEqual(t, UninitializedGuid, ErrorGuid)
}

func TestKindIsEventCoversOnlyEventKinds(t *testing.T) {
	for _, k := range []Kind{
		KindEventOnce, KindEventLatch, KindEventSticky, KindEventIdempotent,
		KindEventCounted, KindEventChannel, KindEventCollective,
	} {
		assert.True(t, k.IsEvent(), "%s must report IsEvent", k)
	}
	for _, k := range []Kind{KindNone, KindEdt, KindEdtTemplate, KindDb, KindAffinity, KindMap, KindPolicyDomain} {
		assert.False(t, k.IsEvent(), "%s must not report IsEvent", k)
	}
}

func TestPolicyMsgReplyFlipsSrcDstAndCarriesOpcode(t *testing.T) {
	req := NewRequest(OpDbCreate, 1, 2, nil)
	assert.True(t, req.Props.Has(PropRequest))

	reply := req.Reply("out", 0)
	assert.Equal(t, OpDbCreate, reply.Opcode)
	assert.True(t, reply.Props.Has(PropResponse))
	assert.Equal(t, Location(2), reply.Src)
	assert.Equal(t, Location(1), reply.Dst)
	assert.Equal(t, "out", reply.Out)
}
