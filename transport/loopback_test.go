package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cs20/ocr-sub000/guid"
	"github.com/cs20/ocr-sub000/internal/xerr"
)

type regIn struct {
	Holder guid.Location
}

func TestLoopbackRoundTripsToRegisteredHandler(t *testing.T) {
	l := NewLoopback()

	var gotOpcode guid.Opcode
	var gotIn *regIn
	l.Register(1, func(m *guid.PolicyMsg) *guid.PolicyMsg {
		gotOpcode = m.Opcode
		gotIn = m.In.(*regIn)
		return m.Reply("ack", 0)
	})

	in := &regIn{Holder: 1}
	req := guid.NewRequest(guid.OpMgtRegister, 0, 1, in)
	reply, err := l.Send(context.Background(), 1, req)

	require.NoError(t, err)
	assert.Equal(t, guid.OpMgtRegister, gotOpcode)
	assert.Equal(t, in, gotIn)
	assert.Equal(t, "ack", reply.Out)
	assert.True(t, reply.Props.Has(guid.PropResponse))
}

func TestLoopbackSendToUnknownLocationFails(t *testing.T) {
	l := NewLoopback()
	req := guid.NewRequest(guid.OpMgtRegister, 0, 9, nil)
	_, err := l.Send(context.Background(), 9, req)
	require.Error(t, err)
	assert.True(t, xerr.Is(err, xerr.E_NOENT))
}

func TestLoopbackSendRespectsCanceledContext(t *testing.T) {
	l := NewLoopback()
	l.Register(1, func(m *guid.PolicyMsg) *guid.PolicyMsg { return m.Reply(nil, 0) })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Send(ctx, 1, guid.NewRequest(guid.OpMgtRegister, 0, 1, nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
