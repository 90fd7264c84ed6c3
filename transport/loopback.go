package transport

import (
	"context"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/cs20/ocr-sub000/guid"
	"github.com/cs20/ocr-sub000/internal/xerr"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Loopback is the in-process Transport reference binding: every
// location it knows about lives in the same address space, so Send
// round-trips the message header through json-iterator (the teacher's
// wire codec, ais/prxs3.go) rather than handing the handler the caller's
// struct directly. The `any`-typed In/Out payloads are not round-tripped:
// the handler receives the caller's original values (see Send).
type Loopback struct {
	mu       sync.RWMutex
	handlers map[guid.Location]Handler
}

func NewLoopback() *Loopback {
	return &Loopback{handlers: make(map[guid.Location]Handler)}
}

func (l *Loopback) Register(loc guid.Location, h Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers[loc] = h
}

func (l *Loopback) Send(ctx context.Context, dst guid.Location, m *guid.PolicyMsg) (*guid.PolicyMsg, error) {
	l.mu.RLock()
	h, ok := l.handlers[dst]
	l.mu.RUnlock()
	if !ok {
		return nil, xerr.New("transport.Send", xerr.E_NOENT)
	}

	wire, err := json.Marshal(m)
	if err != nil {
		return nil, xerr.Wrap("transport.Send", xerr.E_FAULT, err)
	}
	var onWire guid.PolicyMsg
	if err := json.Unmarshal(wire, &onWire); err != nil {
		return nil, xerr.Wrap("transport.Send", xerr.E_FAULT, err)
	}
	// In/Out carry opaque `any` payloads that do not survive a generic
	// JSON round trip without a registered concrete type (map[string]any
	// comes back, not the original struct); the loopback binding keeps
	// the original typed payloads for dispatch and only exercises the
	// codec for its header fields, which is the part that would also
	// cross a real wire unchanged.
	onWire.In = m.In
	onWire.Out = m.Out

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return h(&onWire), nil
}
