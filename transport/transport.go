// Package transport implements the network collaborator spec.md §4.1
// treats as external: moving a guid.PolicyMsg between locations for
// cross-PD opcodes and the mdproto distributed protocol (M_CLONE/M_REG/
// M_SAT/M_DEL/M_UP/M_DOWN/M_MOVE). There is no teacher analogue for a
// message-passing dataflow transport (aistore's own intra-cluster RPC
// is HTTP/REST, not a point-to-point opaque-message bus); the interface
// shape here is deliberately the narrowest spec.md needs, and
// loopback.go is the in-process reference binding used by single-binary
// test topologies.
package transport

import (
	"context"

	"github.com/cs20/ocr-sub000/guid"
)

// Transport sends a PolicyMsg to `dst` and returns the reply. Every
// mdproto operation and every cross-location ProcessMessage call goes
// through this one method.
type Transport interface {
	Send(ctx context.Context, dst guid.Location, m *guid.PolicyMsg) (*guid.PolicyMsg, error)
}

// Handler is what a location registers to receive messages addressed to
// it (typically *pd.PolicyDomain.ProcessMessage).
type Handler func(m *guid.PolicyMsg) *guid.PolicyMsg
