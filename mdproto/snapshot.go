package mdproto

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/cs20/ocr-sub000/event"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// EncodeSnapshot serializes an event.Snapshot and compresses it, ready to
// ride in a CloneOut.Payload the same way any other M_CLONE blob does
// (reduce.go's lz4 framing, shared with MoveIn's payload).
func EncodeSnapshot(snap event.Snapshot) ([]byte, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}
	return compress(raw)
}

// DecodeSnapshot reverses EncodeSnapshot.
func DecodeSnapshot(blob []byte) (event.Snapshot, error) {
	raw, err := decompress(blob)
	if err != nil {
		return event.Snapshot{}, err
	}
	var snap event.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return event.Snapshot{}, err
	}
	return snap, nil
}
