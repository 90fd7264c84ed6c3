package mdproto

import (
	"bytes"
	"io"

	"github.com/pierrec/lz4/v3"
)

// compress/decompress shrink the metadata payload an M_CLONE response
// (or a relocated datablock in an M_MOVE) carries over the wire.
// "reduce" names the file, not a collective reduction — this is payload
// size reduction, the other sense SPEC_FULL.md §B commits pierrec/lz4
// to serve, alongside event.Collective's numeric reduction in the event
// package.
func compress(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(b); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompress(b []byte) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(b))
	return io.ReadAll(r)
}
