package edt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cs20/ocr-sub000/guid"
)

func TestFrontierResolveOrderIndependent(t *testing.T) {
	f := NewFrontier(3)
	assert.Equal(t, 3, f.Len())
	assert.False(t, f.AllResolved())

	assert.False(t, f.Resolve(2, guid.Make(guid.KindDb, 0, 3), guid.ModeRO, false))
	assert.False(t, f.Resolve(0, guid.Make(guid.KindDb, 0, 1), guid.ModeRO, false))
	assert.True(t, f.Resolve(1, guid.Make(guid.KindDb, 0, 2), guid.ModeRO, false))
	assert.True(t, f.AllResolved())
}

func TestFrontierResolveDuplicateSlotIgnored(t *testing.T) {
	f := NewFrontier(1)
	g := guid.Make(guid.KindDb, 0, 1)
	assert.True(t, f.Resolve(0, g, guid.ModeRO, false))
	assert.False(t, f.Resolve(0, g, guid.ModeRO, false))
}

func TestFrontierSortedAscendingByGuid(t *testing.T) {
	f := NewFrontier(3)
	gHigh := guid.Make(guid.KindDb, 0, 30)
	gLow := guid.Make(guid.KindDb, 0, 10)
	gMid := guid.Make(guid.KindDb, 0, 20)
	f.Resolve(0, gHigh, guid.ModeRO, false)
	f.Resolve(1, gLow, guid.ModeRO, false)
	f.Resolve(2, gMid, guid.ModeRO, false)

	sorted := f.Sorted()
	for i := 1; i < len(sorted); i++ {
		assert.LessOrEqual(t, sorted[i-1].Guid, sorted[i].Guid)
	}
}
