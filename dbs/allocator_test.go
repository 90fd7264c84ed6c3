package dbs

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cs20/ocr-sub000/guid"
	"github.com/cs20/ocr-sub000/internal/ttest"
)

func TestAllocatorCreateLookupDestroy(t *testing.T) {
	provider := guid.NewLocalProvider(0, nil)
	alloc := NewAllocator(provider)

	db, err := alloc.Create(0, 1<<10)
	require.NoError(t, err)
	require.NotNil(t, db)

	got, ok := alloc.Lookup(db.Guid)
	ttest.Fatal(t, ok, "expected created datablock to be looked up by guid")
	ttest.Fatal(t, got == db, "lookup returned a different *DataBlock than Create")

	require.NoError(t, alloc.Destroy(db.Guid))
	_, ok = alloc.Lookup(db.Guid)
	ttest.Fatal(t, !ok, "expected destroyed datablock to no longer be looked up")
}

func TestAllocatorReusesFreeListBySizeClass(t *testing.T) {
	provider := guid.NewLocalProvider(0, nil)
	alloc := NewAllocator(provider)

	first, err := alloc.Create(0, 100)
	require.NoError(t, err)
	require.NoError(t, alloc.Destroy(first.Guid))

	second, err := alloc.Create(0, 200)
	require.NoError(t, err)
	ttest.Fatal(t, second.Size == 200, "reused block should be resized to the new request")
	ttest.Fatal(t, classFor(100) == classFor(200), "100 and 200 bytes should share the same size class in this test")
}

func TestAllocatorDestroyUnknownGuid(t *testing.T) {
	provider := guid.NewLocalProvider(0, nil)
	alloc := NewAllocator(provider)
	unknown := guid.Make(guid.KindDb, 0, 999)
	err := alloc.Destroy(unknown)
	require.Error(t, err)
}
