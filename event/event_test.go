package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cs20/ocr-sub000/guid"
)

// fakeWaiter records every NotifySatisfied call it receives, standing in
// for an *edt.Instance without importing the edt package (event must not
// depend on edt).
type fakeWaiter struct {
	calls []fakeCall
}

type fakeCall struct {
	slot uint32
	data guid.Guid
	mode guid.DbAccessMode
}

func (w *fakeWaiter) NotifySatisfied(slot uint32, data guid.Guid, mode guid.DbAccessMode) {
	w.calls = append(w.calls, fakeCall{slot: slot, data: data, mode: mode})
}

type fakeResolver struct {
	waiters map[guid.Guid]Waiter
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{waiters: make(map[guid.Guid]Waiter)}
}

func (r *fakeResolver) ResolveWaiter(g guid.Guid) (Waiter, bool) {
	w, ok := r.waiters[g]
	return w, ok
}

func (r *fakeResolver) register(g guid.Guid) *fakeWaiter {
	w := &fakeWaiter{}
	r.waiters[g] = w
	return w
}

func TestOnceFiresAllWaitersThenSelfDestroys(t *testing.T) {
	r := newFakeResolver()
	eg := guid.Make(guid.KindEventOnce, 0, 1)
	once := NewOnce(eg, r)

	destroyed := false
	once.SetOnSelfDestroy(func() { destroyed = true })

	w1g := guid.Make(guid.KindEdt, 0, 2)
	w2g := guid.Make(guid.KindEdt, 0, 3)
	w1, w2 := r.register(w1g), r.register(w2g)

	require.NoError(t, once.RegisterWaiter(w1g, 0, false, guid.ModeRO))
	require.NoError(t, once.RegisterWaiter(w2g, 1, false, guid.ModeRO))

	payload := guid.Make(guid.KindDb, 0, 9)
	once.NotifySatisfied(0, payload, guid.ModeRO)

	require.Len(t, w1.calls, 1)
	require.Len(t, w2.calls, 1)
	assert.Equal(t, payload, w1.calls[0].data)
	assert.True(t, destroyed)
}

func TestLatchFiresAtZeroAndIgnoresLateDecrements(t *testing.T) {
	r := newFakeResolver()
	eg := guid.Make(guid.KindEventLatch, 0, 1)
	latch := NewLatch(eg, r, 2)

	wg := guid.Make(guid.KindEdt, 0, 2)
	w := r.register(wg)
	require.NoError(t, latch.RegisterWaiter(wg, 0, false, guid.ModeRO))

	latch.NotifySatisfied(LatchSlotDecr, guid.NullGuid, guid.ModeRO)
	assert.Empty(t, w.calls, "should not fire until counter reaches zero")
	assert.Equal(t, int64(1), latch.Counter())

	latch.NotifySatisfied(LatchSlotDecr, guid.NullGuid, guid.ModeRO)
	require.Len(t, w.calls, 1)

	// A further decrement after firing must be a no-op, not a second fire.
	latch.NotifySatisfied(LatchSlotDecr, guid.NullGuid, guid.ModeRO)
	assert.Len(t, w.calls, 1)
}

func TestStickyWarnsOnDoubleSatisfyButKeepsFirstValue(t *testing.T) {
	r := newFakeResolver()
	eg := guid.Make(guid.KindEventSticky, 0, 1)
	s := NewSticky(eg, r)

	first := guid.Make(guid.KindDb, 0, 10)
	second := guid.Make(guid.KindDb, 0, 11)
	s.NotifySatisfied(0, first, guid.ModeRO)
	s.NotifySatisfied(0, second, guid.ModeRO)

	data, set := s.Data()
	assert.True(t, set)
	assert.Equal(t, first, data)
}

func TestStickyRegisterAfterSatisfyNotifiesImmediately(t *testing.T) {
	r := newFakeResolver()
	eg := guid.Make(guid.KindEventSticky, 0, 1)
	s := NewSticky(eg, r)

	payload := guid.Make(guid.KindDb, 0, 5)
	s.NotifySatisfied(0, payload, guid.ModeRO)

	wg := guid.Make(guid.KindEdt, 0, 2)
	w := r.register(wg)
	require.NoError(t, s.RegisterWaiter(wg, 0, false, guid.ModeRO))

	require.Len(t, w.calls, 1)
	assert.Equal(t, payload, w.calls[0].data)
}

func TestIdempotentSilentlyDropsSecondSatisfy(t *testing.T) {
	r := newFakeResolver()
	eg := guid.Make(guid.KindEventIdempotent, 0, 1)
	idem := NewIdempotent(eg, r)

	first := guid.Make(guid.KindDb, 0, 1)
	second := guid.Make(guid.KindDb, 0, 2)
	idem.NotifySatisfied(0, first, guid.ModeRO)
	idem.NotifySatisfied(0, second, guid.ModeRO)

	data, _ := idem.Data()
	assert.Equal(t, first, data)
}

func TestCountedSelfDestroysAfterNbDepsRegistrations(t *testing.T) {
	r := newFakeResolver()
	eg := guid.Make(guid.KindEventCounted, 0, 1)
	c := NewCounted(eg, r, 2)

	destroyed := false
	c.SetOnSelfDestroy(func() { destroyed = true })

	payload := guid.Make(guid.KindDb, 0, 7)
	c.NotifySatisfied(0, payload, guid.ModeRO)

	w1g := guid.Make(guid.KindEdt, 0, 2)
	w1 := r.register(w1g)
	require.NoError(t, c.RegisterWaiter(w1g, 0, false, guid.ModeRO))
	require.Len(t, w1.calls, 1)
	assert.False(t, destroyed)
	assert.Equal(t, int64(1), c.NbDeps())

	w2g := guid.Make(guid.KindEdt, 0, 3)
	w2 := r.register(w2g)
	require.NoError(t, c.RegisterWaiter(w2g, 0, false, guid.ModeRO))
	require.Len(t, w2.calls, 1)
	assert.True(t, destroyed)
}

func TestChannelPairsFIFOAcrossEitherArrivalOrder(t *testing.T) {
	r := newFakeResolver()
	eg := guid.Make(guid.KindEventChannel, 0, 1)
	ch := NewChannel(eg, r, 0)

	// Waiter arrives first, then a satisfy: should pair immediately.
	wg := guid.Make(guid.KindEdt, 0, 2)
	w := r.register(wg)
	require.NoError(t, ch.RegisterWaiter(wg, 0, false, guid.ModeRO))
	payload := guid.Make(guid.KindDb, 0, 1)
	ch.NotifySatisfied(0, payload, guid.ModeRO)
	require.Len(t, w.calls, 1)
	assert.Equal(t, payload, w.calls[0].data)

	// Satisfy arrives first, then a waiter: should still pair, queued.
	payload2 := guid.Make(guid.KindDb, 0, 2)
	ch.NotifySatisfied(0, payload2, guid.ModeRO)
	wg2 := guid.Make(guid.KindEdt, 0, 3)
	w2 := r.register(wg2)
	require.NoError(t, ch.RegisterWaiter(wg2, 0, false, guid.ModeRO))
	require.Len(t, w2.calls, 1)
	assert.Equal(t, payload2, w2.calls[0].data)

	satDepth, waitDepth := ch.Depth()
	assert.Zero(t, satDepth)
	assert.Zero(t, waitDepth)
}

func TestChannelBoundedBackpressureReleasesOnDrain(t *testing.T) {
	r := newFakeResolver()
	eg := guid.Make(guid.KindEventChannel, 0, 1)
	ch := NewChannel(eg, r, 1)

	ch.NotifySatisfied(0, guid.Make(guid.KindDb, 0, 1), guid.ModeRO)
	satDepth, _ := ch.Depth()
	assert.Equal(t, 1, satDepth)

	wg := guid.Make(guid.KindEdt, 0, 2)
	r.register(wg)
	require.NoError(t, ch.RegisterWaiter(wg, 0, false, guid.ModeRO))

	satDepth, _ = ch.Depth()
	assert.Zero(t, satDepth, "registration must drain the queued generation")
	assert.True(t, ch.sem.TryAcquire(1), "drain must release the semaphore slot")
}
