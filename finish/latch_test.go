package finish

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cs20/ocr-sub000/event"
	"github.com/cs20/ocr-sub000/guid"
)

type fakeWaiter struct {
	calls int
	last  guid.Guid
}

func (w *fakeWaiter) NotifySatisfied(_ uint32, data guid.Guid, _ guid.DbAccessMode) {
	w.calls++
	w.last = data
}

type fakeResolver struct {
	waiters map[guid.Guid]event.Waiter
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{waiters: make(map[guid.Guid]event.Waiter)}
}

func (r *fakeResolver) ResolveWaiter(g guid.Guid) (event.Waiter, bool) {
	w, ok := r.waiters[g]
	return w, ok
}

func (r *fakeResolver) register(g guid.Guid) *fakeWaiter {
	w := &fakeWaiter{}
	r.waiters[g] = w
	return w
}

func TestScopeClosesOnlyAfterEveryChildDone(t *testing.T) {
	r := newFakeResolver()
	sg := guid.Make(guid.KindEventLatch, 0, 1)
	s := NewScope(sg, r, nil)

	wg := guid.Make(guid.KindEdt, 0, 2)
	w := r.register(wg)
	require.NoError(t, s.Latch().RegisterWaiter(wg, 0, false, guid.ModeRO))

	s.AddChild()
	s.AddChild()

	s.Close(guid.NullGuid)
	assert.Zero(t, w.calls, "scope must stay open while two children are outstanding")

	s.ChildDone()
	assert.Zero(t, w.calls)

	s.ChildDone()
	require.Equal(t, 1, w.calls, "scope fires once its own close and both children are accounted for")
}

func TestScopeWithNoChildrenClosesImmediately(t *testing.T) {
	r := newFakeResolver()
	sg := guid.Make(guid.KindEventLatch, 0, 1)
	s := NewScope(sg, r, nil)

	wg := guid.Make(guid.KindEdt, 0, 2)
	w := r.register(wg)
	require.NoError(t, s.Latch().RegisterWaiter(wg, 0, false, guid.ModeRO))

	s.Close(guid.NullGuid)
	assert.Equal(t, 1, w.calls)
}

func TestScopeLateAddChildBeforeCloseStillCounted(t *testing.T) {
	r := newFakeResolver()
	sg := guid.Make(guid.KindEventLatch, 0, 1)
	s := NewScope(sg, r, nil)

	wg := guid.Make(guid.KindEdt, 0, 2)
	w := r.register(wg)
	require.NoError(t, s.Latch().RegisterWaiter(wg, 0, false, guid.ModeRO))

	s.AddChild()
	s.ChildDone()
	s.Close(guid.NullGuid)

	require.Equal(t, 1, w.calls)
}

type fakeSink struct {
	incrs, decrs int
}

func (s *fakeSink) IncrRemote(guid.Guid, guid.Location) error { s.incrs++; return nil }
func (s *fakeSink) DecrRemote(guid.Guid, guid.Location) error { s.decrs++; return nil }

func TestScopeWithRemoteParentProxyForwardsDeltas(t *testing.T) {
	r := newFakeResolver()
	sg := guid.Make(guid.KindEventLatch, 0, 1)
	s := NewScope(sg, r, nil)

	sink := &fakeSink{}
	parentGuid := guid.Make(guid.KindEventLatch, 1, 99)
	s.AttachProxy(NewParentProxy(parentGuid, 1, sink))

	s.AddChild()
	s.ChildDone()

	assert.Equal(t, 1, sink.incrs)
	assert.Equal(t, 1, sink.decrs)
}
