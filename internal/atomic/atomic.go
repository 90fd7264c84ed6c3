// Package atomic adapts the teacher's cmn/atomic typed wrappers
// (atomic.Int32, atomic.Int64, atomic.Bool — used pervasively in
// xact/xs/tcb.go and tcobjs.go: rxlast, refc, chanFull, wiCnt) over the
// standard sync/atomic, giving call sites a named type instead of a bare
// int64 plus a discipline of always going through Load/Store/Inc/Dec/CAS.
package atomic

import "sync/atomic"

type Int32 struct{ v int32 }

func (a *Int32) Load() int32        { return atomic.LoadInt32(&a.v) }
func (a *Int32) Store(n int32)      { atomic.StoreInt32(&a.v, n) }
func (a *Int32) Inc() int32         { return atomic.AddInt32(&a.v, 1) }
func (a *Int32) Dec() int32         { return atomic.AddInt32(&a.v, -1) }
func (a *Int32) Add(n int32) int32  { return atomic.AddInt32(&a.v, n) }
func (a *Int32) CAS(old, new int32) bool {
	return atomic.CompareAndSwapInt32(&a.v, old, new)
}
func (a *Int32) Swap(n int32) int32 { return atomic.SwapInt32(&a.v, n) }

type Int64 struct{ v int64 }

func (a *Int64) Load() int64       { return atomic.LoadInt64(&a.v) }
func (a *Int64) Store(n int64)     { atomic.StoreInt64(&a.v, n) }
func (a *Int64) Inc() int64        { return atomic.AddInt64(&a.v, 1) }
func (a *Int64) Dec() int64        { return atomic.AddInt64(&a.v, -1) }
func (a *Int64) Add(n int64) int64 { return atomic.AddInt64(&a.v, n) }
func (a *Int64) CAS(old, new int64) bool {
	return atomic.CompareAndSwapInt64(&a.v, old, new)
}
func (a *Int64) Swap(n int64) int64 { return atomic.SwapInt64(&a.v, n) }

type Uint32 struct{ v uint32 }

func (a *Uint32) Load() uint32   { return atomic.LoadUint32(&a.v) }
func (a *Uint32) Store(n uint32) { atomic.StoreUint32(&a.v, n) }
func (a *Uint32) CAS(old, new uint32) bool {
	return atomic.CompareAndSwapUint32(&a.v, old, new)
}

type Bool struct{ v int32 }

func (a *Bool) Load() bool { return atomic.LoadInt32(&a.v) != 0 }
func (a *Bool) Store(b bool) {
	if b {
		atomic.StoreInt32(&a.v, 1)
	} else {
		atomic.StoreInt32(&a.v, 0)
	}
}
func (a *Bool) CAS(old, new bool) bool {
	var o, n int32
	if old {
		o = 1
	}
	if new {
		n = 1
	}
	return atomic.CompareAndSwapInt32(&a.v, o, n)
}
