package worker

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cs20/ocr-sub000/hint"
)

func TestPoolRunsAllSubmittedTasks(t *testing.T) {
	p := NewPool(3)
	p.Start()
	defer p.Shutdown()

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	var mu sync.Mutex
	count := 0
	for i := 0; i < n; i++ {
		p.Submit(func() {
			mu.Lock()
			count++
			mu.Unlock()
			wg.Done()
		})
	}

	waitWithTimeout(t, &wg, 2*time.Second)
	assert.Equal(t, n, count)
	assert.Equal(t, 3, p.N())
}

func TestPoolRunSafelyRecoversPanic(t *testing.T) {
	p := NewPool(1)
	p.Start()
	defer p.Shutdown()

	var wg sync.WaitGroup
	wg.Add(2)
	p.Submit(func() {
		defer wg.Done()
		panic("boom")
	})
	ran := false
	p.Submit(func() {
		defer wg.Done()
		ran = true
	})

	waitWithTimeout(t, &wg, 2*time.Second)
	assert.True(t, ran, "a panicking task must not take down the worker goroutine")
}

func TestPoolShutdownStopsAcceptingWork(t *testing.T) {
	p := NewPool(1)
	p.Start()
	p.Shutdown()

	done := make(chan struct{})
	go func() {
		p.Submit(func() {})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Submit after Shutdown must not block forever")
	}
}

func TestPriorityPoolDrainsHighPriorityFirst(t *testing.T) {
	p := NewPriorityPool(1)

	var mu sync.Mutex
	var order []string
	done := make(chan struct{})

	// Queue both before Start: the single worker's loop checks the hi
	// queue non-blockingly before it ever looks at the plain queue, so
	// submission order alone decides nothing here.
	p.Submit(func() {
		mu.Lock()
		order = append(order, "lo")
		mu.Unlock()
		close(done)
	})
	m := hint.New(hint.KindEdt)
	m.Set(hint.KeyEdtPriority, 1)
	p.SubmitHinted(m, func() {
		mu.Lock()
		order = append(order, "hi")
		mu.Unlock()
	})

	p.Start()
	defer p.Shutdown()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("tasks never completed")
	}

	require.Len(t, order, 2)
	assert.Equal(t, "hi", order[0], "high priority task must drain before the plain queue")
}

func waitWithTimeout(t *testing.T, wg *sync.WaitGroup, d time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatal("timed out waiting for tasks to complete")
	}
}
