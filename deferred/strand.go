// Package deferred implements C8: deferred-call micro-task chains
// (spec.md §4.8 "Deferred calls" — small follow-up actions an operation
// schedules for after it returns, run strictly in the order they were
// appended, without blocking the scheduling call). There is no teacher
// analogue (aistore's xactions are full goroutine-backed tasks, not
// micro-continuations); the single-linked append-only chain here is
// the direct idiomatic-Go reading of spec.md's "a strand is a FIFO list
// of deferred calls associated with one subject guid".
package deferred

import "sync"

// Call is one deferred unit of work. A non-nil error is logged by the
// driving Chain; it does not stop the rest of the strand from running
// (spec.md §4.8 "a failed deferred call is independent of its
// successors").
type Call func() error

// node is one link in a Strand.
type node struct {
	call Call
	next *node
}

// Strand is a FIFO chain of deferred calls for one subject (typically a
// guid: an EDT's post-epilogue bookkeeping, an event's post-satisfy
// peer pushes). Append is safe to call concurrently with Drain; Drain
// itself is meant to be driven by exactly one goroutine at a time per
// strand (the PD serializes strand draining per subject guid).
type Strand struct {
	mu   sync.Mutex
	head *node
	tail *node
}

func NewStrand() *Strand { return &Strand{} }

// Append adds a call to the end of the strand.
func (s *Strand) Append(c Call) {
	n := &node{call: c}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tail == nil {
		s.head, s.tail = n, n
		return
	}
	s.tail.next = n
	s.tail = n
}

// Drain runs every call currently queued, in order, removing each from
// the strand as it runs — calls appended during Drain are picked up by
// the same pass only if they land before Drain's internal cursor
// reaches the (possibly still growing) tail.
func (s *Strand) Drain() []error {
	var errs []error
	for {
		s.mu.Lock()
		n := s.head
		if n == nil {
			s.mu.Unlock()
			return errs
		}
		s.head = n.next
		if s.head == nil {
			s.tail = nil
		}
		s.mu.Unlock()

		if err := n.call(); err != nil {
			errs = append(errs, err)
		}
	}
}

func (s *Strand) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.head == nil
}
