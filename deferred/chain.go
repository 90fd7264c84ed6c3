package deferred

import (
	"sync"

	"github.com/cs20/ocr-sub000/guid"
	"github.com/cs20/ocr-sub000/internal/nlog"
)

// Chain keys a Strand per subject guid and drains each one on its own
// worker submission, so deferred work for different subjects runs
// concurrently while work for the same subject stays ordered (spec.md
// §4.8 "deferred calls for the same subject never run concurrently with
// each other").
type Chain struct {
	mu      sync.Mutex
	strands map[guid.Guid]*Strand
	submit  func(func())
}

// NewChain takes a submit func (typically worker.Pool.Submit or
// pd.PolicyDomain.Schedule) so draining happens off whatever goroutine
// called Defer.
func NewChain(submit func(func())) *Chain {
	return &Chain{strands: make(map[guid.Guid]*Strand), submit: submit}
}

func (c *Chain) strandFor(subject guid.Guid) *Strand {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.strands[subject]
	if !ok {
		s = NewStrand()
		c.strands[subject] = s
	}
	return s
}

// Defer appends call to subject's strand and schedules a drain. If a
// drain for this subject is already in flight, the append is still
// picked up by that drain's loop (Strand.Drain keeps reading until
// empty), so Defer never schedules more than one redundant drain per
// idle strand.
func (c *Chain) Defer(subject guid.Guid, call Call) {
	s := c.strandFor(subject)
	wasEmpty := s.Empty()
	s.Append(call)
	if wasEmpty {
		c.submit(func() {
			for _, err := range s.Drain() {
				nlog.Errorln("deferred: call for", subject, "failed:", err)
			}
		})
	}
}

// Forget drops a subject's strand once its owning object is gone
// (spec.md §4.8 "a destroyed subject's pending deferred calls are
// abandoned, not run") — called from pd.PolicyDomain.ReleaseGuid.
func (c *Chain) Forget(subject guid.Guid) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.strands[subject]; ok {
		s.mu.Lock()
		s.head, s.tail = nil, nil
		s.mu.Unlock()
	}
	delete(c.strands, subject)
}
