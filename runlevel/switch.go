package runlevel

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cs20/ocr-sub000/internal/config"
	"github.com/cs20/ocr-sub000/internal/nlog"
)

// Machine drives a PD's workers through the ten runlevel phases in
// order, barrier-synchronizing each one: every worker's Callback for a
// phase must return before any worker proceeds to the next phase
// (spec.md §4.6 "a runlevel transition is not considered complete, and
// the next is not started, until every worker has checked in").
type Machine struct {
	nbWorkers int
	pre       map[Phase][]Callback
	during    map[Phase][]Callback
	post      map[Phase][]Callback
	current   Phase
	started   bool
}

func NewMachine(nbWorkers int) *Machine {
	return &Machine{
		nbWorkers: nbWorkers,
		pre:       make(map[Phase][]Callback),
		during:    make(map[Phase][]Callback),
		post:      make(map[Phase][]Callback),
	}
}

// On registers a callback to run during one sub-phase of a runlevel
// transition. sub is "pre", "during", or "post" (spec.md's three
// sub-phases of each runlevel switch); anything else panics, since a
// typo here is a program bug, not a runtime condition.
func (m *Machine) On(p Phase, sub string, cb Callback) {
	switch sub {
	case "pre":
		m.pre[p] = append(m.pre[p], cb)
	case "during":
		m.during[p] = append(m.during[p], cb)
	case "post":
		m.post[p] = append(m.post[p], cb)
	default:
		panic(fmt.Sprintf("runlevel: unknown sub-phase %q", sub))
	}
}

// Run executes the full ten-phase sequence, barrier-synchronizing each
// phase across nbWorkers before advancing. It stops and returns the
// first error any worker's callback produces at any sub-phase — a
// failed bring-up must not proceed to a later runlevel with a PD in an
// inconsistent state.
func (m *Machine) Run(ctx context.Context) error {
	for _, p := range Sequence() {
		m.current = p
		if err := m.runPhase(ctx, p); err != nil {
			return fmt.Errorf("runlevel %s/%s: %w", p.Level, p.Dir, err)
		}
		nlog.Infof("runlevel %s/%s complete (%d workers checked in)", p.Level, p.Dir, m.nbWorkers)
	}
	m.started = true
	return nil
}

func (m *Machine) runPhase(ctx context.Context, p Phase) error {
	for _, subCbs := range [][]Callback{m.pre[p], m.during[p], m.post[p]} {
		if len(subCbs) == 0 {
			continue
		}
		if err := m.barrier(ctx, subCbs); err != nil {
			return err
		}
	}
	return nil
}

// barrier fan-outs one worker check-in per nbWorkers through every
// registered callback for the sub-phase, via errgroup: it waits for
// every worker and returns the first failure. Callbacks take no context,
// so one worker's failure does not interrupt the others.
func (m *Machine) barrier(ctx context.Context, cbs []Callback) error {
	g, _ := errgroup.WithContext(ctx)
	for w := 0; w < m.nbWorkers; w++ {
		worker := w
		g.Go(func() error {
			for _, cb := range cbs {
				if err := cb(worker); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

func (m *Machine) Current() Phase { return m.current }
func (m *Machine) Started() bool  { return m.started }

// DefaultPhaseTimeout pulls the configured per-phase timeout so callers
// can wrap Run with context.WithTimeout consistently.
func DefaultPhaseTimeout() time.Duration {
	return config.GCO.Get().RunlevelPhaseTimeout
}
