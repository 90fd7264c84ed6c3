package worker

import "github.com/cs20/ocr-sub000/hint"

// PriorityPool wraps a Pool with a second, preferentially-drained high
// priority queue, driven by an EDT's hint.KeyEdtPriority (spec.md §6
// "EDT_HINT_PRIORITY"), so that hint affects scheduling order here
// rather than being purely advisory.
type PriorityPool struct {
	*Pool
	hi chan func()
}

func NewPriorityPool(n int) *PriorityPool {
	return &PriorityPool{Pool: NewPool(n), hi: make(chan func(), n*16)}
}

func (p *PriorityPool) Start() {
	for i := 0; i < p.n; i++ {
		p.wg.Add(1)
		go p.priorityLoop(i)
	}
}

func (p *PriorityPool) priorityLoop(id int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case fn, ok := <-p.hi:
			if ok {
				p.runSafely(id, fn)
			}
		default:
		}
		select {
		case <-p.ctx.Done():
			return
		case fn := <-p.hi:
			p.runSafely(id, fn)
		case fn, ok := <-p.tasks:
			if !ok {
				return
			}
			p.runSafely(id, fn)
		}
	}
}

// SubmitHinted routes fn to the high priority queue when m carries a
// nonzero KeyEdtPriority, otherwise behaves like Submit.
func (p *PriorityPool) SubmitHinted(m *hint.Mask, fn func()) {
	if m != nil {
		if v, ok := m.Get(hint.KeyEdtPriority); ok && v > 0 {
			select {
			case p.hi <- fn:
			case <-p.ctx.Done():
			}
			return
		}
	}
	p.Submit(fn)
}
