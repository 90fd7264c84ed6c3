package edt

import "github.com/cs20/ocr-sub000/internal/nlog"

// run executes the EDT body on whatever goroutine the worker pool
// handed it (env.Schedule in beginAcquire already crossed onto a worker;
// run itself is synchronous). spec.md §4.3 "Execution": the body sees
// paramv and the acquired dependence vector, and its return value (if
// any) satisfies the instance's own output event.
func (i *Instance) run() {
	i.setState(StateRunning)

	if i.propFinish && i.finishScope == nil {
		// spec.md §4.4: latch construction is deferred to here so it is
		// co-located with the EDT body instead of built speculatively at
		// WorkCreate time for an EDT that might never run (e.g. destroyed
		// while still ALLDEPS).
		i.finishScope = i.env.OpenFinishScope(i.Guid, i.Output, i.parentFinish)
	}

	ctx := i.ctx
	if scope := i.ambientFinishScope(); scope != nil {
		ctx = WithFinishScope(ctx, scope)
	}

	out, err := i.Template.Fn(ctx, i.ParamV, i.dbv)
	if err == ErrReschedule {
		i.setState(StateResched)
		i.env.Schedule(i.run)
		return
	}
	if err != nil {
		nlog.Errorln("edt", i.Guid, "body returned error:", err)
	}
	i.epilogue(out)
}
