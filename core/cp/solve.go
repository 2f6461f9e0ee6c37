package cp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kilianp07/crewsched/core/logger"
)

type solveOptions struct {
	log logger.Logger
}

// Option configures Solve.
type Option func(*solveOptions)

// WithLogger routes search progress to l.
func WithLogger(l logger.Logger) Option {
	return func(o *solveOptions) { o.log = l }
}

// Solve searches for an optimal solution of m. It blocks until the search
// is exhausted, the time limit is reached or ctx is done. A cancelled
// context without solution returns the context error.
func Solve(ctx context.Context, m *Model, params Parameters, opts ...Option) (*Response, error) {
	o := solveOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	log := logger.OrNop(o.log)

	if err := m.Validate(); err != nil {
		return &Response{Status: ModelInvalid}, err
	}
	c := compile(m)
	sh := newShared(ctx, c, m, log, params.LogSearchProgress)
	if params.MaxTime > 0 {
		sh.deadline = sh.start.Add(params.MaxTime)
	}
	if dl, ok := ctx.Deadline(); ok && (sh.deadline.IsZero() || dl.Before(sh.deadline)) {
		sh.deadline = dl
	}
	n := params.NumWorkers
	if n < 1 {
		n = 1
	}
	if params.LogSearchProgress {
		st := m.Stats()
		log.Infof("starting search on %q: %d variables (%d booleans), %d constraints, %d workers",
			m.Name(), st.Variables, st.Booleans, st.Constraints, n)
		for k, v := range params.Extra {
			log.Warnf("ignoring unsupported solver parameter %s:%s", k, v)
		}
	}

	workers := make([]*worker, n)
	var wg sync.WaitGroup
	for i := range workers {
		w := newWorker(i, c, sh, params.RandomSeed)
		workers[i] = w
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.run()
		}()
	}
	wg.Wait()

	resp := &Response{WallTime: time.Since(sh.start), Worker: sh.worker, NumSolutions: sh.nsol}
	for _, w := range workers {
		resp.NumBranches += w.branches
		resp.NumConflicts += w.conflicts
	}
	found := sh.solution != nil
	switch {
	case found && (sh.completed.Load() || sh.satisfy):
		resp.Status = Optimal
	case found:
		resp.Status = Feasible
	case sh.completed.Load():
		resp.Status = Infeasible
	default:
		resp.Status = Unknown
	}
	if found {
		resp.values = sh.solution
		resp.ObjectiveValue = sh.best.Load() + sh.offset
		resp.BestObjectiveBound = max(workers[0].rootBound, c.objLb) + sh.offset
		if resp.Status == Optimal {
			resp.BestObjectiveBound = resp.ObjectiveValue
		}
	}
	if params.LogSearchProgress {
		log.Infof("search done: status=%s objective=%d bound=%d solutions=%d branches=%d conflicts=%d wall=%s",
			resp.Status, resp.ObjectiveValue, resp.BestObjectiveBound, resp.NumSolutions,
			resp.NumBranches, resp.NumConflicts, resp.WallTime.Round(time.Millisecond))
	}
	if !resp.Status.Solved() && resp.Status != Infeasible && ctx.Err() != nil {
		return resp, fmt.Errorf("solve interrupted: %w", ctx.Err())
	}
	return resp, nil
}
