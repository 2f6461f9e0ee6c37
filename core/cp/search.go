package cp

import (
	"context"
	"math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kilianp07/crewsched/core/logger"
)

type valuePreference int

const (
	preferTrue valuePreference = iota
	preferFalse
	preferRandom
)

// shared is the state exchanged between portfolio workers.
type shared struct {
	ctx      context.Context
	deadline time.Time
	start    time.Time
	log      logger.Logger
	progress bool
	offset   int64
	lb       int64
	satisfy  bool

	stop      atomic.Bool
	completed atomic.Bool
	best      atomic.Int64

	mu       sync.Mutex
	solution []int64
	nsol     int
	worker   int
}

func newShared(ctx context.Context, c *compiled, m *Model, log logger.Logger, progress bool) *shared {
	s := &shared{
		ctx:      ctx,
		start:    time.Now(),
		log:      log,
		progress: progress,
		offset:   m.objOffset,
		lb:       c.objLb,
		satisfy:  c.objCons < 0,
	}
	s.best.Store(Inf)
	return s
}

func (s *shared) interrupted() bool {
	if s.stop.Load() {
		return true
	}
	if !s.deadline.IsZero() && time.Now().After(s.deadline) {
		s.stop.Store(true)
		return true
	}
	if s.ctx.Err() != nil {
		s.stop.Store(true)
		return true
	}
	return false
}

func (s *shared) finish() {
	s.completed.Store(true)
	s.stop.Store(true)
}

func (s *shared) submit(id int, values []int64, obj int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.solution != nil && obj >= s.best.Load() {
		return
	}
	s.solution = slices.Clone(values)
	s.best.Store(obj)
	s.nsol++
	s.worker = id
	if s.progress {
		s.log.Infof("#%d %.3fs best:%d worker:%d", s.nsol, time.Since(s.start).Seconds(), obj+s.offset, id)
	}
	switch {
	case s.satisfy:
		s.stop.Store(true)
	case obj <= s.lb:
		s.finish()
	}
}

type branch struct {
	v      int
	lo, hi int64
}

// worker runs one depth-first search over its own copy of the domains.
type worker struct {
	*domains
	id        int
	sh        *shared
	pref      valuePreference
	rng       *rand.Rand
	branches  int64
	conflicts int64
	rootBound int64
}

func newWorker(id int, c *compiled, sh *shared, seed int64) *worker {
	w := &worker{
		domains: newDomains(c),
		id:      id,
		sh:      sh,
		rng:     rand.New(rand.NewPCG(uint64(seed), uint64(id))),
	}
	switch id {
	case 0:
		w.pref = preferTrue
	case 1:
		w.pref = preferFalse
	default:
		w.pref = preferRandom
	}
	return w
}

func (w *worker) run() {
	w.enqueueAll()
	if !w.propagate() {
		w.sh.finish()
		return
	}
	w.rootBound = w.objective()
	if w.explore() {
		w.sh.finish()
	}
}

func (w *worker) syncBound() {
	if b := w.sh.best.Load(); b < Inf && b-1 < w.objUb {
		w.objUb = b - 1
	}
}

func (w *worker) pickVar() int {
	for _, v := range w.c.order {
		if !w.fixed(v) {
			return v
		}
	}
	return -1
}

func (w *worker) split(v int) (branch, branch) {
	lo, hi := w.lo[v], w.hi[v]
	low, high := branch{v: v, lo: lo, hi: lo}, branch{v: v, lo: lo + 1, hi: hi}
	if !w.c.boolean[v] {
		return low, high
	}
	switch w.pref {
	case preferTrue:
		return high, low
	case preferRandom:
		if w.rng.IntN(2) == 0 {
			return high, low
		}
	}
	return low, high
}

func (w *worker) apply(b branch) bool {
	w.syncBound()
	if w.c.objCons >= 0 {
		w.enqueueCons(w.c.objCons)
	}
	if !w.setLo(b.v, b.lo) || !w.setHi(b.v, b.hi) {
		w.clearQueue()
		return false
	}
	return w.propagate()
}

// explore returns false when the search was interrupted before the subtree
// was exhausted.
func (w *worker) explore() bool {
	if w.sh.stop.Load() {
		return false
	}
	if w.branches&255 == 0 && w.sh.interrupted() {
		return false
	}
	v := w.pickVar()
	if v < 0 {
		obj := w.objective()
		w.sh.submit(w.id, w.lo, obj)
		if w.sh.satisfy {
			return false
		}
		if obj-1 < w.objUb {
			w.objUb = obj - 1
		}
		return true
	}
	first, second := w.split(v)
	for _, b := range [2]branch{first, second} {
		mark := len(w.trail)
		w.branches++
		if w.apply(b) {
			if !w.explore() {
				w.undo(mark)
				return false
			}
		} else {
			w.conflicts++
		}
		w.undo(mark)
	}
	return true
}
