package cp

import "slices"

// compiled is the read-only form of a model shared by all workers.
type compiled struct {
	lb, ub  []int64
	boolean []bool
	cons    []constraint
	watch   [][]int
	// objCons is the index of the objective bound constraint, -1 without
	// objective.
	objCons int
	// objLb is the declared lower bound on the objective terms, -Inf when
	// none was set.
	objLb int64
	order []int
}

func compile(m *Model) *compiled {
	n := len(m.vars)
	c := &compiled{
		lb:      make([]int64, n),
		ub:      make([]int64, n),
		boolean: make([]bool, n),
		cons:    slices.Clone(m.cons),
		watch:   make([][]int, n),
		objCons: -1,
		objLb:   -Inf,
	}
	for i, v := range m.vars {
		c.lb[i], c.ub[i], c.boolean[i] = v.lb, v.ub, v.boolean
	}
	if m.minimize {
		if m.hasObjLb {
			c.objLb = m.objLb - m.objOffset
		}
		c.cons = append(c.cons, constraint{kind: kindLinear, name: "objective", terms: m.objective, lb: c.objLb, ub: Inf})
		c.objCons = len(c.cons) - 1
	}
	for k, ct := range c.cons {
		for _, t := range ct.terms {
			c.watch[t.v] = append(c.watch[t.v], k)
		}
		for _, l := range ct.enforce {
			c.watch[l.Index()] = append(c.watch[l.Index()], k)
		}
	}
	seen := make([]bool, n)
	for _, v := range m.strategy {
		if !seen[v] {
			seen[v] = true
			c.order = append(c.order, v)
		}
	}
	for v := 0; v < n; v++ {
		if !seen[v] {
			c.order = append(c.order, v)
		}
	}
	return c
}

type saved struct {
	v      int
	lo, hi int64
}

// domains holds trail-based variable bounds and the propagation queue.
type domains struct {
	c      *compiled
	lo, hi []int64
	trail  []saved
	queue  []int
	head   int
	queued []bool
	// objUb bounds the objective terms from above.
	objUb int64
}

func newDomains(c *compiled) *domains {
	return &domains{
		c:      c,
		lo:     slices.Clone(c.lb),
		hi:     slices.Clone(c.ub),
		queued: make([]bool, len(c.cons)),
		objUb:  Inf,
	}
}

func (d *domains) fixed(v int) bool { return d.lo[v] == d.hi[v] }

func (d *domains) enqueueCons(k int) {
	if !d.queued[k] {
		d.queued[k] = true
		d.queue = append(d.queue, k)
	}
}

func (d *domains) enqueueAll() {
	for k := range d.c.cons {
		d.enqueueCons(k)
	}
}

func (d *domains) touched(v int) {
	for _, k := range d.c.watch[v] {
		d.enqueueCons(k)
	}
}

func (d *domains) setLo(v int, x int64) bool {
	if x <= d.lo[v] {
		return true
	}
	if x > d.hi[v] {
		return false
	}
	d.trail = append(d.trail, saved{v: v, lo: d.lo[v], hi: d.hi[v]})
	d.lo[v] = x
	d.touched(v)
	return true
}

func (d *domains) setHi(v int, x int64) bool {
	if x >= d.hi[v] {
		return true
	}
	if x < d.lo[v] {
		return false
	}
	d.trail = append(d.trail, saved{v: v, lo: d.lo[v], hi: d.hi[v]})
	d.hi[v] = x
	d.touched(v)
	return true
}

func (d *domains) undo(mark int) {
	for i := len(d.trail) - 1; i >= mark; i-- {
		s := d.trail[i]
		d.lo[s.v], d.hi[s.v] = s.lo, s.hi
	}
	d.trail = d.trail[:mark]
}

// literal returns (value, assigned) for l.
func (d *domains) literal(l BoolVar) (bool, bool) {
	v := l.Index()
	if !d.fixed(v) {
		return false, false
	}
	val := d.lo[v] == 1
	if l.Negated() {
		val = !val
	}
	return val, true
}

func (d *domains) falsify(l BoolVar) bool {
	if l.Negated() {
		return d.setLo(l.Index(), 1)
	}
	return d.setHi(l.Index(), 0)
}

func (d *domains) clearQueue() {
	for _, k := range d.queue[d.head:] {
		d.queued[k] = false
	}
	d.queue = d.queue[:0]
	d.head = 0
}

// propagate runs the queue to a fixpoint. It returns false on conflict.
func (d *domains) propagate() bool {
	for d.head < len(d.queue) {
		k := d.queue[d.head]
		d.head++
		d.queued[k] = false
		if !d.propagateLinear(k) {
			d.clearQueue()
			return false
		}
	}
	d.queue = d.queue[:0]
	d.head = 0
	return true
}

func (d *domains) sums(terms []term) (int64, int64) {
	var minSum, maxSum int64
	for _, t := range terms {
		a, b := t.c*d.lo[t.v], t.c*d.hi[t.v]
		if t.c < 0 {
			a, b = b, a
		}
		minSum += a
		maxSum += b
	}
	return minSum, maxSum
}

func (d *domains) propagateLinear(k int) bool {
	ct := &d.c.cons[k]
	lb, ub := ct.lb, ct.ub
	if k == d.c.objCons {
		ub = d.objUb
	}
	var pending BoolVar
	unassigned := 0
	for _, l := range ct.enforce {
		val, ok := d.literal(l)
		if ok && !val {
			return true
		}
		if !ok {
			unassigned++
			pending = l
		}
	}
	if unassigned > 1 {
		return true
	}
	minSum, maxSum := d.sums(ct.terms)
	violated := lb > ub || minSum > ub || maxSum < lb
	if unassigned == 1 {
		if violated {
			return d.falsify(pending)
		}
		return true
	}
	if violated {
		return false
	}
	for _, t := range ct.terms {
		tmin, tmax := t.c*d.lo[t.v], t.c*d.hi[t.v]
		if t.c < 0 {
			tmin, tmax = tmax, tmin
		}
		if ub < Inf {
			u := ub - (minSum - tmin)
			if t.c > 0 {
				if !d.setHi(t.v, floorDiv(u, t.c)) {
					return false
				}
			} else if !d.setLo(t.v, ceilDiv(u, t.c)) {
				return false
			}
		}
		if lb > -Inf {
			l := lb - (maxSum - tmax)
			if t.c > 0 {
				if !d.setLo(t.v, ceilDiv(l, t.c)) {
					return false
				}
			} else if !d.setHi(t.v, floorDiv(l, t.c)) {
				return false
			}
		}
	}
	return true
}

func (d *domains) objective() int64 {
	if d.c.objCons < 0 {
		return 0
	}
	v, _ := d.sums(d.c.cons[d.c.objCons].terms)
	return v
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func ceilDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) == (b < 0) {
		q++
	}
	return q
}
