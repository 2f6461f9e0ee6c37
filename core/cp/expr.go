package cp

import "slices"

// Var is implemented by IntVar and BoolVar.
type Var interface {
	Index() int
}

// LinearArgument is anything that can appear in a linear expression.
type LinearArgument interface {
	addToLinearExpr(e *LinearExpr, coeff int64)
}

// IntVar is a handle on a bounded integer variable of a Model.
type IntVar struct {
	ind int
}

// Index returns the variable index in its model.
func (v IntVar) Index() int { return v.ind }

func (v IntVar) addToLinearExpr(e *LinearExpr, coeff int64) {
	e.terms = append(e.terms, term{v: v.ind, c: coeff})
}

// BoolVar is a literal: a boolean variable or its negation.
type BoolVar struct {
	// ind >= 0 is the positive literal of variable ind, ind < 0 is the
	// negation of variable -ind-1.
	ind int
}

// Index returns the index of the underlying variable.
func (b BoolVar) Index() int {
	if b.ind < 0 {
		return -b.ind - 1
	}
	return b.ind
}

// Negated reports whether b is a negative literal.
func (b BoolVar) Negated() bool { return b.ind < 0 }

// Not returns the negation of b.
func (b BoolVar) Not() BoolVar { return BoolVar{ind: -b.ind - 1} }

func (b BoolVar) addToLinearExpr(e *LinearExpr, coeff int64) {
	if b.ind >= 0 {
		e.terms = append(e.terms, term{v: b.ind, c: coeff})
		return
	}
	// not(x) == 1 - x
	e.offset += coeff
	e.terms = append(e.terms, term{v: b.Index(), c: -coeff})
}

type term struct {
	v int
	c int64
}

// LinearExpr is a weighted sum of variables plus a constant offset.
type LinearExpr struct {
	terms  []term
	offset int64
}

// NewLinearExpr returns an empty expression.
func NewLinearExpr() *LinearExpr { return &LinearExpr{} }

// NewConstant returns an expression holding only the constant c.
func NewConstant(c int64) *LinearExpr { return &LinearExpr{offset: c} }

// Sum returns the expression sum(args).
func Sum(args ...LinearArgument) *LinearExpr { return NewLinearExpr().AddSum(args...) }

// Add adds la to e.
func (e *LinearExpr) Add(la LinearArgument) *LinearExpr {
	la.addToLinearExpr(e, 1)
	return e
}

// AddTerm adds coeff*la to e.
func (e *LinearExpr) AddTerm(la LinearArgument, coeff int64) *LinearExpr {
	la.addToLinearExpr(e, coeff)
	return e
}

// AddConstant adds c to the offset of e.
func (e *LinearExpr) AddConstant(c int64) *LinearExpr {
	e.offset += c
	return e
}

// AddSum adds every argument with coefficient one.
func (e *LinearExpr) AddSum(las ...LinearArgument) *LinearExpr {
	for _, la := range las {
		la.addToLinearExpr(e, 1)
	}
	return e
}

// AddWeightedSum adds sum(coeffs[i]*las[i]). The slices must have the same
// length.
func (e *LinearExpr) AddWeightedSum(las []LinearArgument, coeffs []int64) *LinearExpr {
	for i, la := range las {
		la.addToLinearExpr(e, coeffs[i])
	}
	return e
}

// Offset returns the constant part of e.
func (e *LinearExpr) Offset() int64 { return e.offset }

// NumTerms returns the number of (possibly repeated) variable terms.
func (e *LinearExpr) NumTerms() int { return len(e.terms) }

func (e *LinearExpr) addToLinearExpr(o *LinearExpr, coeff int64) {
	n := len(e.terms)
	for i := 0; i < n; i++ {
		t := e.terms[i]
		o.terms = append(o.terms, term{v: t.v, c: t.c * coeff})
	}
	o.offset += e.offset * coeff
}

// normalize merges repeated variables and drops zero coefficients.
func normalize(la LinearArgument) ([]term, int64) {
	e := NewLinearExpr()
	la.addToLinearExpr(e, 1)
	ts := slices.Clone(e.terms)
	slices.SortFunc(ts, func(a, b term) int { return a.v - b.v })
	out := ts[:0]
	for _, t := range ts {
		if n := len(out); n > 0 && out[n-1].v == t.v {
			out[n-1].c += t.c
			continue
		}
		out = append(out, t)
	}
	merged := out[:0]
	for _, t := range out {
		if t.c != 0 {
			merged = append(merged, t)
		}
	}
	return merged, e.offset
}

// BoolsAsArgs converts literals to linear arguments.
func BoolsAsArgs(lits []BoolVar) []LinearArgument {
	out := make([]LinearArgument, len(lits))
	for i, l := range lits {
		out[i] = l
	}
	return out
}
