package cp

import (
	"errors"
	"fmt"
)

// Inf bounds one side of a linear constraint that is unbounded.
const Inf int64 = 1 << 60

// maxDomain bounds variable domains so that linear sums cannot overflow.
const maxDomain int64 = 1 << 40

// ErrModelInvalid is returned by Validate and Solve for malformed models.
var ErrModelInvalid = errors.New("model invalid")

type constraintKind int

const (
	kindLinear constraintKind = iota
	kindExactlyOne
	kindBoolOr
)

func (k constraintKind) String() string {
	switch k {
	case kindExactlyOne:
		return "exactly_one"
	case kindBoolOr:
		return "bool_or"
	default:
		return "linear"
	}
}

type variable struct {
	name    string
	lb, ub  int64
	boolean bool
}

// constraint is lb <= sum(terms) <= ub, active when every enforcement
// literal holds. Exactly-one and clauses are stored in linear form.
type constraint struct {
	kind    constraintKind
	name    string
	terms   []term
	lb, ub  int64
	enforce []BoolVar
}

// Model is a constraint model under construction. It is not safe for
// concurrent mutation; Solve only reads it.
type Model struct {
	name      string
	vars      []variable
	cons      []constraint
	objective []term
	objOffset int64
	objLb     int64
	hasObjLb  bool
	minimize  bool
	strategy  []int
	errs      []error
}

// NewModel returns an empty model.
func NewModel(name string) *Model {
	return &Model{name: name}
}

// Name returns the model name.
func (m *Model) Name() string { return m.name }

// NewIntVar creates an integer variable with domain [lb, ub].
func (m *Model) NewIntVar(lb, ub int64, name string) IntVar {
	if lb > ub {
		m.errs = append(m.errs, fmt.Errorf("variable %q: empty domain [%d,%d]", name, lb, ub))
	}
	if lb < -maxDomain || ub > maxDomain {
		m.errs = append(m.errs, fmt.Errorf("variable %q: domain [%d,%d] too large", name, lb, ub))
	}
	m.vars = append(m.vars, variable{name: name, lb: lb, ub: ub})
	return IntVar{ind: len(m.vars) - 1}
}

// NewBoolVar creates a boolean variable.
func (m *Model) NewBoolVar(name string) BoolVar {
	m.vars = append(m.vars, variable{name: name, lb: 0, ub: 1, boolean: true})
	return BoolVar{ind: len(m.vars) - 1}
}

// NewConstant creates an integer variable fixed to v.
func (m *Model) NewConstant(v int64) IntVar {
	return m.NewIntVar(v, v, fmt.Sprintf("%d", v))
}

// Constraint is a handle used to refine a constraint after creation.
type Constraint struct {
	m   *Model
	ind int
}

// Index returns the constraint index in its model.
func (c Constraint) Index() int { return c.ind }

// OnlyEnforceIf adds enforcement literals: the constraint must hold only
// when all of them are true.
func (c Constraint) OnlyEnforceIf(lits ...BoolVar) Constraint {
	ct := &c.m.cons[c.ind]
	ct.enforce = append(ct.enforce, lits...)
	return c
}

// WithName names the constraint in dumps.
func (c Constraint) WithName(name string) Constraint {
	c.m.cons[c.ind].name = name
	return c
}

func (m *Model) add(kind constraintKind, la LinearArgument, lb, ub int64) Constraint {
	terms, offset := normalize(la)
	if lb > -Inf {
		lb -= offset
	}
	if ub < Inf {
		ub -= offset
	}
	if lb > ub {
		m.errs = append(m.errs, fmt.Errorf("constraint %d: empty bounds [%d,%d]", len(m.cons), lb, ub))
	}
	m.cons = append(m.cons, constraint{kind: kind, terms: terms, lb: lb, ub: ub})
	return Constraint{m: m, ind: len(m.cons) - 1}
}

// AddLinearConstraint adds lb <= e <= ub. Use Inf or -Inf for an open side.
func (m *Model) AddLinearConstraint(e LinearArgument, lb, ub int64) Constraint {
	return m.add(kindLinear, e, lb, ub)
}

// AddEquality adds lhs == rhs.
func (m *Model) AddEquality(lhs, rhs LinearArgument) Constraint {
	return m.add(kindLinear, NewLinearExpr().Add(lhs).AddTerm(rhs, -1), 0, 0)
}

// AddLessOrEqual adds lhs <= rhs.
func (m *Model) AddLessOrEqual(lhs, rhs LinearArgument) Constraint {
	return m.add(kindLinear, NewLinearExpr().Add(lhs).AddTerm(rhs, -1), -Inf, 0)
}

// AddGreaterOrEqual adds lhs >= rhs.
func (m *Model) AddGreaterOrEqual(lhs, rhs LinearArgument) Constraint {
	return m.add(kindLinear, NewLinearExpr().Add(lhs).AddTerm(rhs, -1), 0, Inf)
}

// AddExactlyOne requires exactly one literal to be true.
func (m *Model) AddExactlyOne(lits ...BoolVar) Constraint {
	return m.add(kindExactlyOne, Sum(BoolsAsArgs(lits)...), 1, 1)
}

// AddBoolOr requires at least one literal to be true.
func (m *Model) AddBoolOr(lits ...BoolVar) Constraint {
	return m.add(kindBoolOr, Sum(BoolsAsArgs(lits)...), 1, Inf)
}

// AddImplication adds a => b.
func (m *Model) AddImplication(a, b BoolVar) Constraint {
	return m.AddBoolOr(a.Not(), b)
}

// Minimize sets the objective. A later call replaces the previous one.
func (m *Model) Minimize(e LinearArgument) {
	m.objective, m.objOffset = normalize(e)
	m.minimize = true
}

// SetObjectiveLowerBound declares a proven lower bound on the objective
// value. The bound is propagated on the objective and the search ends as
// soon as an incumbent reaches it.
func (m *Model) SetObjectiveLowerBound(lb int64) {
	m.objLb, m.hasObjLb = lb, true
}

// ObjectiveLowerBound returns the declared objective lower bound.
func (m *Model) ObjectiveLowerBound() (int64, bool) { return m.objLb, m.hasObjLb }

// HasObjective reports whether Minimize was called.
func (m *Model) HasObjective() bool { return m.minimize }

// AddDecisionStrategy appends variables to the branching order. Variables
// not listed are branched on afterwards in creation order.
func (m *Model) AddDecisionStrategy(vars ...Var) {
	for _, v := range vars {
		m.strategy = append(m.strategy, v.Index())
	}
}

// Stats summarizes the model size.
type Stats struct {
	Variables   int
	Booleans    int
	Constraints int
	Enforced    int
}

// Stats returns size counters for the model.
func (m *Model) Stats() Stats {
	s := Stats{Variables: len(m.vars), Constraints: len(m.cons)}
	for _, v := range m.vars {
		if v.boolean {
			s.Booleans++
		}
	}
	for _, c := range m.cons {
		if len(c.enforce) > 0 {
			s.Enforced++
		}
	}
	return s
}

// VarName returns the name of the variable behind v.
func (m *Model) VarName(v Var) string {
	i := v.Index()
	if i < 0 || i >= len(m.vars) {
		return ""
	}
	return m.vars[i].name
}

// Validate checks that the model is well formed.
func (m *Model) Validate() error {
	if len(m.errs) > 0 {
		return fmt.Errorf("%w: %w", ErrModelInvalid, errors.Join(m.errs...))
	}
	n := len(m.vars)
	check := func(v int) bool { return v >= 0 && v < n }
	for i, c := range m.cons {
		for _, t := range c.terms {
			if !check(t.v) {
				return fmt.Errorf("%w: constraint %d references unknown variable %d", ErrModelInvalid, i, t.v)
			}
		}
		for _, l := range c.enforce {
			if !check(l.Index()) || !m.vars[l.Index()].boolean {
				return fmt.Errorf("%w: constraint %d has a non boolean enforcement literal", ErrModelInvalid, i)
			}
		}
	}
	for _, t := range m.objective {
		if !check(t.v) {
			return fmt.Errorf("%w: objective references unknown variable %d", ErrModelInvalid, t.v)
		}
	}
	for _, v := range m.strategy {
		if !check(v) {
			return fmt.Errorf("%w: decision strategy references unknown variable %d", ErrModelInvalid, v)
		}
	}
	return nil
}
