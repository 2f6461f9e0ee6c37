package cp

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func solve(t *testing.T, m *Model, workers int) *Response {
	t.Helper()
	p := DefaultParameters()
	p.NumWorkers = workers
	resp, err := Solve(context.Background(), m, p)
	require.NoError(t, err)
	return resp
}

func TestSolveMinimizesLinearObjective(t *testing.T) {
	m := NewModel("lp")
	x := m.NewIntVar(0, 10, "x")
	y := m.NewIntVar(0, 10, "y")
	m.AddGreaterOrEqual(Sum(x, y), NewConstant(7))
	m.Minimize(NewLinearExpr().AddTerm(x, 2).AddTerm(y, 3))

	resp := solve(t, m, 1)
	assert.Equal(t, Optimal, resp.Status)
	assert.Equal(t, int64(14), resp.ObjectiveValue)
	assert.Equal(t, int64(7), resp.Value(x))
	assert.Equal(t, int64(0), resp.Value(y))
	assert.Equal(t, int64(14), resp.Eval(NewLinearExpr().AddTerm(x, 2).AddTerm(y, 3)))
}

func TestSolveInfeasible(t *testing.T) {
	m := NewModel("inf")
	a := m.NewBoolVar("a")
	b := m.NewBoolVar("b")
	m.AddExactlyOne(a, b)
	m.AddBoolOr(a)
	m.AddBoolOr(b)

	resp := solve(t, m, 2)
	assert.Equal(t, Infeasible, resp.Status)
	assert.False(t, resp.Status.Solved())
}

func TestOnlyEnforceIf(t *testing.T) {
	m := NewModel("enforce")
	x := m.NewIntVar(0, 10, "x")
	b := m.NewBoolVar("b")
	m.AddGreaterOrEqual(x, NewConstant(5)).OnlyEnforceIf(b)
	m.AddLessOrEqual(x, NewConstant(3)).OnlyEnforceIf(b.Not())
	m.AddLessOrEqual(x, NewConstant(8))
	m.Minimize(NewLinearExpr().AddTerm(x, -1))

	resp := solve(t, m, 1)
	require.Equal(t, Optimal, resp.Status)
	assert.Equal(t, int64(-8), resp.ObjectiveValue)
	assert.True(t, resp.BoolValue(b))
	assert.False(t, resp.BoolValue(b.Not()))
}

func TestEnforcementLiteralIsFalsified(t *testing.T) {
	m := NewModel("falsify")
	x := m.NewIntVar(0, 3, "x")
	b := m.NewBoolVar("b")
	m.AddGreaterOrEqual(x, NewConstant(5)).OnlyEnforceIf(b)

	resp := solve(t, m, 1)
	require.Equal(t, Optimal, resp.Status)
	assert.False(t, resp.BoolValue(b))
}

func TestNegatedLiteralInExpression(t *testing.T) {
	m := NewModel("neg")
	a := m.NewBoolVar("a")
	x := m.NewIntVar(0, 1, "x")
	m.AddEquality(Sum(a.Not(), x), NewConstant(1))
	m.AddBoolOr(a)

	resp := solve(t, m, 1)
	require.Equal(t, Optimal, resp.Status)
	assert.Equal(t, int64(1), resp.Value(x))
	assert.True(t, resp.BoolValue(a))
}

func TestImplicationChain(t *testing.T) {
	m := NewModel("chain")
	lits := make([]BoolVar, 5)
	for i := range lits {
		lits[i] = m.NewBoolVar(fmt.Sprintf("w%d", i))
	}
	for i := 0; i+1 < len(lits); i++ {
		m.AddImplication(lits[i].Not(), lits[i+1].Not())
	}
	m.AddLinearConstraint(Sum(BoolsAsArgs(lits)...), 3, Inf)
	m.Minimize(Sum(BoolsAsArgs(lits)...))

	resp := solve(t, m, 3)
	require.Equal(t, Optimal, resp.Status)
	assert.Equal(t, int64(3), resp.ObjectiveValue)
	for i, l := range lits {
		assert.Equal(t, i < 3, resp.BoolValue(l), "w%d", i)
	}
}

func TestPortfolioFindsSameOptimum(t *testing.T) {
	weights := []int64{3, 4, 5, 6}
	values := []int64{4, 5, 7, 8}
	for _, workers := range []int{1, 2, 4} {
		m := NewModel("knapsack")
		items := make([]LinearArgument, len(weights))
		for i := range weights {
			items[i] = m.NewBoolVar(fmt.Sprintf("item%d", i))
		}
		m.AddLinearConstraint(NewLinearExpr().AddWeightedSum(items, weights), -Inf, 10)
		neg := make([]int64, len(values))
		for i, v := range values {
			neg[i] = -v
		}
		m.Minimize(NewLinearExpr().AddWeightedSum(items, neg))

		resp := solve(t, m, workers)
		assert.Equal(t, Optimal, resp.Status, "workers=%d", workers)
		assert.Equal(t, int64(-13), resp.ObjectiveValue, "workers=%d", workers)
	}
}

func TestPigeonholeIsInfeasible(t *testing.T) {
	m := NewModel("pigeons")
	const pigeons, holes = 4, 3
	p := make([][]BoolVar, pigeons)
	for i := range p {
		p[i] = make([]BoolVar, holes)
		for h := range p[i] {
			p[i][h] = m.NewBoolVar(fmt.Sprintf("p%d_%d", i, h))
		}
		m.AddExactlyOne(p[i]...)
	}
	for h := 0; h < holes; h++ {
		col := make([]BoolVar, pigeons)
		for i := range col {
			col[i] = p[i][h]
		}
		m.AddLinearConstraint(Sum(BoolsAsArgs(col)...), 0, 1)
	}
	resp := solve(t, m, 2)
	assert.Equal(t, Infeasible, resp.Status)
}

// pigeonholeUnless adds n+1 pigeons into n holes, active only while every
// literal in off is false.
func pigeonholeUnless(m *Model, name string, n int, off ...BoolVar) {
	enforce := make([]BoolVar, len(off))
	for i, b := range off {
		enforce[i] = b.Not()
	}
	p := make([][]BoolVar, n+1)
	for i := range p {
		p[i] = make([]BoolVar, n)
		for h := range p[i] {
			p[i][h] = m.NewBoolVar(fmt.Sprintf("%s%d_%d", name, i, h))
		}
		m.AddExactlyOne(p[i]...).OnlyEnforceIf(enforce...)
	}
	for h := 0; h < n; h++ {
		col := make([]BoolVar, len(p))
		for i := range col {
			col[i] = p[i][h]
		}
		m.AddLinearConstraint(Sum(BoolsAsArgs(col)...), 0, 1).OnlyEnforceIf(enforce...)
	}
}

func TestObjectiveLowerBoundEndsSearch(t *testing.T) {
	m := NewModel("lb")
	z := m.NewBoolVar("z")
	pigeonholeUnless(m, "p", 9, z)
	m.Minimize(NewLinearExpr().Add(z).AddConstant(10))
	m.SetObjectiveLowerBound(11)

	resp := solve(t, m, 1)
	assert.Equal(t, Optimal, resp.Status)
	assert.EqualValues(t, 11, resp.ObjectiveValue)
	assert.EqualValues(t, 11, resp.BestObjectiveBound)
	assert.Less(t, resp.NumBranches, int64(1000))

	lb, ok := m.ObjectiveLowerBound()
	assert.True(t, ok)
	assert.EqualValues(t, 11, lb)
}

func TestObjectiveLowerBoundReportedOnTimeout(t *testing.T) {
	m := NewModel("lb-timeout")
	a := m.NewBoolVar("a")
	b := m.NewBoolVar("b")
	pigeonholeUnless(m, "p", 11, a)
	pigeonholeUnless(m, "q", 11, b)
	m.Minimize(Sum(a, b))
	m.SetObjectiveLowerBound(1)

	p := DefaultParameters()
	p.MaxTime = 200 * time.Millisecond
	resp, err := Solve(context.Background(), m, p)
	require.NoError(t, err)
	assert.Equal(t, Feasible, resp.Status)
	assert.EqualValues(t, 2, resp.ObjectiveValue)
	assert.EqualValues(t, 1, resp.BestObjectiveBound)
}

func TestObjectiveLowerBoundAboveOptimumIsInfeasible(t *testing.T) {
	m := NewModel("lb-inf")
	x := m.NewIntVar(0, 3, "x")
	y := m.NewIntVar(0, 3, "y")
	m.AddLessOrEqual(Sum(x, y), NewConstant(2))
	m.Minimize(NewLinearExpr().AddTerm(x, -1).AddTerm(y, -1))
	m.SetObjectiveLowerBound(1)

	resp := solve(t, m, 2)
	assert.Equal(t, Infeasible, resp.Status)
}

func TestSolveInvalidModel(t *testing.T) {
	m := NewModel("bad")
	m.NewIntVar(5, 1, "x")
	resp, err := Solve(context.Background(), m, DefaultParameters())
	assert.ErrorIs(t, err, ErrModelInvalid)
	assert.Equal(t, ModelInvalid, resp.Status)
}

func TestSolveCancelledContext(t *testing.T) {
	m := NewModel("cancel")
	x := m.NewIntVar(0, 10, "x")
	y := m.NewIntVar(0, 10, "y")
	m.AddGreaterOrEqual(Sum(x, y), NewConstant(7))
	m.Minimize(Sum(x, y))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	resp, err := Solve(ctx, m, DefaultParameters())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Unknown, resp.Status)
}

func TestSolveLogsProgress(t *testing.T) {
	m := NewModel("log")
	x := m.NewIntVar(0, 3, "x")
	m.Minimize(x)
	rec := &recordingLogger{}
	p := DefaultParameters()
	p.LogSearchProgress = true
	p.Extra = map[string]string{"foo": "bar"}
	resp, err := Solve(context.Background(), m, p, WithLogger(rec))
	require.NoError(t, err)
	assert.Equal(t, Optimal, resp.Status)
	assert.Equal(t, int64(0), resp.ObjectiveValue)
	joined := strings.Join(rec.lines, "\n")
	assert.Contains(t, joined, "starting search")
	assert.Contains(t, joined, "search done: status=OPTIMAL")
	assert.Contains(t, joined, "foo:bar")
}

func TestNormalizeMergesTerms(t *testing.T) {
	m := NewModel("norm")
	x := m.NewIntVar(0, 5, "x")
	y := m.NewIntVar(0, 5, "y")
	terms, offset := normalize(NewLinearExpr().Add(x).Add(y).Add(x).AddTerm(x, -2).AddConstant(3))
	assert.Equal(t, []term{{v: y.Index(), c: 1}}, terms)
	assert.Equal(t, int64(3), offset)
}

func TestDivisionRounding(t *testing.T) {
	cases := []struct{ a, b, floor, ceil int64 }{
		{7, 2, 3, 4},
		{-7, 2, -4, -3},
		{7, -2, -4, -3},
		{-7, -2, 3, 4},
		{6, 3, 2, 2},
	}
	for _, c := range cases {
		assert.Equal(t, c.floor, floorDiv(c.a, c.b), "floor %d/%d", c.a, c.b)
		assert.Equal(t, c.ceil, ceilDiv(c.a, c.b), "ceil %d/%d", c.a, c.b)
	}
}

func TestWriteYAML(t *testing.T) {
	m := NewModel("dump")
	x := m.NewIntVar(0, 9, "x")
	b := m.NewBoolVar("b")
	m.AddLessOrEqual(x, NewConstant(4)).OnlyEnforceIf(b.Not()).WithName("cap")
	m.AddExactlyOne(b)
	m.Minimize(x)
	m.SetObjectiveLowerBound(1)
	m.AddDecisionStrategy(b, x)

	var buf bytes.Buffer
	require.NoError(t, m.WriteYAML(&buf))

	var out map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "dump", out["name"])
	assert.Len(t, out["variables"], 2)
	assert.Len(t, out["constraints"], 2)
	assert.Contains(t, buf.String(), "not b")
	assert.Contains(t, buf.String(), "kind: exactly_one")
	assert.Contains(t, buf.String(), "decision_strategy: [b, x]")
	assert.Contains(t, buf.String(), "lower_bound: 1")

	st := m.Stats()
	assert.Equal(t, Stats{Variables: 2, Booleans: 1, Constraints: 2, Enforced: 1}, st)
}

type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) Debugf(format string, args ...any) {
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}
func (r *recordingLogger) Debugw(msg string, _ map[string]any) { r.lines = append(r.lines, msg) }
func (r *recordingLogger) Infof(format string, args ...any) {
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}
func (r *recordingLogger) Warnf(format string, args ...any) {
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}
func (r *recordingLogger) Errorf(format string, args ...any) {
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}
