package scheduling

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/kilianp07/crewsched/core/model"
)

// Transition is a viable move from one shift to another for the same
// driver, with the idle gap in minutes.
type Transition struct {
	From, To int
	Gap      int
}

// TransitionGraph holds the viable shift-to-shift transitions of a catalog.
// Node IDs are shift indices.
type TransitionGraph struct {
	g           *simple.WeightedDirectedGraph
	shifts      []model.Shift
	transitions []Transition
}

// NewTransitionGraph links every ordered pair of shifts whose gap is at least
// the minimum delay between shifts.
func NewTransitionGraph(cat model.Catalog, reg model.Regulations) *TransitionGraph {
	g := simple.NewWeightedDirectedGraph(0, math.Inf(1))
	for i := range cat.Shifts {
		g.AddNode(simple.Node(i))
	}
	t := &TransitionGraph{g: g, shifts: cat.Shifts}
	for i, s := range cat.Shifts {
		for j, o := range cat.Shifts {
			if i == j {
				continue
			}
			gap := s.GapTo(o)
			if gap < reg.MinDelayBetweenShifts {
				continue
			}
			g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(i), simple.Node(j), float64(gap)))
			t.transitions = append(t.transitions, Transition{From: i, To: j, Gap: gap})
		}
	}
	return t
}

// Len returns the number of shifts.
func (t *TransitionGraph) Len() int { return len(t.shifts) }

// Transitions returns every viable transition ordered by source then
// destination shift index.
func (t *TransitionGraph) Transitions() []Transition { return t.transitions }

// Successors returns the shifts reachable right after shift i.
func (t *TransitionGraph) Successors(i int) []int { return ids(t.g.From(int64(i))) }

// Predecessors returns the shifts that may directly precede shift i.
func (t *TransitionGraph) Predecessors(i int) []int { return ids(t.g.To(int64(i))) }

// Gap returns the idle minutes of the transition i -> j, if viable.
func (t *TransitionGraph) Gap(i, j int) (int, bool) {
	if i == j || !t.g.HasEdgeFromTo(int64(i), int64(j)) {
		return 0, false
	}
	w, _ := t.g.Weight(int64(i), int64(j))
	return int(w), true
}

// Openers returns, in catalog order, the shifts without viable predecessor.
// Such shifts always open a driver's day.
func (t *TransitionGraph) Openers() []int {
	var out []int
	for i := range t.shifts {
		if t.g.To(int64(i)).Len() == 0 {
			out = append(out, i)
		}
	}
	return out
}

// Order returns the shifts in a topological order of the transitions.
func (t *TransitionGraph) Order() ([]int, error) {
	sorted, err := topo.SortStabilized(t.g, nil)
	if err != nil {
		return nil, fmt.Errorf("transition graph is cyclic: %w", err)
	}
	out := make([]int, len(sorted))
	for i, n := range sorted {
		out[i] = int(n.ID())
	}
	return out, nil
}

func ids(it graph.Nodes) []int {
	nodes := graph.NodesOf(it)
	out := make([]int, len(nodes))
	for i, n := range nodes {
		out[i] = int(n.ID())
	}
	sort.Ints(out)
	return out
}

// ShiftWarning flags a shift that constrains or breaks the schedule.
type ShiftWarning struct {
	Index  int
	Label  string
	Reason string
}

func (w ShiftWarning) String() string {
	return fmt.Sprintf("shift %s (#%d): %s", w.Label, w.Index, w.Reason)
}

// UnreachableShifts reports shifts that cannot be chained with any other
// shift, and shifts that no driver can legally serve. Isolated shifts each
// need a dedicated driver and silently raise the driver count.
func UnreachableShifts(cat model.Catalog, reg model.Regulations) []ShiftWarning {
	t := NewTransitionGraph(cat, reg)
	var out []ShiftWarning
	for i, s := range cat.Shifts {
		warn := func(format string, args ...any) {
			out = append(out, ShiftWarning{Index: i, Label: s.Label, Reason: fmt.Sprintf(format, args...)})
		}
		if s.DrivingMinutes > reg.MaxDrivingWithoutBreak {
			warn("driving %d min exceeds %d min without break, no driver can serve it", s.DrivingMinutes, reg.MaxDrivingWithoutBreak)
		}
		day := s.Span() + reg.Overhead()
		if day > reg.MaxWorkingTime {
			warn("working day of %d min exceeds the %d min maximum", day, reg.MaxWorkingTime)
		}
		isolated := t.g.From(int64(i)).Len() == 0 && t.g.To(int64(i)).Len() == 0
		if !isolated || len(cat.Shifts) == 1 {
			continue
		}
		warn("no viable predecessor or successor, needs a dedicated driver")
		if day < reg.MinWorkingTime {
			warn("isolated working day of %d min is below the %d min minimum", day, reg.MinWorkingTime)
		}
	}
	return out
}
