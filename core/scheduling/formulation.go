package scheduling

import (
	"fmt"

	"github.com/kilianp07/crewsched/core/cp"
	"github.com/kilianp07/crewsched/core/model"
)

// BuildOptions selects what a formulation optimizes.
type BuildOptions struct {
	Mode Mode
	// Drivers is the pool size in ModeMinimizeDrivers and the number of
	// mandatory drivers in ModeMinimizeWorkingTime.
	Drivers int
	// ObjectiveLowerBound is a proven lower bound on the objective. The
	// search stops as soon as an incumbent reaches it. Zero disables it.
	ObjectiveLowerBound int
}

// Formulation is the constraint model of one phase together with the
// variable handles needed to read a solution back. Per (driver, shift)
// variables are stored in tables indexed [driver][shift]; a formulation is
// built once and never reused across phases.
type Formulation struct {
	Model   *cp.Model
	Mode    Mode
	Drivers int

	catalog  model.Catalog
	reg      model.Regulations
	graph    *TransitionGraph
	minStart int64
	maxEnd   int64
	// outgoing transition indices per shift
	next [][]int

	start   []cp.IntVar
	end     []cp.IntVar
	driving []cp.IntVar
	working []cp.IntVar
	// isWorking is only set in ModeMinimizeDrivers.
	isWorking []cp.BoolVar

	active     [][]cp.BoolVar
	cumulative [][]cp.IntVar
	sinceBreak [][]cp.IntVar
	sourceArcs [][]cp.BoolVar
	sinkArcs   [][]cp.BoolVar
	// arcs[d][k] is the literal of transition k for driver d.
	arcs [][]cp.BoolVar

	// enteringArcs and leavingArcs gather, per shift, the non self-loop
	// arcs of every driver.
	enteringArcs [][]cp.BoolVar
	leavingArcs  [][]cp.BoolVar
	delay        *cp.LinearExpr
}

// Build assembles the model for the catalog under the regulations.
func Build(cat model.Catalog, reg model.Regulations, opts BuildOptions) (*Formulation, error) {
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("regulations: %w", err)
	}
	if opts.Drivers < 1 {
		return nil, fmt.Errorf("at least one driver is required, got %d", opts.Drivers)
	}
	f := newFormulation(cat, reg, opts)
	for d := 0; d < f.Drivers; d++ {
		f.addDriver(d)
	}
	f.addCoverage()
	f.addRedundant()
	f.breakSymmetries()
	f.setObjective(opts.ObjectiveLowerBound)
	f.addDecisionStrategy()
	return f, nil
}

func newFormulation(cat model.Catalog, reg model.Regulations, opts BuildOptions) *Formulation {
	g := NewTransitionGraph(cat, reg)
	n, drivers := len(cat.Shifts), opts.Drivers
	f := &Formulation{
		Model:        cp.NewModel(fmt.Sprintf("%s_%s_%d", cat.Name, opts.Mode, drivers)),
		Mode:         opts.Mode,
		Drivers:      drivers,
		catalog:      cat,
		reg:          reg,
		graph:        g,
		minStart:     int64(cat.MinStart()),
		maxEnd:       int64(cat.MaxEnd()),
		next:         make([][]int, n),
		start:        make([]cp.IntVar, drivers),
		end:          make([]cp.IntVar, drivers),
		driving:      make([]cp.IntVar, drivers),
		working:      make([]cp.IntVar, drivers),
		active:       make([][]cp.BoolVar, drivers),
		cumulative:   make([][]cp.IntVar, drivers),
		sinceBreak:   make([][]cp.IntVar, drivers),
		sourceArcs:   make([][]cp.BoolVar, drivers),
		sinkArcs:     make([][]cp.BoolVar, drivers),
		arcs:         make([][]cp.BoolVar, drivers),
		enteringArcs: make([][]cp.BoolVar, n),
		leavingArcs:  make([][]cp.BoolVar, n),
		delay:        cp.NewLinearExpr(),
	}
	if opts.Mode == ModeMinimizeDrivers {
		f.isWorking = make([]cp.BoolVar, drivers)
	}
	for k, t := range g.Transitions() {
		f.next[t.From] = append(f.next[t.From], k)
	}
	return f
}

// Catalog returns the catalog the formulation was built for.
func (f *Formulation) Catalog() model.Catalog { return f.catalog }

// Graph returns the transition graph behind the arcs.
func (f *Formulation) Graph() *TransitionGraph { return f.graph }

func name(format string, args ...any) string { return fmt.Sprintf(format, args...) }
