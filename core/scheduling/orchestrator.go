package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/kilianp07/crewsched/core/cp"
	"github.com/kilianp07/crewsched/core/logger"
	"github.com/kilianp07/crewsched/core/metrics"
	"github.com/kilianp07/crewsched/core/model"
	"github.com/kilianp07/crewsched/core/monitoring"
)

// DefaultPoolMultiplier sizes the phase one pool relative to the driving
// lower bound.
const DefaultPoolMultiplier = 2

// Config parameterizes an Orchestrator.
type Config struct {
	Regulations model.Regulations
	Params      cp.Parameters
	// PoolMultiplier scales the driving lower bound into the phase one pool.
	PoolMultiplier int
	// ModelDumpPath, when set, receives a YAML dump of the phase two model.
	ModelDumpPath string
}

// SolveFunc runs the solver on a model.
type SolveFunc func(ctx context.Context, m *cp.Model, params cp.Parameters, opts ...cp.Option) (*cp.Response, error)

// PhaseReport summarizes one solve phase.
type PhaseReport struct {
	Phase     int
	Mode      Mode
	Status    cp.Status
	Drivers   int
	Objective int64
	Bound     int64
	WallTime  time.Duration
	Stats     cp.Stats
	Branches  int64
	Conflicts int64
}

// Result is the outcome of a two-phase run.
type Result struct {
	Catalog string
	Bounds  DriverBounds
	Pool    int
	// Drivers is the minimal driver count found by phase one.
	Drivers int
	// DelayBound is the lower bound on total idle time used in phase two.
	DelayBound int
	Phase1     PhaseReport
	Phase2     *PhaseReport
	Schedule   model.Schedule
	Warnings   []ShiftWarning
	State      State
}

// Orchestrator sequences the driver minimization and the working time
// minimization. A value runs one catalog at a time.
type Orchestrator struct {
	cfg   Config
	log   logger.Logger
	sink  metrics.MetricsSink
	solve SolveFunc
	runID string

	mu    sync.Mutex
	state State
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger used for transitions and solver progress.
func WithLogger(l logger.Logger) Option { return func(o *Orchestrator) { o.log = l } }

// WithMetrics sets the sink receiving phase, roster and state events.
func WithMetrics(s metrics.MetricsSink) Option { return func(o *Orchestrator) { o.sink = s } }

// WithSolver replaces cp.Solve.
func WithSolver(fn SolveFunc) Option { return func(o *Orchestrator) { o.solve = fn } }

// WithRunID tags emitted events with the run identifier.
func WithRunID(id string) Option { return func(o *Orchestrator) { o.runID = id } }

// NewOrchestrator returns an idle orchestrator.
func NewOrchestrator(cfg Config, opts ...Option) *Orchestrator {
	if cfg.PoolMultiplier < 1 {
		cfg.PoolMultiplier = DefaultPoolMultiplier
	}
	if cfg.Params.NumWorkers < 1 {
		cfg.Params.NumWorkers = 1
	}
	o := &Orchestrator{
		cfg:   cfg,
		log:   logger.NopLogger{},
		sink:  metrics.NopSink{},
		solve: cp.Solve,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) transition(next State) {
	o.mu.Lock()
	prev := o.state
	if !prev.CanTransition(next) {
		o.mu.Unlock()
		o.log.Errorf("invalid transition %s -> %s", prev, next)
		return
	}
	o.state = next
	o.mu.Unlock()
	o.log.Infof("state %s -> %s", prev, next)
	if rec, ok := o.sink.(metrics.StateRecorder); ok {
		if err := rec.RecordState(metrics.StateEvent{RunID: o.runID, From: prev.String(), To: next.String(), Time: time.Now()}); err != nil {
			o.log.Warnf("record state: %v", err)
		}
	}
}

// Run executes both phases on the catalog. On success the state is
// StatePhase2Solved. A failed first phase returns an error wrapping
// ErrNoSolution and skips the second phase.
func (o *Orchestrator) Run(ctx context.Context, cat model.Catalog) (*Result, error) {
	o.mu.Lock()
	if o.state != StateIdle {
		o.mu.Unlock()
		return nil, fmt.Errorf("orchestrator already used (state %s)", o.state)
	}
	o.mu.Unlock()
	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", cat.Name, err)
	}
	reg := o.cfg.Regulations
	res := &Result{Catalog: cat.Name}
	res.Warnings = UnreachableShifts(cat, reg)
	for _, w := range res.Warnings {
		o.log.Warnf("%s", w)
	}
	bounds, err := ComputeDriverBounds(cat, reg)
	if err != nil {
		o.log.Warnf("path cover bound unavailable: %v", err)
	}
	res.Bounds = bounds
	res.Pool = bounds.Pool(o.cfg.PoolMultiplier)

	o.transition(StatePhase1Solving)
	drivers, rep1, err := o.MinimizeDrivers(ctx, cat, bounds)
	res.Phase1 = rep1
	if err != nil {
		o.transition(StatePhase1Failed)
		res.State = o.State()
		return res, err
	}
	res.Drivers = drivers
	o.transition(StatePhase1Solved)

	o.transition(StatePhase2Solving)
	sched, rep2, delayBound, err := o.minimizeWorkingTime(ctx, cat, drivers)
	res.Phase2 = &rep2
	res.DelayBound = delayBound
	if err != nil {
		o.transition(StatePhase2Failed)
		res.State = o.State()
		if errors.Is(err, ErrInconsistentPhase2) {
			o.log.Errorf("%v", err)
			monitoring.CaptureException(err, map[string]string{
				"catalog": cat.Name,
				"drivers": strconv.Itoa(drivers),
				"status":  rep2.Status.String(),
				"run_id":  o.runID,
			})
		}
		return res, err
	}
	res.Schedule = sched
	o.transition(StatePhase2Solved)
	res.State = o.State()
	o.recordRosters(sched)
	return res, nil
}

// MinimizeDrivers solves phase one and returns the minimal driver count.
func (o *Orchestrator) MinimizeDrivers(ctx context.Context, cat model.Catalog, bounds DriverBounds) (int, PhaseReport, error) {
	pool := bounds.Pool(o.cfg.PoolMultiplier)
	o.log.Infof("phase 1: pool of %d drivers (driving bound %d, path cover bound %d)", pool, bounds.Driving, bounds.PathCover)
	f, err := Build(cat, o.cfg.Regulations, BuildOptions{
		Mode:                ModeMinimizeDrivers,
		Drivers:             pool,
		ObjectiveLowerBound: bounds.Lower(),
	})
	if err != nil {
		return 0, PhaseReport{Phase: 1, Mode: ModeMinimizeDrivers}, err
	}
	resp, err := o.solve(ctx, f.Model, o.cfg.Params, cp.WithLogger(o.log))
	rep := o.report(1, cat.Name, f, resp)
	if err != nil {
		return 0, rep, fmt.Errorf("phase 1: %w", err)
	}
	if !resp.Status.Solved() {
		return 0, rep, fmt.Errorf("%w: phase 1 ended %s with a pool of %d drivers", ErrNoSolution, resp.Status, pool)
	}
	drivers := f.WorkingDrivers(resp)
	o.log.Infof("phase 1: %d drivers (%s)", drivers, resp.Status)
	return drivers, rep, nil
}

// MinimizeWorkingTime solves phase two for a fixed number of drivers.
func (o *Orchestrator) MinimizeWorkingTime(ctx context.Context, cat model.Catalog, drivers int) (model.Schedule, PhaseReport, error) {
	sched, rep, _, err := o.minimizeWorkingTime(ctx, cat, drivers)
	return sched, rep, err
}

func (o *Orchestrator) minimizeWorkingTime(ctx context.Context, cat model.Catalog, drivers int) (model.Schedule, PhaseReport, int, error) {
	delayBound, err := DelayLowerBound(cat, o.cfg.Regulations, drivers)
	if err != nil {
		o.log.Warnf("delay lower bound unavailable: %v", err)
		delayBound = 0
	}
	o.log.Infof("phase 2: %d drivers, idle time lower bound %d min", drivers, delayBound)
	f, err := Build(cat, o.cfg.Regulations, BuildOptions{
		Mode:                ModeMinimizeWorkingTime,
		Drivers:             drivers,
		ObjectiveLowerBound: delayBound,
	})
	if err != nil {
		return model.Schedule{}, PhaseReport{Phase: 2, Mode: ModeMinimizeWorkingTime}, delayBound, err
	}
	if path := o.cfg.ModelDumpPath; path != "" {
		if err := f.Model.WriteFile(path); err != nil {
			o.log.Errorf("write model to %s: %v", path, err)
		} else {
			o.log.Infof("phase 2 model written to %s", path)
		}
	}
	resp, err := o.solve(ctx, f.Model, o.cfg.Params, cp.WithLogger(o.log))
	rep := o.report(2, cat.Name, f, resp)
	if err != nil {
		return model.Schedule{}, rep, delayBound, fmt.Errorf("phase 2: %w", err)
	}
	if !resp.Status.Solved() {
		return model.Schedule{}, rep, delayBound, fmt.Errorf("%w: %d drivers, status %s", ErrInconsistentPhase2, drivers, resp.Status)
	}
	sched := f.Schedule(resp)
	o.log.Infof("phase 2: total idle time %d min (%s)", sched.TotalDelay, resp.Status)
	return sched, rep, delayBound, nil
}

func (o *Orchestrator) report(phase int, catalog string, f *Formulation, resp *cp.Response) PhaseReport {
	rep := PhaseReport{Phase: phase, Mode: f.Mode, Drivers: f.Drivers, Stats: f.Model.Stats()}
	if resp != nil {
		rep.Status = resp.Status
		rep.Objective = resp.ObjectiveValue
		rep.Bound = resp.BestObjectiveBound
		rep.WallTime = resp.WallTime
		rep.Branches = resp.NumBranches
		rep.Conflicts = resp.NumConflicts
	}
	ev := metrics.PhaseEvent{
		RunID:       o.runID,
		Catalog:     catalog,
		Phase:       phase,
		Mode:        rep.Mode.String(),
		Status:      rep.Status.String(),
		Drivers:     rep.Drivers,
		Objective:   rep.Objective,
		Bound:       rep.Bound,
		Variables:   rep.Stats.Variables,
		Constraints: rep.Stats.Constraints,
		Branches:    rep.Branches,
		Conflicts:   rep.Conflicts,
		Duration:    rep.WallTime,
		Time:        time.Now(),
	}
	if err := o.sink.RecordPhase(ev); err != nil {
		o.log.Warnf("record phase %d: %v", phase, err)
	}
	return rep
}

func (o *Orchestrator) recordRosters(s model.Schedule) {
	rec, ok := o.sink.(metrics.RosterRecorder)
	if !ok {
		return
	}
	now := time.Now()
	for _, r := range s.Rosters {
		delay := 0
		for _, a := range r.Assignments {
			delay += a.Delay
		}
		ev := metrics.RosterEvent{
			RunID:       o.runID,
			Catalog:     s.Catalog,
			Driver:      r.Driver,
			Shifts:      len(r.Assignments),
			DrivingTime: r.DrivingTime,
			WorkingTime: r.WorkingTime,
			Breaks:      r.Breaks(),
			Delay:       delay,
			Time:        now,
		}
		if err := rec.RecordRoster(ev); err != nil {
			o.log.Warnf("record roster %d: %v", r.Driver, err)
		}
	}
}
