package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/crewsched/config"
	coremetrics "github.com/kilianp07/crewsched/core/metrics"
	"github.com/kilianp07/crewsched/core/model"
	coremon "github.com/kilianp07/crewsched/core/monitoring"
	coremqtt "github.com/kilianp07/crewsched/core/mqtt"
	"github.com/kilianp07/crewsched/core/scheduling"
	corestore "github.com/kilianp07/crewsched/core/store"
	"github.com/kilianp07/crewsched/infra/catalog"
	"github.com/kilianp07/crewsched/infra/logger"
	_ "github.com/kilianp07/crewsched/infra/metrics"
	"github.com/kilianp07/crewsched/infra/monitoring"
	"github.com/kilianp07/crewsched/infra/mqtt"
	"github.com/kilianp07/crewsched/infra/report"
	_ "github.com/kilianp07/crewsched/infra/store"
)

// Service wires the catalog source, the orchestrator and the outputs of a
// run.
type Service struct {
	cfg    *config.Config
	log    logger.Logger
	source catalog.Source
	sink   coremetrics.MetricsSink
	store  corestore.RunStore
	pub    coremqtt.Publisher
	out    io.Writer
	now    func() time.Time
	newID  func() string
	solve  scheduling.SolveFunc
}

// Option customizes a Service.
type Option func(*Service)

// WithOutput redirects the console report.
func WithOutput(w io.Writer) Option { return func(s *Service) { s.out = w } }

// WithSource overrides the configured catalog source.
func WithSource(src catalog.Source) Option { return func(s *Service) { s.source = src } }

// WithPublisher overrides the MQTT publisher.
func WithPublisher(p coremqtt.Publisher) Option { return func(s *Service) { s.pub = p } }

// WithStore overrides the configured run store.
func WithStore(st corestore.RunStore) Option { return func(s *Service) { s.store = st } }

// WithMetrics overrides the configured metrics sinks.
func WithMetrics(m coremetrics.MetricsSink) Option { return func(s *Service) { s.sink = m } }

// WithSolver replaces the solver used by both phases.
func WithSolver(fn scheduling.SolveFunc) Option { return func(s *Service) { s.solve = fn } }

// New creates a Service from the configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}
	svc := &Service{
		cfg:   cfg,
		log:   logger.New("service"),
		out:   os.Stdout,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(svc)
	}

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	if svc.source == nil {
		svc.source = catalog.NewSource(cfg.Catalog)
	}
	if svc.sink == nil {
		if svc.sink, err = coremetrics.NewMetricsSink(cfg.Metrics.Sinks); err != nil {
			return nil, fmt.Errorf("metrics sink: %w", err)
		}
	}
	if svc.store == nil {
		if svc.store, err = corestore.NewRunStore(cfg.Store); err != nil {
			return nil, fmt.Errorf("run store: %w", err)
		}
	}
	if svc.pub == nil && cfg.MQTT.Enabled {
		client, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.pub = client
	}
	return svc, nil
}

// Solve loads the catalog, runs both phases, prints the report, then stores
// and publishes the outcome. The orchestrator error is returned as is.
func (s *Service) Solve(ctx context.Context) (*scheduling.Result, error) {
	runID := s.newID()
	cat, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	ocfg, err := s.cfg.Orchestrator()
	if err != nil {
		return nil, err
	}
	opts := []scheduling.Option{
		scheduling.WithLogger(logger.New("scheduler")),
		scheduling.WithMetrics(s.sink),
		scheduling.WithRunID(runID),
	}
	if s.solve != nil {
		opts = append(opts, scheduling.WithSolver(s.solve))
	}
	orch := scheduling.NewOrchestrator(ocfg, opts...)
	s.log.Infof("run %s: catalog %s with %d shifts", runID, cat.Name, cat.Len())

	started := s.now()
	res, runErr := orch.Run(ctx, cat)

	rep := report.New(s.out)
	if res != nil {
		rep.Catalog(cat, res.Bounds, res.Pool, res.Warnings)
	}
	rep.Result(res, runErr)

	if res != nil {
		rec := s.record(runID, started, cat, res, runErr)
		if err := s.store.Append(ctx, rec); err != nil {
			s.log.Errorf("store run %s: %v", runID, err)
		}
	}
	if runErr == nil && s.pub != nil {
		if err := coremqtt.PublishSchedule(s.pub, runID, res.Schedule); err != nil {
			s.log.Errorf("publish run %s: %v", runID, err)
		}
	}
	return res, runErr
}

func (s *Service) record(runID string, ts time.Time, cat model.Catalog, res *scheduling.Result, runErr error) corestore.RunRecord {
	rec := corestore.NewRecord(runID, ts, cat, res.Schedule)
	rec.Params = s.cfg.Solver.Params
	rec.DrivingBound = res.Bounds.Driving
	rec.PathCoverBound = res.Bounds.PathCover
	rec.Pool = res.Pool
	rec.Phase1Status = res.Phase1.Status.String()
	rec.Phase1Duration = res.Phase1.WallTime
	if res.Phase2 != nil {
		rec.Phase2Status = res.Phase2.Status.String()
		rec.Phase2Duration = res.Phase2.WallTime
	}
	if res.Drivers > 0 {
		rec.Drivers = res.Drivers
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}
	return rec
}

// DescribeCatalog prints the catalog statistics, driver bounds and shift
// warnings without solving.
func (s *Service) DescribeCatalog(ctx context.Context) (model.Catalog, error) {
	cat, err := s.source.Load(ctx)
	if err != nil {
		return model.Catalog{}, fmt.Errorf("load catalog: %w", err)
	}
	reg := s.cfg.Regulations
	bounds, err := scheduling.ComputeDriverBounds(cat, reg)
	if err != nil {
		s.log.Warnf("path cover bound unavailable: %v", err)
	}
	report.New(s.out).Catalog(cat, bounds, bounds.Pool(s.cfg.Solver.PoolMultiplier), scheduling.UnreachableShifts(cat, reg))
	return cat, nil
}

// SeedCatalog copies the loaded catalog into the crew_shifts table at dsn.
func (s *Service) SeedCatalog(ctx context.Context, dsn string) error {
	cat, err := s.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	dst := &catalog.PostgresSource{DSN: dsn, Name: cat.Name}
	if err := dst.Save(ctx, cat); err != nil {
		return fmt.Errorf("seed catalog %s: %w", cat.Name, err)
	}
	s.log.Infof("seeded catalog %s (%d shifts)", cat.Name, cat.Len())
	return nil
}

// Runs returns stored runs matching q, oldest first.
func (s *Service) Runs(ctx context.Context, q corestore.RunQuery) ([]corestore.RunRecord, error) {
	return s.store.Query(ctx, q)
}

// Config returns the configuration the service was built from.
func (s *Service) Config() *config.Config { return s.cfg }

// Store returns the run store.
func (s *Service) Store() corestore.RunStore { return s.store }

// Close releases resources held by the service.
func (s *Service) Close() error {
	var errs []error
	if s.pub != nil {
		s.pub.Close()
	}
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	if c, ok := s.sink.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	coremon.Flush(2 * time.Second)
	return errors.Join(errs...)
}
