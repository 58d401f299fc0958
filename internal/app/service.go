// Package app wires data sources, the capture ledger, scoring formulas and
// the aggregator into one simulation run.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/adsim/internal/adapters/source"
	"github.com/okian/adsim/internal/domain/aggregate"
	"github.com/okian/adsim/internal/domain/formula"
	"github.com/okian/adsim/internal/domain/ledger"
	"github.com/okian/adsim/internal/domain/model"
	"github.com/okian/adsim/internal/domain/scaler"
	"github.com/okian/adsim/pkg/logger"
	"github.com/okian/adsim/pkg/metrics"
)

// Unbounded selects the competition's own first or last round.
const Unbounded model.Round = -1

// ErrNoFormula is returned by Simulate when no formula was selected.
var ErrNoFormula = fmt.Errorf("%w: no formula selected", model.ErrConfiguration)

// Service runs simulations.
type Service struct {
	workers     int
	params      formula.Params
	scale       bool
	scaleTo     float64
	scaleSeries bool
	series      bool
	nopTeam     model.TeamID
	logger      logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkers sets how many rounds each formula scores concurrently.
func WithWorkers(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workers = count
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFormulaParams replaces the formula parameter blocks.
func WithFormulaParams(p formula.Params) Option {
	return func(s *Service) {
		s.params = p
	}
}

// WithScaleTo rescales final scoreboards so the leader holds target points.
// A zero target zeroes every positive board. Negative targets are ignored.
func WithScaleTo(target float64) Option {
	return func(s *Service) {
		if target >= 0 {
			s.scale = true
			s.scaleTo = target
		}
	}
}

// WithScaleSeries applies the final scale factor to the per-round series too.
func WithScaleSeries(enabled bool) Option {
	return func(s *Service) {
		s.scaleSeries = enabled
	}
}

// WithSeries keeps the per-round series in the reports.
func WithSeries(enabled bool) Option {
	return func(s *Service) {
		s.series = enabled
	}
}

// WithNOPTeam overrides the NOP team named by the data source.
func WithNOPTeam(team string) Option {
	return func(s *Service) {
		s.nopTeam = model.TeamID(team)
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workers: 1,
		params:  formula.DefaultParams(),
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Simulate loads src once and scores it with every named formula over
// [from, to], treated as if the competition had only run those rounds.
// Unbounded selects the competition's own bounds. Formulas run
// concurrently against the shared ledger; reports keep the order of formulas.
func (s *Service) Simulate(ctx context.Context, src source.Source, formulas []string, from, to model.Round) ([]model.Report, error) {
	if len(formulas) == 0 {
		return nil, ErrNoFormula
	}

	// Build every formula up front so that a bad name fails before loading.
	built := make([]formula.Formula, 0, len(formulas))
	for _, name := range formulas {
		f, err := formula.New(name, s.params)
		if err != nil {
			return nil, err
		}
		built = append(built, f)
	}

	runID := uuid.NewString()
	log := s.logger.Named("app")

	l, err := s.load(ctx, src)
	if err != nil {
		metrics.RecordErrorByComponent("source", errorKind(err))
		return nil, err
	}

	if from == Unbounded {
		from = l.FirstRound()
	}
	if to == Unbounded {
		to = l.LastRound()
	}
	if from < 0 || to < 0 || from > to {
		return nil, fmt.Errorf("%w: invalid round range [%d, %d]", model.ErrConfiguration, from, to)
	}
	view := l.Between(from, to)

	log.Info(ctx, "simulation started",
		logger.String("run_id", runID),
		logger.String("data", src.String()),
		logger.Int("formulas", len(built)),
		logger.Int("from", int(from)),
		logger.Int("to", int(to)),
	)

	reports := make([]model.Report, len(built))
	errs := make([]error, len(built))
	var wg sync.WaitGroup
	for i, f := range built {
		wg.Add(1)
		go func(i int, f formula.Formula) {
			defer wg.Done()
			reports[i], errs[i] = s.run(ctx, view, f, from, to)
		}(i, f)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("%s: %w", built[i].Name(), err)
		}
	}

	for i := range reports {
		reports[i].RunID = runID
		reports[i].Data = src.String()
	}

	log.Info(ctx, "simulation finished", logger.String("run_id", runID))
	return reports, nil
}

func (s *Service) load(ctx context.Context, src source.Source) (*ledger.Ledger, error) {
	comp, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	if s.nopTeam != "" {
		comp.NOPTeam = s.nopTeam
	}

	l, err := ledger.New(ctx, comp, ledger.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}
	metrics.UpdateLedger(len(l.Teams()), int(l.LastRound()-l.FirstRound())+1, l.Len(), l.Duplicates())
	return l, nil
}

func (s *Service) run(ctx context.Context, l *ledger.Ledger, f formula.Formula, from, to model.Round) (model.Report, error) {
	start := time.Now()
	agg := aggregate.New(aggregate.WithWorkers(s.workers), aggregate.WithLogger(s.logger))

	res, err := agg.Run(ctx, l, f, from, to)
	elapsed := float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		metrics.RecordRun(f.Name(), metrics.OutcomeFailure, elapsed)
		metrics.RecordErrorByComponent("aggregate", errorKind(err))
		return model.Report{}, err
	}
	metrics.RecordRun(f.Name(), metrics.OutcomeSuccess, elapsed)

	report := model.Report{
		Formula:     f.Name(),
		From:        from,
		To:          to,
		ScaleFactor: 1,
		Final:       res.Final,
	}
	if s.series {
		report.Series = res.Series
	}
	if s.scale {
		report.Final, report.ScaleFactor = scaler.Scale(res.Final, s.scaleTo)
		if s.series && s.scaleSeries {
			report.Series = scaler.ScaleSeries(res.Series, report.ScaleFactor)
		}
	}
	return report, nil
}

// errorKind names the error class for metrics labels.
func errorKind(err error) string {
	switch {
	case errors.Is(err, model.ErrConfiguration):
		return "configuration"
	case errors.Is(err, model.ErrValidation):
		return "validation"
	case errors.Is(err, model.ErrComputation):
		return "computation"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "other"
	}
}
