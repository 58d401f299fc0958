// Package aggregate drives a formula over a span of rounds and folds the
// per-round deltas into cumulative scoreboards.
package aggregate

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/okian/adsim/internal/domain/formula"
	"github.com/okian/adsim/internal/domain/ledger"
	"github.com/okian/adsim/internal/domain/model"
	"github.com/okian/adsim/pkg/logger"
	"github.com/okian/adsim/pkg/metrics"
)

// Result is the outcome of one aggregation run.
type Result struct {
	// Final holds the cumulative scoreboard after the last round.
	Final model.Scoreboard
	// Series holds one snapshot per round in ascending order.
	Series []model.Snapshot
}

// Aggregator scores rounds with a formula and accumulates the totals.
type Aggregator struct {
	workers int
	logger  logger.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithWorkers sets how many rounds are scored concurrently. Values below 1
// select sequential scoring.
func WithWorkers(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithLogger sets the aggregator logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an aggregator.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		workers: 1,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run scores every round in [from, to] with f against l.
//
// The span is scored as if the competition had started at from and ended at
// to, so captures of earlier flags neither earn nor cost points. Rounds may be
// scored concurrently, but totals are always folded in ascending round order,
// so the result does not depend on the worker count.
func (a *Aggregator) Run(ctx context.Context, l *ledger.Ledger, f formula.Formula, from, to model.Round) (*Result, error) {
	if from < 0 || to < 0 {
		return nil, fmt.Errorf("%w: negative round bound [%d, %d]", model.ErrConfiguration, from, to)
	}
	if from > to {
		return nil, fmt.Errorf("%w: from round %d is after to round %d", model.ErrConfiguration, from, to)
	}
	// Score the span as a competition of its own; see ledger.Between.
	l = l.Between(from, to)
	if err := f.Check(l); err != nil {
		return nil, err
	}

	n := int(to-from) + 1
	deltas, err := a.score(ctx, l, f, from, n)
	if err != nil {
		return nil, err
	}

	totals := make(model.Scoreboard, len(l.Teams()))
	for _, team := range l.Teams() {
		totals[team] = model.Entry{Team: team}
	}

	series := make([]model.Snapshot, 0, n)
	for i, round := 0, from; i < n; i, round = i+1, round+1 {
		d := deltas[i]
		for _, team := range l.Teams() {
			delta := d[team]
			if !finite(delta) {
				return nil, fmt.Errorf("%w: %s produced a non-finite delta for %s in round %d",
					model.ErrComputation, f.Name(), team, round)
			}
			totals[team] = totals[team].Add(delta)
		}
		series = append(series, model.Snapshot{Round: round, Deltas: d, Totals: totals.Clone()})
	}

	a.logger.Debug(ctx, "rounds aggregated",
		logger.String("formula", f.Name()),
		logger.Int("from", int(from)),
		logger.Int("to", int(to)),
		logger.Int("workers", a.workers),
	)

	return &Result{Final: totals, Series: series}, nil
}

// score returns the deltas of rounds from..from+n-1, indexed by offset.
// Each worker writes only the slots of the rounds it pulled.
func (a *Aggregator) score(ctx context.Context, l *ledger.Ledger, f formula.Formula, from model.Round, n int) ([]map[model.TeamID]model.Delta, error) {
	out := make([]map[model.TeamID]model.Delta, n)

	one := func(i int) {
		start := time.Now()
		d := f.Score(from+model.Round(i), l)
		for _, team := range l.Teams() {
			if _, ok := d[team]; !ok {
				d[team] = model.Delta{}
			}
		}
		out[i] = d
		metrics.RecordRoundScored(f.Name(), float64(time.Since(start).Microseconds())/1000)
	}

	workers := a.workers
	if workers > n {
		workers = n
	}
	metrics.UpdateWorkerCount(workers)

	if workers <= 1 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			one(i)
		}
		return out, nil
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				one(i)
			}
		}()
	}

	var err error
feed:
	for i := 0; i < n; i++ {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err != nil {
		return nil, err
	}
	return out, nil
}

func finite(d model.Delta) bool {
	for _, v := range [...]float64{d.ATK, d.DEF, d.SLA} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
