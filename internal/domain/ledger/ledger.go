// Package ledger holds the validated, read-only index of captures and checker
// statuses for one competition.
//
// A Ledger is immutable once built and safe for concurrent readers.
package ledger

import (
	"context"
	"fmt"
	"math"

	"github.com/okian/adsim/internal/domain/dedupe"
	"github.com/okian/adsim/internal/domain/model"
	"github.com/okian/adsim/pkg/logger"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// OriginCapture is one capture of a flag minted at a given origin.
type OriginCapture struct {
	Attacker model.TeamID
	Victim   model.TeamID
	Round    model.Round
}

// originKey indexes captures by the (service, flagstore, minting round) triple.
type originKey struct {
	service   model.ServiceName
	flagstore model.FlagstoreID
	round     model.Round
}

type compromiseKey struct {
	attacker  model.TeamID
	victim    model.TeamID
	service   model.ServiceName
	flagstore model.FlagstoreID
	round     model.Round
}

// submission identifies a capture regardless of the round it was made in.
type submission struct {
	attacker model.TeamID
	flag     model.Origin
}

type statusKey struct {
	team    model.TeamID
	service model.ServiceName
	round   model.Round
}

// Ledger is the canonical, queryable snapshot of a competition.
type Ledger struct {
	name      string
	teams     []model.TeamID
	teamSet   map[model.TeamID]struct{}
	eligible  []model.TeamID
	services  []model.Service
	flagstore map[model.ServiceName]map[model.FlagstoreID]struct{}
	retention int
	first     model.Round
	last      model.Round
	nop       model.TeamID

	captures    []model.Capture
	byOrigin    map[originKey][]OriginCapture
	byFlag      map[model.Origin][]OriginCapture
	byRound     map[model.Round][]model.Capture
	victims     map[model.Round]map[model.TeamID][]model.TeamID
	compromised map[compromiseKey]struct{}
	statuses    map[statusKey]model.Status

	duplicates int
	excluded   int
}

// Option configures ledger construction.
type Option func(*settings)

type settings struct {
	logger logger.Logger
}

// WithLogger sets the logger used to report construction statistics.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// New validates comp and builds its indexes. It fails with model.ErrValidation
// if a capture falls outside its flag's retention window, if a team captures
// its own flag, or if any record references unknown teams or services.
func New(ctx context.Context, comp *model.Competition, opts ...Option) (*Ledger, error) {
	cfg := settings{logger: logger.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	if comp == nil {
		return nil, fmt.Errorf("%w: nil competition", model.ErrValidation)
	}
	if comp.Retention < 1 {
		return nil, fmt.Errorf("%w: retention must be at least 1 round, got %d", model.ErrValidation, comp.Retention)
	}
	if comp.FirstRound < 0 || comp.LastRound < comp.FirstRound {
		return nil, fmt.Errorf("%w: invalid round span [%d, %d]", model.ErrValidation, comp.FirstRound, comp.LastRound)
	}

	l := &Ledger{
		name:      comp.Name,
		teamSet:   make(map[model.TeamID]struct{}, len(comp.Teams)),
		flagstore: make(map[model.ServiceName]map[model.FlagstoreID]struct{}, len(comp.Services)),
		retention: comp.Retention,
		first:     comp.FirstRound,
		last:      comp.LastRound,
		nop:       comp.NOPTeam,
		statuses:  make(map[statusKey]model.Status, len(comp.Statuses)),
	}

	for _, team := range comp.Teams {
		if team == "" {
			return nil, fmt.Errorf("%w: empty team id", model.ErrValidation)
		}
		if _, dup := l.teamSet[team]; dup {
			return nil, fmt.Errorf("%w: duplicate team %q", model.ErrValidation, team)
		}
		l.teamSet[team] = struct{}{}
	}
	if l.nop != "" {
		if _, ok := l.teamSet[l.nop]; !ok {
			return nil, fmt.Errorf("%w: NOP team %q not found in competition data", model.ErrValidation, l.nop)
		}
	}
	l.teams = maps.Keys(l.teamSet)
	slices.Sort(l.teams)
	for _, team := range l.teams {
		if team != l.nop {
			l.eligible = append(l.eligible, team)
		}
	}

	for _, svc := range comp.Services {
		if _, dup := l.flagstore[svc.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate service %q", model.ErrValidation, svc.Name)
		}
		if len(svc.Flagstores) == 0 {
			return nil, fmt.Errorf("%w: service %q has no flagstores", model.ErrValidation, svc.Name)
		}
		if svc.FlagRate < 0 || math.IsNaN(svc.FlagRate) || math.IsInf(svc.FlagRate, 0) {
			return nil, fmt.Errorf("%w: service %q has invalid flag rate %v", model.ErrValidation, svc.Name, svc.FlagRate)
		}
		stores := make(map[model.FlagstoreID]struct{}, len(svc.Flagstores))
		for _, fs := range svc.Flagstores {
			stores[fs] = struct{}{}
		}
		l.flagstore[svc.Name] = stores
		ids := maps.Keys(stores)
		slices.Sort(ids)
		l.services = append(l.services, model.Service{Name: svc.Name, Flagstores: ids, FlagRate: svc.FlagRate})
	}
	slices.SortFunc(l.services, func(a, b model.Service) bool { return a.Name < b.Name })

	for _, st := range comp.Statuses {
		if err := l.checkStatus(st); err != nil {
			return nil, err
		}
		key := statusKey{team: st.Team, service: st.Service, round: st.Round}
		if prev, ok := l.statuses[key]; ok && prev != st.Status {
			return nil, fmt.Errorf("%w: conflicting checker status for %s/%s@%d: %s and %s",
				model.ErrValidation, st.Team, st.Service, st.Round, prev, st.Status)
		}
		l.statuses[key] = st.Status
	}

	seen := dedupe.NewInMemoryDeduper[submission](dedupe.WithCapacity(len(comp.Captures)))
	accepted := make([]model.Capture, 0, len(comp.Captures))
	for _, c := range comp.Captures {
		if err := l.checkCapture(c); err != nil {
			return nil, err
		}
		if seen.SeenAndRecord(ctx, submission{attacker: c.Attacker, flag: c.Flag}) {
			l.duplicates++
			continue
		}
		if l.nop != "" && (c.Attacker == l.nop || c.Flag.Team == l.nop) {
			l.excluded++
			continue
		}
		accepted = append(accepted, c)
	}
	l.index(accepted)

	cfg.logger.Debug(ctx, "ledger built",
		logger.String("competition", l.name),
		logger.Int("teams", len(l.teams)),
		logger.Int("services", len(l.services)),
		logger.Int("captures", len(l.captures)),
		logger.Int("statuses", len(l.statuses)),
		logger.Int("duplicates", l.duplicates),
		logger.Int("excluded", l.excluded),
	)
	return l, nil
}

func (l *Ledger) checkStatus(st model.CheckerStatus) error {
	if _, ok := l.teamSet[st.Team]; !ok {
		return fmt.Errorf("%w: checker status for unknown team %q", model.ErrValidation, st.Team)
	}
	if _, ok := l.flagstore[st.Service]; !ok {
		return fmt.Errorf("%w: checker status for unknown service %q", model.ErrValidation, st.Service)
	}
	if st.Round < l.first || st.Round > l.last {
		return fmt.Errorf("%w: checker status round %d outside [%d, %d]", model.ErrValidation, st.Round, l.first, l.last)
	}
	return nil
}

func (l *Ledger) checkCapture(c model.Capture) error {
	if _, ok := l.teamSet[c.Attacker]; !ok {
		return fmt.Errorf("%w: capture by unknown team %q", model.ErrValidation, c.Attacker)
	}
	if _, ok := l.teamSet[c.Flag.Team]; !ok {
		return fmt.Errorf("%w: capture of flag owned by unknown team %q", model.ErrValidation, c.Flag.Team)
	}
	stores, ok := l.flagstore[c.Flag.Service]
	if !ok {
		return fmt.Errorf("%w: capture of flag from unknown service %q", model.ErrValidation, c.Flag.Service)
	}
	if _, ok := stores[c.Flag.Flagstore]; !ok {
		return fmt.Errorf("%w: capture of flag from unknown flagstore %d of %q", model.ErrValidation, c.Flag.Flagstore, c.Flag.Service)
	}
	if c.Attacker == c.Flag.Team {
		return fmt.Errorf("%w: team %q captured its own flag %s", model.ErrValidation, c.Attacker, c.Flag)
	}
	if c.Flag.Round < l.first || c.Round > l.last {
		return fmt.Errorf("%w: capture of %s in round %d outside competition rounds [%d, %d]",
			model.ErrValidation, c.Flag, c.Round, l.first, l.last)
	}
	expires := c.Flag.Round + model.Round(l.retention) - 1
	if c.Round < c.Flag.Round || c.Round > expires {
		return fmt.Errorf("%w: capture of %s in round %d outside retention window [%d, %d]",
			model.ErrValidation, c.Flag, c.Round, c.Flag.Round, expires)
	}
	return nil
}

// index builds the lookup tables from already validated captures.
func (l *Ledger) index(captures []model.Capture) {
	l.captures = slices.Clone(captures)
	slices.SortFunc(l.captures, captureLess)

	l.byOrigin = make(map[originKey][]OriginCapture)
	l.byFlag = make(map[model.Origin][]OriginCapture)
	l.byRound = make(map[model.Round][]model.Capture)
	l.compromised = make(map[compromiseKey]struct{})
	victimSets := make(map[model.Round]map[model.TeamID]map[model.TeamID]struct{})

	for _, c := range l.captures {
		oc := OriginCapture{Attacker: c.Attacker, Victim: c.Flag.Team, Round: c.Round}
		key := originKey{service: c.Flag.Service, flagstore: c.Flag.Flagstore, round: c.Flag.Round}
		l.byOrigin[key] = append(l.byOrigin[key], oc)
		l.byFlag[c.Flag] = append(l.byFlag[c.Flag], oc)
		l.byRound[c.Round] = append(l.byRound[c.Round], c)
		l.compromised[compromiseKey{
			attacker:  c.Attacker,
			victim:    c.Flag.Team,
			service:   c.Flag.Service,
			flagstore: c.Flag.Flagstore,
			round:     c.Round,
		}] = struct{}{}

		byAttacker, ok := victimSets[c.Round]
		if !ok {
			byAttacker = make(map[model.TeamID]map[model.TeamID]struct{})
			victimSets[c.Round] = byAttacker
		}
		set, ok := byAttacker[c.Attacker]
		if !ok {
			set = make(map[model.TeamID]struct{})
			byAttacker[c.Attacker] = set
		}
		set[c.Flag.Team] = struct{}{}
	}

	l.victims = make(map[model.Round]map[model.TeamID][]model.TeamID, len(victimSets))
	for round, byAttacker := range victimSets {
		out := make(map[model.TeamID][]model.TeamID, len(byAttacker))
		for attacker, set := range byAttacker {
			list := maps.Keys(set)
			slices.Sort(list)
			out[attacker] = list
		}
		l.victims[round] = out
	}
}

// captureLess orders captures by round, attacker, then flag origin.
func captureLess(a, b model.Capture) bool {
	if a.Round != b.Round {
		return a.Round < b.Round
	}
	if a.Attacker != b.Attacker {
		return a.Attacker < b.Attacker
	}
	return originLess(a.Flag, b.Flag)
}

func originLess(a, b model.Origin) bool {
	if a.Team != b.Team {
		return a.Team < b.Team
	}
	if a.Service != b.Service {
		return a.Service < b.Service
	}
	if a.Flagstore != b.Flagstore {
		return a.Flagstore < b.Flagstore
	}
	return a.Round < b.Round
}

// Until returns a view of the ledger that ends at round: captures submitted
// after it are dropped and LastRound is clamped. Statuses are shared.
func (l *Ledger) Until(round model.Round) *Ledger {
	return l.Between(l.first, round)
}

// Between returns a view of the ledger as if the competition had only run
// from round from through round to. Flags minted before from never existed,
// captures outside the span are dropped, and the round span is clamped to
// [from, to]. Statuses are shared.
func (l *Ledger) Between(from, to model.Round) *Ledger {
	if from <= l.first && to >= l.last {
		return l
	}
	view := *l
	if from > view.first {
		view.first = from
	}
	if to < view.last {
		view.last = to
	}
	if view.last < view.first {
		view.last = view.first
	}
	kept := make([]model.Capture, 0, len(l.captures))
	for _, c := range l.captures {
		if c.Flag.Round >= view.first && c.Round <= view.last {
			kept = append(kept, c)
		}
	}
	view.index(kept)
	return &view
}
