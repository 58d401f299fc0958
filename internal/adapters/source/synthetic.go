package source

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/okian/adsim/internal/domain/model"
)

// Default synthetic competition shape.
const (
	defaultSyntheticTeams      = 10
	defaultSyntheticServices   = 3
	defaultSyntheticRounds     = 60
	defaultSyntheticRetention  = 5
	maxSyntheticFlagstores     = 2
	syntheticHealthyRate       = 0.9
	syntheticAttackScale       = 0.6
	syntheticFirstExploitRound = 3
)

// SyntheticConfig shapes a generated competition.
type SyntheticConfig struct {
	Seed      int64
	Teams     int
	Services  int
	Rounds    int
	Retention int
}

// Synthetic generates a pseudo-random but fully deterministic competition:
// the same configuration always yields the same data.
type Synthetic struct {
	cfg SyntheticConfig
}

// NewSynthetic returns a generator, filling unset fields with defaults.
func NewSynthetic(cfg SyntheticConfig) *Synthetic {
	if cfg.Teams <= 1 {
		cfg.Teams = defaultSyntheticTeams
	}
	if cfg.Services <= 0 {
		cfg.Services = defaultSyntheticServices
	}
	if cfg.Rounds <= 0 {
		cfg.Rounds = defaultSyntheticRounds
	}
	if cfg.Retention <= 0 {
		cfg.Retention = defaultSyntheticRetention
	}
	return &Synthetic{cfg: cfg}
}

// parseSynthetic reads "seed[,teams[,services[,rounds]]]".
func parseSynthetic(location string) (SyntheticConfig, error) {
	parts := strings.Split(location, ",")
	vals := make([]int64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil || (i > 0 && v <= 0) {
			return SyntheticConfig{}, fmt.Errorf("%w: synthetic:%s: want seed[,teams[,services[,rounds]]]", ErrUnknownSource, location)
		}
		vals[i] = v
	}
	if len(vals) > 4 {
		return SyntheticConfig{}, fmt.Errorf("%w: synthetic:%s: too many fields", ErrUnknownSource, location)
	}
	cfg := SyntheticConfig{Seed: vals[0]}
	fields := []*int{&cfg.Teams, &cfg.Services, &cfg.Rounds}
	for i, v := range vals[1:] {
		*fields[i] = int(v)
	}
	return cfg, nil
}

func (s *Synthetic) String() string {
	return fmt.Sprintf("%s:%d,%d,%d,%d", KindSynthetic, s.cfg.Seed, s.cfg.Teams, s.cfg.Services, s.cfg.Rounds)
}

// Load generates the competition. Every team gets an offensive skill, every
// (team, service) pair a patch round after which it can no longer be
// exploited, and every service a round from which exploits circulate.
func (s *Synthetic) Load(ctx context.Context) (*model.Competition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(s.cfg.Seed)) //nolint:gosec // reproducible data, not security

	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		return nil, fmt.Errorf("generate competition id: %w", err)
	}
	comp := &model.Competition{
		Name:      "synthetic-" + id.String(),
		Retention: s.cfg.Retention,
		LastRound: model.Round(s.cfg.Rounds - 1),
	}

	skill := make(map[model.TeamID]float64, s.cfg.Teams)
	for i := 0; i < s.cfg.Teams; i++ {
		team := model.TeamID(fmt.Sprintf("team-%02d", i+1))
		comp.Teams = append(comp.Teams, team)
		skill[team] = rng.Float64()
	}

	exploitFrom := make(map[model.ServiceName]model.Round, s.cfg.Services)
	for i := 0; i < s.cfg.Services; i++ {
		svc := model.Service{Name: model.ServiceName(fmt.Sprintf("service-%d", i+1))}
		for fs := 1; fs <= 1+rng.Intn(maxSyntheticFlagstores); fs++ {
			svc.Flagstores = append(svc.Flagstores, model.FlagstoreID(fs))
		}
		comp.Services = append(comp.Services, svc)
		exploitFrom[svc.Name] = model.Round(syntheticFirstExploitRound + rng.Intn(s.cfg.Rounds/2+1))
	}

	type patchKey struct {
		team    model.TeamID
		service model.ServiceName
	}
	patched := make(map[patchKey]model.Round, s.cfg.Teams*s.cfg.Services)
	for _, team := range comp.Teams {
		for _, svc := range comp.Services {
			patched[patchKey{team, svc.Name}] = exploitFrom[svc.Name] + model.Round(rng.Intn(s.cfg.Rounds+1))
		}
	}

	for r := model.Round(0); r <= comp.LastRound; r++ {
		for _, team := range comp.Teams {
			for _, svc := range comp.Services {
				st := model.StatusOK
				if rng.Float64() > syntheticHealthyRate {
					st = model.Status(rng.Intn(int(model.StatusError) + 1))
				}
				comp.Statuses = append(comp.Statuses, model.CheckerStatus{Team: team, Service: svc.Name, Round: r, Status: st})
			}
		}

		for _, attacker := range comp.Teams {
			for _, victim := range comp.Teams {
				if victim == attacker {
					continue
				}
				for _, svc := range comp.Services {
					if r < exploitFrom[svc.Name] || r >= patched[patchKey{victim, svc.Name}] {
						continue
					}
					if rng.Float64() > skill[attacker]*syntheticAttackScale {
						continue
					}
					fs := svc.Flagstores[rng.Intn(len(svc.Flagstores))]
					comp.Captures = append(comp.Captures, model.Capture{
						Attacker: attacker,
						Flag:     model.Origin{Team: victim, Service: svc.Name, Flagstore: fs, Round: r},
						Round:    r,
					})
				}
			}
		}
	}
	return comp, nil
}
