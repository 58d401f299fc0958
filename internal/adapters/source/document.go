package source

import (
	"fmt"
	"strconv"

	"github.com/okian/adsim/internal/domain/model"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Document is the round-by-round competition file format. Flags are
// referred to by opaque ids: each round lists the flag ids stored for every
// team's flagstores and the flag ids every team submitted.
type Document struct {
	Name     string                `json:"name,omitempty" yaml:"name,omitempty"`
	Teams    []string              `json:"teams" yaml:"teams"`
	NOPTeam  string                `json:"nop_team,omitempty" yaml:"nop_team,omitempty"`
	Services map[string]ServiceDoc `json:"services" yaml:"services"`
	Config   ConfigDoc             `json:"config" yaml:"config"`
	Rounds   []map[string]RoundDoc `json:"rounds" yaml:"rounds"`
}

// ServiceDoc lists a service's flagstores.
type ServiceDoc struct {
	Flagstores []int `json:"flagstores" yaml:"flagstores"`
	// FlagRate overrides the flags per round, which default to one per
	// flagstore.
	FlagRate float64 `json:"flag_rate,omitempty" yaml:"flag_rate,omitempty"`
}

// ConfigDoc holds the flag lifetime settings.
type ConfigDoc struct {
	// FlagValidity is how many rounds a flag may be submitted for,
	// counting the round it was stored in.
	FlagValidity int `json:"flag_validity" yaml:"flag_validity"`
	// FlagRetention is used when FlagValidity is unset.
	FlagRetention int `json:"flag_retention,omitempty" yaml:"flag_retention,omitempty"`
}

// RoundDoc is one team's data for one round.
type RoundDoc struct {
	ServiceStates map[string]string           `json:"service_states" yaml:"service_states"`
	FlagsStored   map[string]map[string]int64 `json:"flags_stored" yaml:"flags_stored"`
	FlagsCaptured []int64                     `json:"flags_captured" yaml:"flags_captured"`
}

// Competition converts the document into the canonical model. Rounds are
// numbered from 0 in document order.
func (d *Document) Competition() (*model.Competition, error) {
	retention := d.Config.FlagValidity
	if retention <= 0 {
		retention = d.Config.FlagRetention
	}
	if retention <= 0 {
		return nil, fmt.Errorf("%w: config.flag_validity must be positive", ErrMalformed)
	}
	if len(d.Rounds) == 0 {
		return nil, fmt.Errorf("%w: no rounds", ErrMalformed)
	}

	comp := &model.Competition{
		Name:      d.Name,
		Retention: retention,
		LastRound: model.Round(len(d.Rounds) - 1),
		NOPTeam:   model.TeamID(d.NOPTeam),
	}
	for _, team := range d.Teams {
		comp.Teams = append(comp.Teams, model.TeamID(team))
	}

	names := maps.Keys(d.Services)
	slices.Sort(names)
	for _, name := range names {
		svc := model.Service{Name: model.ServiceName(name), FlagRate: d.Services[name].FlagRate}
		for _, fs := range d.Services[name].Flagstores {
			svc.Flagstores = append(svc.Flagstores, model.FlagstoreID(fs))
		}
		comp.Services = append(comp.Services, svc)
	}

	flags, err := d.flags()
	if err != nil {
		return nil, err
	}

	for i, round := range d.Rounds {
		r := model.Round(i)
		teams := maps.Keys(round)
		slices.Sort(teams)
		for _, team := range teams {
			data := round[team]

			services := maps.Keys(data.ServiceStates)
			slices.Sort(services)
			for _, svc := range services {
				st, err := model.ParseStatus(data.ServiceStates[svc])
				if err != nil {
					return nil, fmt.Errorf("round %d team %s service %s: %w", r, team, svc, err)
				}
				comp.Statuses = append(comp.Statuses, model.CheckerStatus{
					Team:    model.TeamID(team),
					Service: model.ServiceName(svc),
					Round:   r,
					Status:  st,
				})
			}

			for _, id := range data.FlagsCaptured {
				origin, ok := flags[id]
				if !ok {
					return nil, fmt.Errorf("%w: round %d team %s submitted flag %d", ErrUnknownFlag, r, team, id)
				}
				comp.Captures = append(comp.Captures, model.Capture{
					Attacker: model.TeamID(team),
					Flag:     origin,
					Round:    r,
				})
			}
		}
	}
	return comp, nil
}

// flags maps every stored flag id to its origin.
func (d *Document) flags() (map[int64]model.Origin, error) {
	out := make(map[int64]model.Origin)
	for i, round := range d.Rounds {
		for team, data := range round {
			for svc, stores := range data.FlagsStored {
				for key, id := range stores {
					fs, err := strconv.Atoi(key)
					if err != nil {
						return nil, fmt.Errorf("%w: round %d team %s service %s: flagstore %q is not a number", ErrMalformed, i, team, svc, key)
					}
					origin := model.Origin{
						Team:      model.TeamID(team),
						Service:   model.ServiceName(svc),
						Flagstore: model.FlagstoreID(fs),
						Round:     model.Round(i),
					}
					if prev, dup := out[id]; dup && prev != origin {
						return nil, fmt.Errorf("%w: flag id %d stored as both %s and %s", ErrMalformed, id, prev, origin)
					}
					out[id] = origin
				}
			}
		}
	}
	return out, nil
}
