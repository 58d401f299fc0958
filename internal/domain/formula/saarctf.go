package formula

import (
	"fmt"
	"math"

	"github.com/okian/adsim/internal/domain/ledger"
	"github.com/okian/adsim/internal/domain/model"
)

// saarctf2024 pays attack points incrementally: every capturer of a flag ends
// up holding value(n) for the flag's final capture count n, and teams that
// captured earlier give back the difference when later captures lower it.
type saarctf2024 struct {
	offense float64
	defense float64
	sla     float64
}

func newSaarCTF2024(p SaarCTF2024Params) (*saarctf2024, error) {
	switch {
	case p.Offense <= 0:
		return nil, fmt.Errorf("offense %w", errNotPositive)
	case p.Defense < 0 || p.SLA < 0:
		return nil, fmt.Errorf("defense and sla must not be negative")
	}
	return &saarctf2024{offense: p.Offense, defense: p.Defense, sla: p.SLA}, nil
}

func (f *saarctf2024) Name() string { return NameSaarCTF2024 }

func (f *saarctf2024) Check(*ledger.Ledger) error { return nil }

// value is the per-capture worth of a flag held by n teams.
func (f *saarctf2024) value(n int, flagRate float64) float64 {
	if n <= 0 || flagRate <= 0 {
		return 0
	}
	return f.offense * (1 + math.Sqrt(1/float64(n))) / flagRate
}

func (f *saarctf2024) Score(round model.Round, l *ledger.Ledger) map[model.TeamID]model.Delta {
	out := newDeltas(l)

	rates := make(map[model.ServiceName]float64, len(l.Services()))
	for _, svc := range l.Services() {
		rates[svc.Name] = svc.Rate()
	}

	adjusted := make(map[model.Origin]struct{})
	for _, c := range l.CapturesAt(round) {
		rate := rates[c.Flag.Service]
		now := l.CaptureCountThrough(c.Flag, round)
		current := f.value(now, rate)

		credit(out, c.Attacker, current)

		if _, ok := adjusted[c.Flag]; ok {
			continue
		}
		adjusted[c.Flag] = struct{}{}
		before := l.CaptureCountThrough(c.Flag, round-1)
		if before == 0 {
			continue
		}
		shift := current - f.value(before, rate)
		for _, prev := range l.CapturesOf(c.Flag) {
			if prev.Round < round {
				credit(out, prev.Attacker, shift)
			}
		}
	}

	active := healthyTeams(l, round)
	den := float64(active - 1)
	if den < 1 {
		den = 0
	}
	scoreDefense(l, round, out, func(breadth int) float64 {
		return f.defense * ratio(float64(breadth), den)
	})

	perFlag := f.sla * math.Sqrt(float64(active)) / float64(l.Retention())
	scoreSLA(l, round, out, func(model.Service) float64 { return perFlag })
	return out
}

func credit(out map[model.TeamID]model.Delta, team model.TeamID, atk float64) {
	d := out[team]
	d.ATK += atk
	out[team] = d
}
