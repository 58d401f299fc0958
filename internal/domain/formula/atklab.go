package formula

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/okian/adsim/internal/domain/ledger"
	"github.com/okian/adsim/internal/domain/model"
)

// ATKLABv2 attacker modes.
const (
	// AttackersSuccessful counts only teams that captured a flag this round.
	AttackersSuccessful = "successful"
	// AttackersScaled is AttackersSuccessful, rescaled so that the DEF pool of
	// a round does not depend on how many teams attack.
	AttackersScaled = "scaled"
)

// atklabV1 is the first ATKLAB formula: a capture is worth between 1 and 0.5
// depending on how many teams share it.
type atklabV1 struct {
	defense float64
}

func newATKLABv1(p ATKLABv1Params) (*atklabV1, error) {
	if p.Defense <= 0 {
		return nil, fmt.Errorf("defense %w", errNotPositive)
	}
	return &atklabV1{defense: p.Defense}, nil
}

func (f *atklabV1) Name() string { return NameATKLABv1 }

func (f *atklabV1) Check(*ledger.Ledger) error { return nil }

func (f *atklabV1) Score(round model.Round, l *ledger.Ledger) map[model.TeamID]model.Delta {
	out := newDeltas(l)
	scoreAttack(l, round, out, func(_ model.Capture, n int) float64 {
		return (1 + 1/float64(n)) / 2
	})
	victims := float64(potentialVictims(l))
	scoreDefense(l, round, out, func(breadth int) float64 {
		return f.defense * ratio(float64(breadth), victims)
	})
	perFlag := 1 / float64(l.Retention())
	scoreSLA(l, round, out, func(model.Service) float64 { return perFlag })
	return out
}

// atklabV2 scores captures on a jeopardy curve.
type atklabV2 struct {
	curve     curve
	base      float64
	min       float64
	attackers string
}

func newATKLABv2(p ATKLABv2Params) (*atklabV2, error) {
	if p.Min <= 0 || p.Base <= p.Min {
		return nil, fmt.Errorf("need 0 < min < base, got min=%v base=%v", p.Min, p.Base)
	}
	if p.Alpha < 0 || p.Beta < 0 {
		return nil, errors.New("alpha and beta must not be negative")
	}
	if strings.EqualFold(p.Curve, CurveHXP) {
		a, b := p.Alpha, p.Beta
		if a == 0 {
			a = 10
		}
		if b == 0 {
			b = 9
		}
		if a > b+1 {
			return nil, fmt.Errorf("curve %s needs alpha <= beta+1 to decay from the first solve", CurveHXP)
		}
	}
	c, err := jeopardy(p.Curve, p.Alpha, p.Beta)
	if err != nil {
		return nil, err
	}
	mode := strings.ToLower(p.Attackers)
	if mode != AttackersSuccessful && mode != AttackersScaled {
		return nil, fmt.Errorf("unknown attacker mode %q", p.Attackers)
	}
	return &atklabV2{curve: c, base: p.Base, min: p.Min, attackers: mode}, nil
}

func (f *atklabV2) Name() string { return NameATKLABv2 }

func (f *atklabV2) Check(*ledger.Ledger) error { return nil }

// value returns the clamped curve value for n solves.
func (f *atklabV2) value(n int, teams int) float64 {
	return math.Max(f.curve(float64(n), teams, f.base, f.min), f.min)
}

func (f *atklabV2) Score(round model.Round, l *ledger.Ledger) map[model.TeamID]model.Delta {
	out := newDeltas(l)
	teams := len(l.Eligible())
	scoreAttack(l, round, out, func(_ model.Capture, n int) float64 {
		return f.value(n, teams)
	})

	den := float64(potentialVictims(l))
	if f.attackers == AttackersScaled {
		den = float64(len(l.ActiveAttackersAt(round)))
	}
	scoreDefense(l, round, out, func(breadth int) float64 {
		return f.base * ratio(float64(breadth), den)
	})

	perFlag := f.base / float64(l.Retention())
	scoreSLA(l, round, out, func(model.Service) float64 { return perFlag })
	return out
}
