package formula

import (
	"fmt"
	"math"

	"github.com/okian/adsim/internal/domain/ledger"
	"github.com/okian/adsim/internal/domain/model"
)

// ecsc2024 uses a logistic attack curve and a flat SLA reward.
type ecsc2024 struct {
	scale float64
	norm  float64
	sla   float64
}

func newECSC2024(p ECSC2024Params) (*ecsc2024, error) {
	switch {
	case p.Scale <= 0:
		return nil, fmt.Errorf("scale %w", errNotPositive)
	case p.Norm <= 0:
		return nil, fmt.Errorf("norm %w", errNotPositive)
	case p.SLA < 0:
		return nil, fmt.Errorf("sla must not be negative, got %v", p.SLA)
	}
	return &ecsc2024{scale: p.Scale, norm: p.Norm, sla: p.SLA}, nil
}

func (f *ecsc2024) Name() string { return NameECSC2024 }

// Check requires a single flagstore per service.
func (f *ecsc2024) Check(l *ledger.Ledger) error {
	for _, svc := range l.Services() {
		if len(svc.Flagstores) != 1 {
			return fmt.Errorf("%w: %s requires exactly one flagstore per service, %s has %d",
				model.ErrValidation, NameECSC2024, svc.Name, len(svc.Flagstores))
		}
	}
	return nil
}

func (f *ecsc2024) value(n int) float64 {
	return 2 * f.scale / (1 + math.Exp(f.norm*float64(n-1)))
}

func (f *ecsc2024) Score(round model.Round, l *ledger.Ledger) map[model.TeamID]model.Delta {
	out := newDeltas(l)
	scoreAttack(l, round, out, func(_ model.Capture, n int) float64 {
		return f.value(n)
	})
	victims := float64(potentialVictims(l))
	scoreDefense(l, round, out, func(breadth int) float64 {
		return f.scale * ratio(float64(breadth), victims)
	})
	scoreSLA(l, round, out, func(model.Service) float64 { return f.sla })
	return out
}

// ecsc2025 keeps every delta integral.
type ecsc2025 struct {
	base    float64
	min     float64
	defense float64
	sla     float64
}

func newECSC2025(p ECSC2025Params) (*ecsc2025, error) {
	for _, v := range []struct {
		name string
		val  float64
	}{{"base", p.Base}, {"min", p.Min}, {"defense", p.Defense}, {"sla", p.SLA}} {
		if v.val != math.Trunc(v.val) {
			return nil, fmt.Errorf("%s must be a whole number, got %v", v.name, v.val)
		}
	}
	switch {
	case p.Min < 1:
		return nil, fmt.Errorf("min must be at least 1, got %v", p.Min)
	case p.Base < p.Min:
		return nil, fmt.Errorf("base %v is below min %v", p.Base, p.Min)
	case p.Defense < 0 || p.SLA < 0:
		return nil, fmt.Errorf("defense and sla must not be negative")
	}
	return &ecsc2025{base: p.Base, min: p.Min, defense: p.Defense, sla: p.SLA}, nil
}

func (f *ecsc2025) Name() string { return NameECSC2025 }

func (f *ecsc2025) Check(*ledger.Ledger) error { return nil }

func (f *ecsc2025) value(n int) float64 {
	return math.Max(f.min, math.Floor(f.base*math.Pow(30/(29+float64(n)), 3)))
}

func (f *ecsc2025) Score(round model.Round, l *ledger.Ledger) map[model.TeamID]model.Delta {
	out := newDeltas(l)
	scoreAttack(l, round, out, func(_ model.Capture, n int) float64 {
		return f.value(n)
	})
	scoreDefense(l, round, out, func(breadth int) float64 {
		return f.defense * float64(breadth)
	})
	scoreSLA(l, round, out, func(model.Service) float64 { return f.sla })
	return out
}
