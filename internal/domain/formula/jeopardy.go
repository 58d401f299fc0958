package formula

import (
	"fmt"
	"math"
	"strings"
)

// Jeopardy decay curves.
const (
	CurveDHM      = "dhm"      // exponential decay over the team count (DHM)
	CurveCSCG     = "cscg"     // logistic-style decay (34C3, CSCG)
	CurveHXP      = "hxp"      // hyperbolic decay (hxp CTF)
	CurveECSC2025 = "ecsc2025" // cubic decay (ECSC 2025)
)

// curve evaluates the value of a flag captured by solves teams out of teams
// participants, decaying from max towards min.
type curve func(solves float64, teams int, max, min float64) float64

// jeopardy returns the curve called name with alpha/beta defaults applied.
// Zero alpha or beta selects the curve's default.
func jeopardy(name string, alpha, beta float64) (curve, error) {
	or := func(v, def float64) float64 {
		if v == 0 {
			return def
		}
		return v
	}
	switch strings.ToLower(name) {
	case CurveDHM:
		if beta != 0 {
			return nil, fmt.Errorf("curve %s does not take beta", CurveDHM)
		}
		a := or(alpha, 0.705)
		return func(solves float64, teams int, max, min float64) float64 {
			x := math.Max(0, solves-1) / math.Max(1, float64(teams-1))
			return max * math.Pow(min/max, math.Pow(x, a))
		}, nil
	case CurveCSCG:
		a, b := or(alpha, 1.206069), or(beta, 11.92201)
		return func(solves float64, _ int, max, min float64) float64 {
			return min + (max-min)/(1+math.Pow(math.Max(0, solves-1)/b, a))
		}, nil
	case CurveHXP:
		a, b := or(alpha, 10), or(beta, 9)
		return func(solves float64, _ int, max, _ float64) float64 {
			return max * math.Min(1, a/(b+solves))
		}, nil
	case CurveECSC2025:
		if alpha != 0 || beta != 0 {
			return nil, fmt.Errorf("curve %s takes neither alpha nor beta", CurveECSC2025)
		}
		return func(solves float64, _ int, max, _ float64) float64 {
			return max * math.Pow(30/(29+math.Max(solves, 1)), 3)
		}, nil
	default:
		return nil, fmt.Errorf("unknown curve %q", name)
	}
}
