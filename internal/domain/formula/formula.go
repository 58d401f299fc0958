// Package formula defines the contract for turning ledger state into per-round
// point deltas, and the closed set of scoring formulas that implement it.
//
// Every formula follows the same three rules and differs only in its curves:
//   - ATK: each capture is worth a strictly decreasing, positive function of
//     how many teams captured the same flag.
//   - DEF: a defender earns, per flagstore and per active attacker that did not
//     compromise it this round, points proportional to how many other teams
//     that attacker did compromise.
//   - SLA: each live flag earns a fixed amount while its service is OK or
//     RECOVERING; a missing checker record counts as DOWN.
package formula

import (
	"errors"
	"fmt"
	"strings"

	"github.com/okian/adsim/internal/domain/ledger"
	"github.com/okian/adsim/internal/domain/model"
)

// Formula names.
const (
	NameATKLABv1    = "ATKLABv1"
	NameATKLABv2    = "ATKLABv2"
	NameECSC2024    = "ECSC2024"
	NameECSC2025    = "ECSC2025"
	NameSaarCTF2024 = "SaarCTF2024"
)

// ErrUnknownFormula is returned by New for names outside the fixed set.
var ErrUnknownFormula = fmt.Errorf("%w: unknown formula", model.ErrConfiguration)

// ErrInvalidParams is returned by New when a formula's parameters are unusable.
var ErrInvalidParams = fmt.Errorf("%w: invalid formula parameters", model.ErrConfiguration)

// Formula scores one round of a competition.
//
// Score must be a pure function of its arguments: implementations keep no
// state between calls other than their parameters, so one Formula may score
// several rounds concurrently against a shared ledger.
type Formula interface {
	// Name returns the formula's canonical name.
	Name() string
	// Check reports whether the ledger satisfies the formula's data
	// prerequisites. Failures wrap model.ErrValidation.
	Check(l *ledger.Ledger) error
	// Score returns the deltas for every team of the ledger in round.
	Score(round model.Round, l *ledger.Ledger) map[model.TeamID]model.Delta
}

// Names returns the canonical names of every available formula.
func Names() []string {
	return []string{NameATKLABv1, NameATKLABv2, NameECSC2024, NameECSC2025, NameSaarCTF2024}
}

// New builds the formula called name (case-insensitive) from its parameter block.
func New(name string, p Params) (Formula, error) {
	var (
		f   Formula
		err error
	)
	switch strings.ToLower(strings.TrimSpace(name)) {
	case strings.ToLower(NameATKLABv1):
		f, err = newATKLABv1(p.ATKLABv1)
	case strings.ToLower(NameATKLABv2):
		f, err = newATKLABv2(p.ATKLABv2)
	case strings.ToLower(NameECSC2024):
		f, err = newECSC2024(p.ECSC2024)
	case strings.ToLower(NameECSC2025):
		f, err = newECSC2025(p.ECSC2025)
	case strings.ToLower(NameSaarCTF2024):
		f, err = newSaarCTF2024(p.SaarCTF2024)
	default:
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownFormula, name, strings.Join(Names(), ", "))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidParams, name, err)
	}
	return f, nil
}

var errNotPositive = errors.New("must be positive")
