package ledger

import (
	"fmt"

	"github.com/okian/adsim/internal/domain/model"
)

// Name returns the competition name.
func (l *Ledger) Name() string { return l.name }

// Teams returns every team id, sorted. The slice must not be modified.
func (l *Ledger) Teams() []model.TeamID { return l.teams }

// Eligible returns every team except the NOP team, sorted.
func (l *Ledger) Eligible() []model.TeamID { return l.eligible }

// Services returns the services sorted by name, each with sorted flagstores.
func (l *Ledger) Services() []model.Service { return l.services }

// Retention returns the flag retention window in rounds.
func (l *Ledger) Retention() int { return l.retention }

// FirstRound returns the first round of the competition.
func (l *Ledger) FirstRound() model.Round { return l.first }

// LastRound returns the last round of the competition (or of the view).
func (l *Ledger) LastRound() model.Round { return l.last }

// NOPTeam returns the configured NOP team, or "" when none is set.
func (l *Ledger) NOPTeam() model.TeamID { return l.nop }

// IsNOP reports whether team is the NOP team.
func (l *Ledger) IsNOP(team model.TeamID) bool { return l.nop != "" && team == l.nop }

// Duplicates returns how many repeated captures were dropped at construction.
func (l *Ledger) Duplicates() int { return l.duplicates }

// Len returns the number of captures used for scoring.
func (l *Ledger) Len() int { return len(l.captures) }

// CapturesOriginatingAt returns every capture of a flag minted for
// (service, flagstore, round), regardless of when it was captured, ordered by
// capture round and attacker.
func (l *Ledger) CapturesOriginatingAt(service model.ServiceName, flagstore model.FlagstoreID, round model.Round) []OriginCapture {
	return l.byOrigin[originKey{service: service, flagstore: flagstore, round: round}]
}

// CapturesOf returns the captures of one specific flag.
func (l *Ledger) CapturesOf(flag model.Origin) []OriginCapture {
	return l.byFlag[flag]
}

// CaptureCount returns how many distinct teams captured flag.
func (l *Ledger) CaptureCount(flag model.Origin) int {
	return len(l.byFlag[flag])
}

// CaptureCountThrough returns how many distinct teams captured flag in or
// before round.
func (l *Ledger) CaptureCountThrough(flag model.Origin, round model.Round) int {
	n := 0
	for _, c := range l.byFlag[flag] {
		if c.Round <= round {
			n++
		}
	}
	return n
}

// CapturesAt returns the captures submitted during round, ordered by attacker
// and flag origin.
func (l *Ledger) CapturesAt(round model.Round) []model.Capture {
	return l.byRound[round]
}

// ActiveAttackersAt returns the teams that captured at least one flag in
// round, sorted.
func (l *Ledger) ActiveAttackersAt(round model.Round) []model.TeamID {
	byAttacker := l.victims[round]
	if len(byAttacker) == 0 {
		return nil
	}
	out := make([]model.TeamID, 0, len(byAttacker))
	for _, team := range l.teams {
		if _, ok := byAttacker[team]; ok {
			out = append(out, team)
		}
	}
	return out
}

// CapturesByAttackerAt maps each active attacker of round to the number of
// distinct victims it captured flags from in that round.
func (l *Ledger) CapturesByAttackerAt(round model.Round) map[model.TeamID]int {
	byAttacker := l.victims[round]
	out := make(map[model.TeamID]int, len(byAttacker))
	for attacker, victims := range byAttacker {
		out[attacker] = len(victims)
	}
	return out
}

// VictimsOf returns the distinct teams attacker captured flags from in round.
func (l *Ledger) VictimsOf(attacker model.TeamID, round model.Round) []model.TeamID {
	return l.victims[round][attacker]
}

// Compromised reports whether attacker captured any flag of victim's
// (service, flagstore) during round.
func (l *Ledger) Compromised(attacker, victim model.TeamID, service model.ServiceName, flagstore model.FlagstoreID, round model.Round) bool {
	_, ok := l.compromised[compromiseKey{
		attacker:  attacker,
		victim:    victim,
		service:   service,
		flagstore: flagstore,
		round:     round,
	}]
	return ok
}

// CheckerStatus returns the recorded status, or model.ErrNotFound.
func (l *Ledger) CheckerStatus(team model.TeamID, service model.ServiceName, round model.Round) (model.Status, error) {
	st, ok := l.statuses[statusKey{team: team, service: service, round: round}]
	if !ok {
		return model.StatusDown, fmt.Errorf("%w: checker status for %s/%s@%d", model.ErrNotFound, team, service, round)
	}
	return st, nil
}

// StatusOrDown returns the recorded status, treating a missing record as DOWN.
func (l *Ledger) StatusOrDown(team model.TeamID, service model.ServiceName, round model.Round) model.Status {
	st, ok := l.statuses[statusKey{team: team, service: service, round: round}]
	if !ok {
		return model.StatusDown
	}
	return st
}

// LiveFlags returns how many flags per flagstore are inside their retention
// window at round. One flag is minted per flagstore per round starting at
// the competition's first round.
func (l *Ledger) LiveFlags(round model.Round) int {
	if round < l.first {
		return 0
	}
	minted := int(round-l.first) + 1
	if minted > l.retention {
		return l.retention
	}
	return minted
}
