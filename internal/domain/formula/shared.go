package formula

import (
	"github.com/okian/adsim/internal/domain/ledger"
	"github.com/okian/adsim/internal/domain/model"
)

// newDeltas returns a zero delta for every team of the ledger.
func newDeltas(l *ledger.Ledger) map[model.TeamID]model.Delta {
	out := make(map[model.TeamID]model.Delta, len(l.Teams()))
	for _, team := range l.Teams() {
		out[team] = model.Delta{}
	}
	return out
}

// potentialVictims is the number of teams an attacker can capture flags from.
func potentialVictims(l *ledger.Ledger) int {
	return len(l.Eligible()) - 1
}

// ratio returns num/den, or 0 when den is not positive.
func ratio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}

// scoreAttack credits every capture submitted in round with value(capture, n),
// where n is the flag's total capture count.
func scoreAttack(l *ledger.Ledger, round model.Round, out map[model.TeamID]model.Delta, value func(c model.Capture, n int) float64) {
	for _, c := range l.CapturesAt(round) {
		n := l.CaptureCount(c.Flag)
		if n == 0 {
			continue
		}
		d := out[c.Attacker]
		d.ATK += value(c, n)
		out[c.Attacker] = d
	}
}

// scoreDefense credits each defender, for every flagstore it owns and every
// attacker active in round that did not compromise that flagstore, with
// value(breadth), where breadth counts the attacker's other victims this round.
func scoreDefense(l *ledger.Ledger, round model.Round, out map[model.TeamID]model.Delta, value func(breadth int) float64) {
	attackers := l.ActiveAttackersAt(round)
	if len(attackers) == 0 {
		return
	}
	for _, defender := range l.Eligible() {
		total := 0.0
		for _, attacker := range attackers {
			if attacker == defender {
				continue
			}
			breadth := breadthExcluding(l.VictimsOf(attacker, round), defender)
			if breadth == 0 {
				continue
			}
			worth := value(breadth)
			for _, svc := range l.Services() {
				for _, fs := range svc.Flagstores {
					if l.Compromised(attacker, defender, svc.Name, fs, round) {
						continue
					}
					total += worth
				}
			}
		}
		d := out[defender]
		d.DEF += total
		out[defender] = d
	}
}

func breadthExcluding(victims []model.TeamID, team model.TeamID) int {
	n := len(victims)
	for _, v := range victims {
		if v == team {
			n--
			break
		}
	}
	return n
}

// scoreSLA credits perFlag(service) for every live flag of each healthy
// service. Missing checker records count as DOWN.
func scoreSLA(l *ledger.Ledger, round model.Round, out map[model.TeamID]model.Delta, perFlag func(svc model.Service) float64) {
	live := l.LiveFlags(round)
	if live == 0 {
		return
	}
	for _, team := range l.Teams() {
		total := 0.0
		for _, svc := range l.Services() {
			if !l.StatusOrDown(team, svc.Name, round).Healthy() {
				continue
			}
			total += perFlag(svc) * float64(live*len(svc.Flagstores))
		}
		d := out[team]
		d.SLA += total
		out[team] = d
	}
}

// healthyTeams counts eligible teams with at least one OK or RECOVERING
// service in round.
func healthyTeams(l *ledger.Ledger, round model.Round) int {
	n := 0
	for _, team := range l.Eligible() {
		for _, svc := range l.Services() {
			if l.StatusOrDown(team, svc.Name, round).Healthy() {
				n++
				break
			}
		}
	}
	return n
}
