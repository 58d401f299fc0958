package model

// Delta is the change in a team's score caused by one round.
type Delta struct {
	ATK float64 `json:"atk"`
	DEF float64 `json:"def"`
	SLA float64 `json:"sla"`
}

// Total returns ATK + DEF + SLA.
func (d Delta) Total() float64 {
	return d.ATK + d.DEF + d.SLA
}

// Plus returns the component-wise sum of d and o.
func (d Delta) Plus(o Delta) Delta {
	return Delta{ATK: d.ATK + o.ATK, DEF: d.DEF + o.DEF, SLA: d.SLA + o.SLA}
}

// Entry is a team's cumulative score breakdown.
type Entry struct {
	Team  TeamID  `json:"team"`
	ATK   float64 `json:"atk"`
	DEF   float64 `json:"def"`
	SLA   float64 `json:"sla"`
	Total float64 `json:"total"`
}

// Add folds a round delta into the entry.
func (e Entry) Add(d Delta) Entry {
	e.ATK += d.ATK
	e.DEF += d.DEF
	e.SLA += d.SLA
	e.Total += d.Total()
	return e
}

// Scale multiplies every component by factor.
func (e Entry) Scale(factor float64) Entry {
	e.ATK *= factor
	e.DEF *= factor
	e.SLA *= factor
	e.Total *= factor
	return e
}

// Scoreboard maps teams to their cumulative entries.
type Scoreboard map[TeamID]Entry

// Clone returns a shallow copy of the scoreboard.
func (s Scoreboard) Clone() Scoreboard {
	out := make(Scoreboard, len(s))
	for team, entry := range s {
		out[team] = entry
	}
	return out
}

// MaxTotal returns the highest total on the board, or 0 for an empty board.
func (s Scoreboard) MaxTotal() float64 {
	first := true
	max := 0.0
	for _, entry := range s {
		if first || entry.Total > max {
			max = entry.Total
			first = false
		}
	}
	return max
}

// Snapshot is one point of the per-round time series.
type Snapshot struct {
	Round  Round            `json:"round"`
	Deltas map[TeamID]Delta `json:"deltas"`
	Totals Scoreboard       `json:"totals"`
}
