// Package scaler rescales scoreboards so that the leader holds a fixed total.
package scaler

import "github.com/okian/adsim/internal/domain/model"

// Factor returns the multiplier that maps board's highest total onto target.
// ok is false when the board has no positive total; the factor is then 1.
func Factor(board model.Scoreboard, target float64) (factor float64, ok bool) {
	max := board.MaxTotal()
	if max <= 0 {
		return 1, false
	}
	return target / max, true
}

// Scale returns a scaled copy of board and the factor applied. board is not
// modified.
func Scale(board model.Scoreboard, target float64) (model.Scoreboard, float64) {
	factor, ok := Factor(board, target)
	if !ok {
		return board.Clone(), 1
	}
	return apply(board, factor), factor
}

// ScaleSeries applies factor to the totals of every snapshot, returning new
// snapshots. Per-round deltas are scaled with the same factor.
func ScaleSeries(series []model.Snapshot, factor float64) []model.Snapshot {
	out := make([]model.Snapshot, len(series))
	for i, snap := range series {
		deltas := make(map[model.TeamID]model.Delta, len(snap.Deltas))
		for team, d := range snap.Deltas {
			deltas[team] = model.Delta{ATK: d.ATK * factor, DEF: d.DEF * factor, SLA: d.SLA * factor}
		}
		out[i] = model.Snapshot{Round: snap.Round, Deltas: deltas, Totals: apply(snap.Totals, factor)}
	}
	return out
}

func apply(board model.Scoreboard, factor float64) model.Scoreboard {
	out := make(model.Scoreboard, len(board))
	for team, entry := range board {
		out[team] = entry.Scale(factor)
	}
	return out
}
