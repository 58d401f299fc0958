package render

import (
	"encoding/json"
	"io"

	"github.com/okian/adsim/internal/domain/model"
)

// JSON renders reports as indented JSON. A single report is written as an
// object, several as an array.
type JSON struct{}

type jsonReport struct {
	RunID       string      `json:"run_id"`
	Formula     string      `json:"formula"`
	Data        string      `json:"data"`
	FromRound   model.Round `json:"from_round"`
	ToRound     model.Round `json:"to_round"`
	ScaleFactor float64     `json:"scale_factor"`
	Scoreboard  []Row       `json:"scoreboard"`
	Series      []jsonRound `json:"series,omitempty"`
}

type jsonRound struct {
	Round  model.Round                  `json:"round"`
	Totals []Row                        `json:"totals"`
	Deltas map[model.TeamID]model.Delta `json:"deltas"`
}

// Render writes reports to w.
func (JSON) Render(w io.Writer, reports []model.Report) error {
	out := make([]jsonReport, 0, len(reports))
	for i := range reports {
		out = append(out, toJSON(&reports[i]))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if len(out) == 1 {
		return enc.Encode(out[0])
	}
	return enc.Encode(out)
}

func toJSON(r *model.Report) jsonReport {
	out := jsonReport{
		RunID:       r.RunID,
		Formula:     r.Formula,
		Data:        r.Data,
		FromRound:   r.From,
		ToRound:     r.To,
		ScaleFactor: r.ScaleFactor,
		Scoreboard:  Rank(r.Final),
	}
	for _, snap := range r.Series {
		out.Series = append(out.Series, jsonRound{
			Round:  snap.Round,
			Totals: Rank(snap.Totals),
			Deltas: snap.Deltas,
		})
	}
	return out
}
