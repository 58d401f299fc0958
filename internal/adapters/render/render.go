// Package render writes simulation reports for humans and machines.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/okian/adsim/internal/domain/model"
	"golang.org/x/exp/slices"
)

// Output formats.
const (
	FormatJSON  = "json"
	FormatTable = "table"
)

// ErrUnknownFormat is returned by New for unsupported formats.
var ErrUnknownFormat = fmt.Errorf("%w: unknown output format", model.ErrConfiguration)

// Renderer writes reports to w.
type Renderer interface {
	Render(w io.Writer, reports []model.Report) error
}

// Formats returns the supported output formats.
func Formats() []string {
	return []string{FormatJSON, FormatTable}
}

// New returns the renderer for format.
func New(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		return JSON{}, nil
	case FormatTable:
		return Table{}, nil
	default:
		return nil, fmt.Errorf("%w %q (want one of %s)", ErrUnknownFormat, format, strings.Join(Formats(), ", "))
	}
}

// Row is one ranked scoreboard line.
type Row struct {
	Rank  int          `json:"rank"`
	Team  model.TeamID `json:"team"`
	Total float64      `json:"total"`
	ATK   float64      `json:"atk"`
	DEF   float64      `json:"def"`
	SLA   float64      `json:"sla"`
}

// Rank orders board by total descending, then team ascending. Teams with
// equal totals share a rank and the next rank is skipped ("1, 1, 3").
func Rank(board model.Scoreboard) []Row {
	rows := make([]Row, 0, len(board))
	for team, e := range board {
		rows = append(rows, Row{Team: team, Total: e.Total, ATK: e.ATK, DEF: e.DEF, SLA: e.SLA})
	}
	slices.SortFunc(rows, func(a, b Row) bool {
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.Team < b.Team
	})
	for i := range rows {
		if i > 0 && rows[i].Total == rows[i-1].Total {
			rows[i].Rank = rows[i-1].Rank
			continue
		}
		rows[i].Rank = i + 1
	}
	return rows
}
