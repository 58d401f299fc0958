package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/okian/adsim/internal/domain/model"
	"github.com/olekukonko/tablewriter"
)

// Table renders one scoreboard table per report, followed by a per-round
// totals table when the report carries a series.
type Table struct{}

// Render writes reports to w.
func (Table) Render(w io.Writer, reports []model.Report) error {
	for i := range reports {
		r := &reports[i]
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s on %s, rounds %d-%d%s\n", r.Formula, r.Data, r.From, r.To, scaleNote(r.ScaleFactor)); err != nil {
			return err
		}

		rows := Rank(r.Final)
		t := newTable(w)
		t.SetHeader([]string{"Rank", "Team", "Total", "ATK", "DEF", "SLA"})
		for _, row := range rows {
			t.Append([]string{
				strconv.Itoa(row.Rank),
				string(row.Team),
				num(row.Total),
				num(row.ATK),
				num(row.DEF),
				num(row.SLA),
			})
		}
		t.Render()

		if len(r.Series) > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
			renderSeries(w, rows, r.Series)
		}
	}
	return nil
}

// renderSeries writes cumulative totals per round, one column per team in
// final ranking order.
func renderSeries(w io.Writer, rows []Row, series []model.Snapshot) {
	t := newTable(w)
	header := []string{"Round"}
	for _, row := range rows {
		header = append(header, string(row.Team))
	}
	t.SetHeader(header)
	for _, snap := range series {
		line := []string{strconv.Itoa(int(snap.Round))}
		for _, row := range rows {
			line = append(line, num(snap.Totals[row.Team].Total))
		}
		t.Append(line)
	}
	t.Render()
}

func newTable(w io.Writer) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetAutoFormatHeaders(false)
	t.SetAlignment(tablewriter.ALIGN_RIGHT)
	return t
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func scaleNote(factor float64) string {
	if factor == 1 {
		return ""
	}
	return fmt.Sprintf(" (scaled x%.4g)", factor)
}
