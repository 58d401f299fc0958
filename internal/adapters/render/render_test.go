package render_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/okian/adsim/internal/adapters/render"
	"github.com/okian/adsim/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func report(formula string) model.Report {
	return model.Report{
		RunID:       "run-1",
		Formula:     formula,
		Data:        "synthetic:1",
		From:        0,
		To:          2,
		ScaleFactor: 1,
		Final: model.Scoreboard{
			"bravo":   {Team: "bravo", ATK: 5, DEF: 2, SLA: 3, Total: 10},
			"alpha":   {Team: "alpha", ATK: 4, DEF: 3, SLA: 3, Total: 10},
			"charlie": {Team: "charlie", ATK: 20, DEF: 0, SLA: 1, Total: 21},
			"delta":   {Team: "delta", Total: 0},
		},
	}
}

func TestRank(t *testing.T) {
	Convey("Given a scoreboard with a tie", t, func() {
		rows := render.Rank(report("x").Final)

		Convey("Then rows are ordered by total then team, and ties share a rank", func() {
			So(rows, ShouldHaveLength, 4)
			So(rows[0].Team, ShouldEqual, model.TeamID("charlie"))
			So(rows[0].Rank, ShouldEqual, 1)
			So(rows[1].Team, ShouldEqual, model.TeamID("alpha"))
			So(rows[1].Rank, ShouldEqual, 2)
			So(rows[2].Team, ShouldEqual, model.TeamID("bravo"))
			So(rows[2].Rank, ShouldEqual, 2)
			So(rows[3].Team, ShouldEqual, model.TeamID("delta"))
			So(rows[3].Rank, ShouldEqual, 4)
		})
	})
}

func TestNew(t *testing.T) {
	Convey("Given output format names", t, func() {
		for _, f := range render.Formats() {
			r, err := render.New(f)
			So(err, ShouldBeNil)
			So(r, ShouldNotBeNil)
		}
		_, err := render.New("xml")
		So(errors.Is(err, render.ErrUnknownFormat), ShouldBeTrue)
		So(errors.Is(err, model.ErrConfiguration), ShouldBeTrue)
	})
}

func TestJSON(t *testing.T) {
	Convey("Given one report", t, func() {
		var buf bytes.Buffer
		So(render.JSON{}.Render(&buf, []model.Report{report("ATKLABv1")}), ShouldBeNil)

		Convey("Then it renders as an object with a ranked scoreboard", func() {
			var out map[string]any
			So(json.Unmarshal(buf.Bytes(), &out), ShouldBeNil)
			So(out["run_id"], ShouldEqual, "run-1")
			So(out["formula"], ShouldEqual, "ATKLABv1")
			So(out["to_round"], ShouldEqual, 2.0)
			board := out["scoreboard"].([]any)
			So(board, ShouldHaveLength, 4)
			So(board[0].(map[string]any)["team"], ShouldEqual, "charlie")
			So(out, ShouldNotContainKey, "series")
		})
	})

	Convey("Given several reports with series", t, func() {
		r := report("ECSC2025")
		r.Series = []model.Snapshot{{
			Round:  0,
			Deltas: map[model.TeamID]model.Delta{"alpha": {SLA: 1}},
			Totals: model.Scoreboard{"alpha": {Team: "alpha", SLA: 1, Total: 1}},
		}}
		var buf bytes.Buffer
		So(render.JSON{}.Render(&buf, []model.Report{report("ATKLABv1"), r}), ShouldBeNil)

		Convey("Then they render as an array", func() {
			var out []map[string]any
			So(json.Unmarshal(buf.Bytes(), &out), ShouldBeNil)
			So(out, ShouldHaveLength, 2)
			series := out[1]["series"].([]any)
			So(series, ShouldHaveLength, 1)
			deltas := series[0].(map[string]any)["deltas"].(map[string]any)
			So(deltas["alpha"].(map[string]any)["sla"], ShouldEqual, 1.0)
		})
	})
}

func TestTable(t *testing.T) {
	Convey("Given a scaled report with series", t, func() {
		r := report("SaarCTF2024")
		r.ScaleFactor = 0.5
		r.Series = []model.Snapshot{
			{Round: 0, Totals: model.Scoreboard{"charlie": {Total: 3}}},
			{Round: 1, Totals: model.Scoreboard{"charlie": {Total: 7}}},
		}
		var buf bytes.Buffer
		So(render.Table{}.Render(&buf, []model.Report{r}), ShouldBeNil)
		out := buf.String()

		Convey("Then the heading names the formula and scale", func() {
			So(strings.HasPrefix(out, "SaarCTF2024 on synthetic:1, rounds 0-2 (scaled x0.5)"), ShouldBeTrue)
		})

		Convey("Then ranked rows are printed in order", func() {
			So(out, ShouldContainSubstring, "Rank")
			So(strings.Index(out, "charlie"), ShouldBeLessThan, strings.Index(out, "alpha"))
			So(strings.Index(out, "alpha"), ShouldBeLessThan, strings.Index(out, "bravo"))
			So(out, ShouldContainSubstring, "21.00")
		})

		Convey("Then the series table follows", func() {
			So(out, ShouldContainSubstring, "Round")
			So(out, ShouldContainSubstring, "7.00")
		})
	})
}
