package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/adsim/internal/adapters/source"
	"github.com/okian/adsim/internal/app"
	"github.com/okian/adsim/internal/domain/formula"
	"github.com/okian/adsim/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// stubSource serves a fixed competition and counts loads.
type stubSource struct {
	comp  func() *model.Competition
	err   error
	loads int
}

func (s *stubSource) String() string { return "stub:test" }

func (s *stubSource) Load(context.Context) (*model.Competition, error) {
	s.loads++
	if s.err != nil {
		return nil, s.err
	}
	return s.comp(), nil
}

func flag(owner model.TeamID, round model.Round) model.Origin {
	return model.Origin{Team: owner, Service: "S", Flagstore: 1, Round: round}
}

// competition: A exploits B then C, C retaliates, NOP is never attacked
// but hands out one flag to A.
func competition() *model.Competition {
	comp := &model.Competition{
		Name:      "stub",
		Teams:     []model.TeamID{"A", "B", "C", "NOP"},
		Services:  []model.Service{{Name: "S", Flagstores: []model.FlagstoreID{1}}},
		Retention: 2,
		LastRound: 5,
		Captures: []model.Capture{
			{Attacker: "A", Flag: flag("B", 1), Round: 2},
			{Attacker: "A", Flag: flag("C", 2), Round: 3},
			{Attacker: "C", Flag: flag("A", 3), Round: 4},
			{Attacker: "A", Flag: flag("NOP", 4), Round: 4},
		},
	}
	for r := model.Round(0); r <= 5; r++ {
		for _, team := range comp.Teams {
			comp.Statuses = append(comp.Statuses, model.CheckerStatus{Team: team, Service: "S", Round: r, Status: model.StatusOK})
		}
	}
	return comp
}

func TestSimulate(t *testing.T) {
	Convey("Given a service and a stub source", t, func() {
		ctx := context.Background()
		src := &stubSource{comp: competition}

		Convey("When comparing several formulas over the full range", func() {
			svc := app.New(app.WithWorkers(3))
			reports, err := svc.Simulate(ctx, src, formula.Names(), app.Unbounded, app.Unbounded)

			Convey("Then the data is loaded once and every formula reports", func() {
				So(err, ShouldBeNil)
				So(src.loads, ShouldEqual, 1)
				So(reports, ShouldHaveLength, len(formula.Names()))
				for i, r := range reports {
					So(r.Formula, ShouldEqual, formula.Names()[i])
					So(r.From, ShouldEqual, 0)
					So(r.To, ShouldEqual, 5)
					So(r.Data, ShouldEqual, "stub:test")
					So(r.ScaleFactor, ShouldEqual, 1)
					So(r.Final, ShouldHaveLength, 4)
					So(r.Series, ShouldBeEmpty)
				}
			})

			Convey("Then every report shares one run id", func() {
				So(reports[0].RunID, ShouldNotBeBlank)
				for _, r := range reports {
					So(r.RunID, ShouldEqual, reports[0].RunID)
				}
			})
		})

		Convey("When the range is bounded and series are requested", func() {
			svc := app.New(app.WithSeries(true))
			reports, err := svc.Simulate(ctx, src, []string{formula.NameATKLABv1}, 2, 3)

			Convey("Then only those rounds are scored", func() {
				So(err, ShouldBeNil)
				So(reports[0].Series, ShouldHaveLength, 2)
				So(reports[0].Series[0].Round, ShouldEqual, 2)
				So(reports[0].Series[1].Round, ShouldEqual, 3)
			})

			Convey("Then captures after the last round are ignored", func() {
				So(reports[0].Final["C"].ATK, ShouldEqual, 0)
			})
		})

		Convey("When scaling to a target", func() {
			svc := app.New(app.WithScaleTo(100), app.WithSeries(true), app.WithScaleSeries(true))
			reports, err := svc.Simulate(ctx, src, []string{formula.NameECSC2025}, app.Unbounded, app.Unbounded)

			Convey("Then the leader holds exactly the target", func() {
				So(err, ShouldBeNil)
				So(reports[0].Final.MaxTotal(), ShouldAlmostEqual, 100, 1e-9)
				So(reports[0].ScaleFactor, ShouldNotEqual, 1)
			})

			Convey("Then the series ends on the scaled totals", func() {
				last := reports[0].Series[len(reports[0].Series)-1]
				So(last.Totals.MaxTotal(), ShouldAlmostEqual, 100, 1e-9)
			})
		})

		Convey("When scaling to zero", func() {
			reports, err := app.New(app.WithScaleTo(0)).Simulate(ctx, src, []string{formula.NameATKLABv1}, app.Unbounded, app.Unbounded)

			Convey("Then every total becomes zero", func() {
				So(err, ShouldBeNil)
				So(reports[0].ScaleFactor, ShouldEqual, 0)
				for _, e := range reports[0].Final {
					So(e.Total, ShouldEqual, 0)
				}
			})
		})

		Convey("When the range starts after a flag was first captured", func() {
			reports, err := app.New().Simulate(ctx, src, []string{formula.NameSaarCTF2024}, 3, 5)

			Convey("Then no team loses attack points to earlier rounds", func() {
				So(err, ShouldBeNil)
				for _, e := range reports[0].Final {
					So(e.ATK, ShouldBeGreaterThanOrEqualTo, 0)
				}
			})
		})

		Convey("When the NOP team is configured", func() {
			svc := app.New(app.WithNOPTeam("NOP"))
			reports, err := svc.Simulate(ctx, src, []string{formula.NameATKLABv1}, app.Unbounded, app.Unbounded)

			Convey("Then captures of its flags earn nothing", func() {
				So(err, ShouldBeNil)
				plain, err := app.New().Simulate(ctx, &stubSource{comp: competition}, []string{formula.NameATKLABv1}, app.Unbounded, app.Unbounded)
				So(err, ShouldBeNil)
				So(reports[0].Final["A"].ATK, ShouldBeLessThan, plain[0].Final["A"].ATK)
			})
		})

		Convey("When the NOP team does not exist", func() {
			_, err := app.New(app.WithNOPTeam("ghost")).Simulate(ctx, src, []string{formula.NameATKLABv1}, app.Unbounded, app.Unbounded)

			Convey("Then it is a validation error", func() {
				So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
			})
		})

		Convey("When a formula name is unknown", func() {
			_, err := app.New().Simulate(ctx, src, []string{formula.NameATKLABv1, "FooCTF"}, app.Unbounded, app.Unbounded)

			Convey("Then it fails as configuration error before loading", func() {
				So(errors.Is(err, formula.ErrUnknownFormula), ShouldBeTrue)
				So(errors.Is(err, model.ErrConfiguration), ShouldBeTrue)
				So(src.loads, ShouldEqual, 0)
			})
		})

		Convey("When no formula is given", func() {
			_, err := app.New().Simulate(ctx, src, nil, app.Unbounded, app.Unbounded)
			So(errors.Is(err, app.ErrNoFormula), ShouldBeTrue)
		})

		Convey("When the bounds are inverted", func() {
			_, err := app.New().Simulate(ctx, src, []string{formula.NameATKLABv1}, 4, 2)
			So(errors.Is(err, model.ErrConfiguration), ShouldBeTrue)
		})

		Convey("When the source fails", func() {
			src.err = source.ErrMalformed
			_, err := app.New().Simulate(ctx, src, []string{formula.NameATKLABv1}, app.Unbounded, app.Unbounded)

			Convey("Then the error is passed through", func() {
				So(errors.Is(err, source.ErrMalformed), ShouldBeTrue)
				So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
			})
		})
	})

	Convey("Given a synthetic competition", t, func() {
		ctx := context.Background()

		Convey("Then repeated runs with different worker counts agree", func() {
			src, err := source.Parse("synthetic:7,5,2,30")
			So(err, ShouldBeNil)
			one, err := app.New(app.WithWorkers(1)).Simulate(ctx, src, []string{formula.NameSaarCTF2024}, app.Unbounded, app.Unbounded)
			So(err, ShouldBeNil)
			many, err := app.New(app.WithWorkers(8)).Simulate(ctx, src, []string{formula.NameSaarCTF2024}, app.Unbounded, app.Unbounded)
			So(err, ShouldBeNil)
			So(many[0].Final, ShouldResemble, one[0].Final)
		})
	})
}
