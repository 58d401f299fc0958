package model_test

import (
	"errors"
	"testing"

	model "github.com/okian/adsim/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestStatus(t *testing.T) {
	convey.Convey("Given checker status names", t, func() {
		convey.Convey("When parsing known names", func() {
			cases := map[string]model.Status{
				"OK":         model.StatusOK,
				"ok":         model.StatusOK,
				"RECOVERING": model.StatusRecovering,
				"MUMBLE":     model.StatusMumble,
				"OFFLINE":    model.StatusDown,
				"DOWN":       model.StatusDown,
				" error ":    model.StatusError,
			}

			convey.Convey("Then each maps to its status", func() {
				for raw, want := range cases {
					got, err := model.ParseStatus(raw)
					convey.So(err, convey.ShouldBeNil)
					convey.So(got, convey.ShouldEqual, want)
				}
			})
		})

		convey.Convey("When parsing an unknown name", func() {
			_, err := model.ParseStatus("SLEEPY")

			convey.Convey("Then it should be a validation error", func() {
				convey.So(errors.Is(err, model.ErrValidation), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When checking SLA eligibility", func() {
			convey.So(model.StatusOK.Healthy(), convey.ShouldBeTrue)
			convey.So(model.StatusRecovering.Healthy(), convey.ShouldBeTrue)
			convey.So(model.StatusMumble.Healthy(), convey.ShouldBeFalse)
			convey.So(model.StatusDown.Healthy(), convey.ShouldBeFalse)
			convey.So(model.StatusError.Healthy(), convey.ShouldBeFalse)
		})

		convey.Convey("When round-tripping through text", func() {
			var s model.Status
			text, err := model.StatusRecovering.MarshalText()
			convey.So(err, convey.ShouldBeNil)
			convey.So(s.UnmarshalText(text), convey.ShouldBeNil)
			convey.So(s, convey.ShouldEqual, model.StatusRecovering)
		})

		convey.Convey("When the zero value is used", func() {
			var s model.Status
			convey.So(s, convey.ShouldEqual, model.StatusDown)
		})
	})
}

func TestScoreEntry(t *testing.T) {
	convey.Convey("Given a scoreboard entry", t, func() {
		entry := model.Entry{Team: "A"}

		convey.Convey("When adding deltas", func() {
			entry = entry.Add(model.Delta{ATK: 1, DEF: 2, SLA: 3})
			entry = entry.Add(model.Delta{ATK: 0.5})

			convey.Convey("Then components and total accumulate", func() {
				convey.So(entry.ATK, convey.ShouldEqual, 1.5)
				convey.So(entry.DEF, convey.ShouldEqual, 2.0)
				convey.So(entry.SLA, convey.ShouldEqual, 3.0)
				convey.So(entry.Total, convey.ShouldEqual, 6.5)
			})
		})

		convey.Convey("When scaling", func() {
			entry = entry.Add(model.Delta{ATK: 2, DEF: 4, SLA: 6}).Scale(0.5)

			convey.Convey("Then every component is multiplied", func() {
				convey.So(entry.ATK, convey.ShouldEqual, 1.0)
				convey.So(entry.DEF, convey.ShouldEqual, 2.0)
				convey.So(entry.SLA, convey.ShouldEqual, 3.0)
				convey.So(entry.Total, convey.ShouldEqual, 6.0)
			})
		})
	})

	convey.Convey("Given a scoreboard", t, func() {
		board := model.Scoreboard{
			"A": {Team: "A", Total: -3},
			"B": {Team: "B", Total: 7},
		}

		convey.Convey("Then MaxTotal finds the leader", func() {
			convey.So(board.MaxTotal(), convey.ShouldEqual, 7.0)
			convey.So(model.Scoreboard{}.MaxTotal(), convey.ShouldEqual, 0.0)
		})

		convey.Convey("Then Clone does not alias the original", func() {
			clone := board.Clone()
			clone["A"] = model.Entry{Team: "A", Total: 100}
			convey.So(board["A"].Total, convey.ShouldEqual, -3.0)
		})
	})
}
