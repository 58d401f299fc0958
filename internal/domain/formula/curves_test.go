package formula

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestJeopardyCurves(t *testing.T) {
	Convey("Given every jeopardy curve with default shape", t, func() {
		for _, name := range []string{CurveDHM, CurveCSCG, CurveHXP, CurveECSC2025} {
			c, err := jeopardy(name, 0, 0)
			So(err, ShouldBeNil)

			Convey("Then "+name+" starts at max and strictly decays", func() {
				So(c(1, 20, 10, 1), ShouldAlmostEqual, 10, 1e-9)
				prev := c(1, 20, 10, 1)
				for n := 2; n <= 60; n++ {
					v := c(float64(n), 20, 10, 1)
					So(v, ShouldBeLessThan, prev)
					So(v, ShouldBeGreaterThan, 0)
					prev = v
				}
			})
		}
	})

	Convey("Given invalid curve selections", t, func() {
		_, err := jeopardy("nope", 0, 0)
		So(err, ShouldNotBeNil)
		_, err = jeopardy(CurveDHM, 0, 3)
		So(err, ShouldNotBeNil)
		_, err = jeopardy(CurveECSC2025, 1, 0)
		So(err, ShouldNotBeNil)
	})
}

func TestAttackValues(t *testing.T) {
	Convey("Given the default parameters", t, func() {
		p := DefaultParams()

		v2, err := newATKLABv2(p.ATKLABv2)
		So(err, ShouldBeNil)
		e24, err := newECSC2024(p.ECSC2024)
		So(err, ShouldBeNil)
		e25, err := newECSC2025(p.ECSC2025)
		So(err, ShouldBeNil)
		saar, err := newSaarCTF2024(p.SaarCTF2024)
		So(err, ShouldBeNil)

		values := map[string]func(n int) float64{
			NameATKLABv2:    func(n int) float64 { return v2.value(n, 10) },
			NameECSC2024:    e24.value,
			NameECSC2025:    e25.value,
			NameSaarCTF2024: func(n int) float64 { return saar.value(n, 2) },
		}

		Convey("Then capture values never grow with the capture count and stay positive", func() {
			for _, value := range values {
				prev := value(1)
				for n := 2; n <= 100; n++ {
					v := value(n)
					So(v, ShouldBeLessThanOrEqualTo, prev)
					So(v, ShouldBeGreaterThan, 0)
					prev = v
				}
			}
		})

		Convey("Then a lone capture is worth the curve maximum", func() {
			So(v2.value(1, 10), ShouldAlmostEqual, 10, 1e-9)
			So(e24.value(1), ShouldAlmostEqual, p.ECSC2024.Scale, 1e-9)
			So(e25.value(1), ShouldEqual, 10)
			So(saar.value(1, 1), ShouldAlmostEqual, 2, 1e-9)
		})

		Convey("Then ECSC2025 values are whole numbers", func() {
			for n := 1; n <= 40; n++ {
				v := e25.value(n)
				So(v, ShouldEqual, float64(int(v)))
			}
		})

		Convey("Then the ATKLABv2 floor holds for widely shared flags", func() {
			So(v2.value(10000, 10), ShouldBeGreaterThanOrEqualTo, p.ATKLABv2.Min)
		})
	})
}

func TestParamValidation(t *testing.T) {
	Convey("Given invalid parameter blocks", t, func() {
		_, err := newATKLABv1(ATKLABv1Params{Defense: 0})
		So(err, ShouldNotBeNil)

		_, err = newATKLABv2(ATKLABv2Params{Curve: CurveCSCG, Base: 1, Min: 2, Attackers: AttackersScaled})
		So(err, ShouldNotBeNil)

		_, err = newATKLABv2(ATKLABv2Params{Curve: CurveCSCG, Base: 10, Min: 1, Attackers: "everyone"})
		So(err, ShouldNotBeNil)

		_, err = newATKLABv2(ATKLABv2Params{Curve: CurveHXP, Alpha: 30, Beta: 2, Base: 10, Min: 1, Attackers: AttackersScaled})
		So(err, ShouldNotBeNil)

		_, err = newECSC2025(ECSC2025Params{Base: 10.5, Min: 1, Defense: 1, SLA: 1})
		So(err, ShouldNotBeNil)

		_, err = newECSC2024(ECSC2024Params{Scale: 1, Norm: 0, SLA: 1})
		So(err, ShouldNotBeNil)

		_, err = newSaarCTF2024(SaarCTF2024Params{Offense: -1})
		So(err, ShouldNotBeNil)
	})
}
