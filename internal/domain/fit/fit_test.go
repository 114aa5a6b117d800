package fit_test

import (
	"math"
	"testing"

	"github.com/okian/bgfit/internal/domain/fit"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAboveThreshold(t *testing.T) {
	Convey("Given values above a threshold", t, func() {
		values := []float64{6, 10}
		threshold := 5.0

		Convey("When fitting an exponential tail", func() {
			alpha, count, err := fit.AboveThreshold(fit.Exponential, values, threshold)

			Convey("Then alpha is the reciprocal mean excess", func() {
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 2)
				So(alpha, ShouldAlmostEqual, 1.0/3.0, 1e-12)
			})
		})

		Convey("When fitting a Rayleigh tail", func() {
			alpha, count, err := fit.AboveThreshold(fit.Rayleigh, values, threshold)

			Convey("Then alpha is 2n over the sum of squared excesses", func() {
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 2)
				So(alpha, ShouldAlmostEqual, 4.0/26.0, 1e-12)
			})
		})

		Convey("When fitting a power tail", func() {
			alpha, count, err := fit.AboveThreshold(fit.Power, values, threshold)

			Convey("Then alpha is the Hill estimator", func() {
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 2)
				want := 2.0 / (math.Log(6.0/5.0) + math.Log(10.0/5.0))
				So(alpha, ShouldAlmostEqual, want, 1e-12)
			})
		})
	})

	Convey("Given values all exactly equal to the threshold", t, func() {
		values := []float64{7, 7, 7}

		Convey("When fitting each model", func() {
			Convey("Then every estimator returns a defined result without failing", func() {
				for _, model := range []fit.Model{fit.Exponential, fit.Rayleigh, fit.Power} {
					alpha, count, err := fit.AboveThreshold(model, values, 7)
					So(err, ShouldBeNil)
					So(count, ShouldEqual, 3)
					So(math.IsNaN(alpha), ShouldBeFalse)
					So(math.IsInf(alpha, 1), ShouldBeTrue)
				}
			})
		})
	})

	Convey("Given an empty value slice", t, func() {
		Convey("When fitting", func() {
			_, _, err := fit.AboveThreshold(fit.Exponential, nil, 5)

			Convey("Then the error marks the precondition violation", func() {
				So(err, ShouldNotBeNil)
				So(err, ShouldEqual, fit.ErrNoValues)
			})
		})
	})

	Convey("Given an unknown model", t, func() {
		Convey("When fitting", func() {
			_, _, err := fit.AboveThreshold(fit.Model("gaussian"), []float64{7}, 5)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestParseModel(t *testing.T) {
	Convey("Given model names", t, func() {
		Convey("When parsing known models", func() {
			for _, s := range []string{"exponential", "rayleigh", "power"} {
				m, err := fit.ParseModel(s)
				So(err, ShouldBeNil)
				So(string(m), ShouldEqual, s)
			}
		})

		Convey("When parsing an unknown model", func() {
			_, err := fit.ParseModel("lognormal")
			So(err, ShouldNotBeNil)
		})
	})
}
