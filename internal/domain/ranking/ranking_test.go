package ranking_test

import (
	"math"
	"testing"

	"github.com/okian/bgfit/internal/domain/ranking"
	"github.com/okian/bgfit/internal/domain/table"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNonReducedChisq(t *testing.T) {
	Convey("Given reduced chi-squared values from trigger files", t, func() {
		Convey("When reconstructing the non-reduced value with the fixed dof", func() {
			Convey("Then reduced * (2*1.5 - 2) reproduces the value exactly", func() {
				for _, r := range []float64{0, 0.5, 1, 2.3, 10} {
					So(ranking.NonReducedChisq(r), ShouldEqual, r)
				}
			})
		})
	})
}

func TestDerive(t *testing.T) {
	Convey("Given a trigger table", t, func() {
		tbl, err := table.FromColumns(map[string][]float64{
			table.ColSNR:   {6, 8, 10},
			table.ColChisq: {0.5, 1.0, 2.0},
		})
		So(err, ShouldBeNil)

		Convey("When deriving the snr statistic", func() {
			vals, err := ranking.Derive(tbl, ranking.SNR)

			Convey("Then snr passes through unchanged", func() {
				So(err, ShouldBeNil)
				So(vals, ShouldResemble, []float64{6, 8, 10})
			})

			Convey("And the result is a copy, not the column itself", func() {
				So(err, ShouldBeNil)
				vals[0] = 0
				snr, _ := tbl.Column(table.ColSNR)
				So(snr[0], ShouldEqual, 6)
			})
		})

		Convey("When deriving newsnr", func() {
			vals, err := ranking.Derive(tbl, ranking.NewSNR)
			So(err, ShouldBeNil)

			Convey("Then rows with reduced chi-squared at or below one keep their snr", func() {
				So(vals[0], ShouldEqual, 6)
				So(vals[1], ShouldEqual, 8)
			})

			Convey("And rows above one are penalized by the documented formula", func() {
				want := 10 / math.Pow((1+math.Pow(2.0, 3))/2, 1.0/6.0)
				So(vals[2], ShouldAlmostEqual, want, 1e-12)
				So(vals[2], ShouldBeLessThan, 10)
			})

			Convey("And the statistic never exceeds snr", func() {
				snr, _ := tbl.Column(table.ColSNR)
				for i, v := range vals {
					So(v, ShouldBeLessThanOrEqualTo, snr[i])
				}
			})
		})

		Convey("When the ranking name is unknown", func() {
			_, err := ranking.Derive(tbl, ranking.Name("effsnr"))
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given a table without the chisq column", t, func() {
		tbl, err := table.FromColumns(map[string][]float64{
			table.ColSNR: {6, 8},
		})
		So(err, ShouldBeNil)

		Convey("When deriving newsnr", func() {
			_, err := ranking.Derive(tbl, ranking.NewSNR)

			Convey("Then the missing column is a typed error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "chisq")
			})
		})
	})
}

func TestParse(t *testing.T) {
	Convey("Given ranking names", t, func() {
		Convey("When parsing known names", func() {
			n, err := ranking.Parse("newsnr")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, ranking.NewSNR)

			n, err = ranking.Parse("SNR")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, ranking.SNR)
		})

		Convey("When parsing an unknown name", func() {
			_, err := ranking.Parse("phase_coherence")
			So(err, ShouldNotBeNil)
		})
	})
}
