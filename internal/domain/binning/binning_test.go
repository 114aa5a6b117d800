package binning_test

import (
	"math"
	"testing"

	"github.com/okian/bgfit/internal/domain/binning"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNew(t *testing.T) {
	Convey("Given edge sequences", t, func() {
		Convey("When the edges are strictly ascending", func() {
			b, err := binning.New([]float64{1, 2, 4})
			So(err, ShouldBeNil)
			So(b.NumBins(), ShouldEqual, 2)
			So(b.Min(), ShouldEqual, 1)
			So(b.Max(), ShouldEqual, 4)
		})

		Convey("When fewer than two edges are given", func() {
			_, err := binning.New([]float64{1})
			So(err, ShouldNotBeNil)
		})

		Convey("When the edges are not ascending", func() {
			_, err := binning.New([]float64{1, 3, 2})
			So(err, ShouldNotBeNil)
		})

		Convey("When an edge repeats", func() {
			_, err := binning.New([]float64{1, 2, 2, 4})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestFromRange(t *testing.T) {
	Convey("Given derived binnings", t, func() {
		Convey("When spacing is linear", func() {
			b, err := binning.FromRange(0, 10, 5, binning.Linear)
			So(err, ShouldBeNil)
			So(b.Edges(), ShouldResemble, []float64{0, 2, 4, 6, 8, 10})
		})

		Convey("When spacing is log", func() {
			b, err := binning.FromRange(1, 100, 2, binning.Log)
			So(err, ShouldBeNil)
			So(b.NumBins(), ShouldEqual, 2)
			So(b.Min(), ShouldEqual, 1)
			So(b.Max(), ShouldEqual, 100)
			So(b.Upper(0), ShouldAlmostEqual, 10, 1e-9)
		})

		Convey("When log spacing starts at zero", func() {
			_, err := binning.FromRange(0, 100, 2, binning.Log)
			So(err, ShouldNotBeNil)
		})

		Convey("When the end does not exceed the start", func() {
			_, err := binning.FromRange(5, 5, 2, binning.Linear)
			So(err, ShouldNotBeNil)
		})

		Convey("When the count is not positive", func() {
			_, err := binning.FromRange(0, 10, 0, binning.Linear)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestIndexOf(t *testing.T) {
	Convey("Given edges [1, 2, 4]", t, func() {
		b, err := binning.New([]float64{1, 2, 4})
		So(err, ShouldBeNil)

		Convey("When a value falls inside a bin", func() {
			Convey("Then bins are half-open on the right", func() {
				i, err := b.IndexOf(1)
				So(err, ShouldBeNil)
				So(i, ShouldEqual, 0)

				i, err = b.IndexOf(1.9)
				So(err, ShouldBeNil)
				So(i, ShouldEqual, 0)

				i, err = b.IndexOf(2)
				So(err, ShouldBeNil)
				So(i, ShouldEqual, 1)

				i, err = b.IndexOf(3)
				So(err, ShouldBeNil)
				So(i, ShouldEqual, 1)
			})

			Convey("And the last bin is closed at the top edge", func() {
				i, err := b.IndexOf(4)
				So(err, ShouldBeNil)
				So(i, ShouldEqual, 1)
			})
		})

		Convey("When a value is out of range", func() {
			_, err := b.IndexOf(0.5)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "outside")

			_, err = b.IndexOf(4.5)
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given an irregular binning", t, func() {
		b, err := binning.New([]float64{0.07, 0.5, 4, 32, 256})
		So(err, ShouldBeNil)

		Convey("When checking the round trip for in-range values", func() {
			values := []float64{0.07, 0.1, 0.5, 3.9, 4, 31, 32, 100, 255.99, 256}

			Convey("Then edges[i] <= v and v < edges[i+1] unless i is the last bin", func() {
				for _, v := range values {
					i, err := b.IndexOf(v)
					So(err, ShouldBeNil)
					So(b.Lower(i), ShouldBeLessThanOrEqualTo, v)
					if i < b.NumBins()-1 {
						So(v, ShouldBeLessThan, b.Upper(i))
					} else {
						So(v, ShouldBeLessThanOrEqualTo, b.Upper(i))
					}
				}
			})
		})
	})
}

func TestParseSpacing(t *testing.T) {
	Convey("Given spacing strings", t, func() {
		Convey("When parsing known spacings", func() {
			s, err := binning.ParseSpacing("linear")
			So(err, ShouldBeNil)
			So(s, ShouldEqual, binning.Linear)

			s, err = binning.ParseSpacing("LOG")
			So(err, ShouldBeNil)
			So(s, ShouldEqual, binning.Log)
		})

		Convey("When parsing an unknown spacing", func() {
			_, err := binning.ParseSpacing("quadratic")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestEdgesImmutable(t *testing.T) {
	Convey("Given a binning", t, func() {
		b, err := binning.New([]float64{1, 2, 4})
		So(err, ShouldBeNil)

		Convey("When mutating the returned edges", func() {
			edges := b.Edges()
			edges[0] = math.Inf(-1)

			Convey("Then the binning is unchanged", func() {
				So(b.Min(), ShouldEqual, 1)
			})
		})
	})
}
