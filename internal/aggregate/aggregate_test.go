package aggregate_test

import (
	"testing"

	"github.com/okian/bgfit/internal/aggregate"
	"github.com/okian/bgfit/internal/domain/table"
	. "github.com/smartystreets/goconvey/convey"
)

func statTable(snr, stat []float64) *table.Table {
	t, err := table.FromColumns(map[string][]float64{
		table.ColSNR:  snr,
		table.ColStat: stat,
	})
	So(err, ShouldBeNil)
	return t
}

func TestAppend(t *testing.T) {
	Convey("Given an accumulator set", t, func() {
		set := aggregate.NewSet()

		Convey("When appending the first batch for a detector", func() {
			So(set.Append("H1", statTable([]float64{6, 10}, []float64{5.5, 9.8})), ShouldBeNil)

			Convey("Then the accumulator is created lazily with those rows", func() {
				acc, ok := set.Get("H1")
				So(ok, ShouldBeTrue)
				So(acc.Table.Rows(), ShouldEqual, 2)
			})

			Convey("And other detectors remain absent", func() {
				_, ok := set.Get("L1")
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When accumulating the same batch twice", func() {
			batch := statTable([]float64{6, 10}, []float64{5.5, 9.8})
			So(set.Append("H1", batch), ShouldBeNil)
			So(set.Append("H1", batch), ShouldBeNil)
			set.AddLiveTime("H1", 4096)
			set.AddLiveTime("H1", 4096)

			Convey("Then nothing deduplicates: double rows, double live time", func() {
				acc, _ := set.Get("H1")
				So(acc.Table.Rows(), ShouldEqual, 4)
				So(acc.LiveTime, ShouldEqual, 8192)
			})
		})

		Convey("When appending an empty batch", func() {
			So(set.Append("H1", table.New()), ShouldBeNil)

			Convey("Then no accumulator is created", func() {
				_, ok := set.Get("H1")
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestClustering(t *testing.T) {
	Convey("Given a set with per-file clustering", t, func() {
		set := aggregate.NewSet(aggregate.WithClustering(true))

		Convey("When appending a batch", func() {
			So(set.Append("L1", statTable([]float64{6, 10, 8}, []float64{5.5, 9.8, 7.1})), ShouldBeNil)

			Convey("Then only the single highest-ranked row is kept", func() {
				acc, _ := set.Get("L1")
				So(acc.Table.Rows(), ShouldEqual, 1)
				stat, _ := acc.Table.Column(table.ColStat)
				So(stat, ShouldResemble, []float64{9.8})
			})
		})

		Convey("When the maximum is tied", func() {
			So(set.Append("L1", statTable([]float64{6, 10}, []float64{7.0, 7.0})), ShouldBeNil)

			Convey("Then the first occurrence wins", func() {
				acc, _ := set.Get("L1")
				snr, _ := acc.Table.Column(table.ColSNR)
				So(snr, ShouldResemble, []float64{6})
			})
		})

		Convey("When appending batches from two files", func() {
			So(set.Append("L1", statTable([]float64{6}, []float64{5.5})), ShouldBeNil)
			So(set.Append("L1", statTable([]float64{10}, []float64{9.8})), ShouldBeNil)

			Convey("Then clustering is per file, not global", func() {
				acc, _ := set.Get("L1")
				So(acc.Table.Rows(), ShouldEqual, 2)
			})
		})

		Convey("When a batch lacks the ranking column", func() {
			tbl, err := table.FromColumns(map[string][]float64{table.ColSNR: {6}})
			So(err, ShouldBeNil)
			So(set.Append("L1", tbl), ShouldNotBeNil)
		})
	})
}

func TestLiveTime(t *testing.T) {
	Convey("Given an accumulator set", t, func() {
		set := aggregate.NewSet()

		Convey("When live time is credited without any triggers", func() {
			set.AddLiveTime("V1", 4096)

			Convey("Then the accumulator exists with zero rows", func() {
				acc, ok := set.Get("V1")
				So(ok, ShouldBeTrue)
				So(acc.LiveTime, ShouldEqual, 4096)
				So(acc.Table.Rows(), ShouldEqual, 0)
			})
		})

		Convey("When multiple detectors contribute", func() {
			set.AddLiveTime("H1", 100)
			set.AddLiveTime("L1", 200)
			set.AddLiveTime("H1", 50)

			Convey("Then totals are independent and detectors sorted", func() {
				So(set.Detectors(), ShouldResemble, []string{"H1", "L1"})
				h1, _ := set.Get("H1")
				So(h1.LiveTime, ShouldEqual, 150)
			})
		})
	})
}
