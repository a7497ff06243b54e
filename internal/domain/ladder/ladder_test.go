package ladder_test

import (
	"testing"

	"github.com/okian/cpstats/internal/domain/ladder"
	"github.com/okian/cpstats/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestLookup(t *testing.T) {
	convey.Convey("Given the ladder table", t, func() {
		convey.Convey("When looking up a known ladder", func() {
			l, ok := ladder.Lookup("div2c")

			convey.Convey("Then its band should be returned", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(l.MinRating, convey.ShouldEqual, 1300)
				convey.So(l.MaxRating, convey.ShouldEqual, 1500)
			})
		})

		convey.Convey("When looking up an unknown ladder", func() {
			_, ok := ladder.Lookup("div1z")

			convey.Convey("Then it should not be found", func() {
				convey.So(ok, convey.ShouldBeFalse)
			})
		})

		convey.Convey("Then All should list five ladders", func() {
			convey.So(len(ladder.All()), convey.ShouldEqual, 5)
		})
	})
}

func TestBuild(t *testing.T) {
	convey.Convey("Given a catalog spanning several bands", t, func() {
		catalog := []model.Problem{
			{ContestID: 50, Index: "A", Rating: model.Rated(900)},
			{ContestID: 10, Index: "B", Rating: model.Rated(1100)},
			{ContestID: 10, Index: "A", Rating: model.Rated(800)},
			{ContestID: 5, Index: "C", Rating: model.Rated(1500)},
			{ContestID: 1, Index: "A"},
			{ContestID: 70, Index: "A", Rating: model.Rated(799)},
		}
		div2a, _ := ladder.Lookup("div2a")
		solved := func(k model.ProblemKey) bool { return k == model.ProblemKey{ContestID: 10, Index: "A"} }

		convey.Convey("When building div2a", func() {
			entries := ladder.Build(div2a, catalog, solved, 0)

			convey.Convey("Then problems should be in band and ordered by contest", func() {
				convey.So(len(entries), convey.ShouldEqual, 3)
				convey.So(entries[0].Key(), convey.ShouldResemble, model.ProblemKey{ContestID: 10, Index: "B"})
				convey.So(entries[1].Key(), convey.ShouldResemble, model.ProblemKey{ContestID: 10, Index: "A"})
				convey.So(entries[2].ContestID, convey.ShouldEqual, 50)
			})

			convey.Convey("Then solved problems should be marked", func() {
				convey.So(entries[0].Solved, convey.ShouldBeFalse)
				convey.So(entries[1].Solved, convey.ShouldBeTrue)
				convey.So(entries[1].URL, convey.ShouldEqual, "https://codeforces.com/problemset/problem/10/A")
			})
		})

		convey.Convey("When the size is capped", func() {
			entries := ladder.Build(div2a, catalog, nil, 1)

			convey.Convey("Then only the oldest problem should remain", func() {
				convey.So(len(entries), convey.ShouldEqual, 1)
				convey.So(entries[0].ContestID, convey.ShouldEqual, 10)
				convey.So(entries[0].Solved, convey.ShouldBeFalse)
			})
		})
	})
}
